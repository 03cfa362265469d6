package reconcile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"keyframe/internal/logging"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/storyboard"
	"keyframe/internal/testsupport"
)

type pathProbe struct {
	durations map[string]float64
	failPath  string
}

func (p pathProbe) Measure(ctx context.Context, path string) (float64, error) {
	name := filepath.Base(path)
	if p.failPath != "" && name == p.failPath {
		return 0, errors.New("unreadable clip")
	}
	if seconds, ok := p.durations[name]; ok {
		return seconds, nil
	}
	return 0, fmt.Errorf("no stub duration for %s", name)
}

func newJob(t *testing.T, store *queue.Store, slides int) *queue.Job {
	t.Helper()
	job := testsupport.NewJob(t, store, "prompt", "Default")
	script := storyboard.Script{Title: "Test"}
	for i := 0; i < slides; i++ {
		script.Slides = append(script.Slides, storyboard.Slide{
			Index:             i,
			Narration:         "text",
			ImagePrompt:       "image",
			EstimatedDuration: 6,
		})
	}
	encoded, err := script.Encode()
	if err != nil {
		t.Fatalf("encode script: %v", err)
	}
	job.ScriptJSON = encoded
	job.WorkingDir = t.TempDir()
	return job
}

func TestExecuteStampsActualDurations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := newJob(t, store, 3)

	probe := pathProbe{durations: map[string]float64{
		"slide_0.mp3": 5.52,
		"slide_1.mp3": 6.01,
		"slide_2.mp3": 4.8,
	}}
	st := NewWithProbe(cfg, store, logging.NewNop(), probe)

	ctx := context.Background()
	if err := st.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := st.Execute(ctx, job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	script := storyboard.FromJSON(job.ScriptJSON)
	if !script.Reconciled() {
		t.Fatal("expected all slides to carry measured durations")
	}
	if script.Slides[1].ActualDuration != 6.01 {
		t.Fatalf("unexpected duration %v", script.Slides[1].ActualDuration)
	}
	if got := script.Slides[0].EffectiveDuration(); got != 5.52 {
		t.Fatalf("effective duration should prefer measurement, got %v", got)
	}
	if !strings.Contains(job.ProgressMessage, "3 clips") {
		t.Fatalf("unexpected progress message %q", job.ProgressMessage)
	}
}

func TestExecuteFailsWhenClipUnmeasurable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := newJob(t, store, 3)

	probe := pathProbe{
		durations: map[string]float64{"slide_0.mp3": 5.5, "slide_2.mp3": 6},
		failPath:  "slide_1.mp3",
	}
	st := NewWithProbe(cfg, store, logging.NewNop(), probe)

	err := st.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for unmeasurable clip")
	}
	if !errors.Is(err, services.ErrDurationMeasurement) {
		t.Fatalf("expected duration measurement marker, got %v", err)
	}
}

func TestExecuteMissingScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "prompt", "")
	st := NewWithProbe(cfg, store, logging.NewNop(), pathProbe{})

	if err := st.Execute(context.Background(), job); err == nil {
		t.Fatal("expected error for missing script")
	}
}
