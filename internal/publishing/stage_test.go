package publishing

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"keyframe/internal/logging"
	"keyframe/internal/media/ffmpeg"
	"keyframe/internal/media/workdir"
	"keyframe/internal/notifications"
	"keyframe/internal/queue"
	"keyframe/internal/services"
	"keyframe/internal/services/storage"
	"keyframe/internal/testsupport"
)

// fakeFFmpeg writes the file each command names last, standing in for the
// thumbnail extractor.
type fakeFFmpeg struct {
	commands [][]string
	fail     bool
}

func (f *fakeFFmpeg) run(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.commands = append(f.commands, args)
	if f.fail {
		return []byte("no such frame"), errors.New("exit status 1")
	}
	output := args[len(args)-1]
	if err := os.WriteFile(output, []byte("jpeg"), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

type fakePublisher struct {
	publicID      string
	videoPath     string
	thumbnailPath string
	result        storage.Result
	err           error
}

func (f *fakePublisher) Publish(ctx context.Context, publicID, videoPath, thumbnailPath string) (storage.Result, error) {
	f.publicID = publicID
	f.videoPath = videoPath
	f.thumbnailPath = thumbnailPath
	if f.err != nil {
		return storage.Result{}, f.err
	}
	return f.result, nil
}

type recordingNotifier struct {
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func newStage(t *testing.T, fake *fakeFFmpeg, publisher storage.Publisher, notifier notifications.Service) (*Stage, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	runner := ffmpeg.NewRunner("ffmpeg", ffmpeg.WithRunFunc(fake.run))
	return NewWithDependencies(cfg, store, logging.NewNop(), runner, publisher, notifier), store
}

func assembledJob(t *testing.T, store *queue.Store) *queue.Job {
	t.Helper()
	job := testsupport.NewJob(t, store, "prompt", "Default")
	job.Title = "Creatures of the Deep"
	job.WorkingDir = t.TempDir()
	layout := workdir.FromDir(job.WorkingDir)
	testsupport.WriteFile(t, layout.OutputPath(), 256)
	job.FinalFile = layout.OutputPath()
	return job
}

func TestExecutePublishesAndCompletes(t *testing.T) {
	fake := &fakeFFmpeg{}
	publisher := &fakePublisher{result: storage.Result{
		VideoURL:     "https://cdn.example/videos/abc.mp4",
		ThumbnailURL: "https://cdn.example/thumbnails/abc.jpg",
	}}
	notifier := &recordingNotifier{}
	st, store := newStage(t, fake, publisher, notifier)
	job := assembledJob(t, store)

	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	layout := workdir.FromDir(job.WorkingDir)
	if len(fake.commands) != 1 {
		t.Fatalf("expected 1 ffmpeg invocation, got %d", len(fake.commands))
	}
	command := strings.Join(fake.commands[0], " ")
	for _, fragment := range []string{
		"-i " + layout.OutputPath(),
		"-frames:v 1",
		layout.ThumbnailPath(),
	} {
		if !strings.Contains(command, fragment) {
			t.Fatalf("thumbnail command missing %q: %s", fragment, command)
		}
	}

	if publisher.publicID != job.PublicID {
		t.Fatalf("published wrong id: %q", publisher.publicID)
	}
	if publisher.videoPath != layout.OutputPath() || publisher.thumbnailPath != layout.ThumbnailPath() {
		t.Fatalf("published wrong paths: %q %q", publisher.videoPath, publisher.thumbnailPath)
	}

	if job.Status != queue.StatusCompleted {
		t.Fatalf("expected completed status, got %q", job.Status)
	}
	if job.VideoURL != "https://cdn.example/videos/abc.mp4" {
		t.Fatalf("unexpected video url %q", job.VideoURL)
	}
	if job.ThumbnailURL != "https://cdn.example/thumbnails/abc.jpg" {
		t.Fatalf("unexpected thumbnail url %q", job.ThumbnailURL)
	}

	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventJobCompleted {
		t.Fatalf("unexpected notifications: %v", notifier.events)
	}
	if notifier.payloads[0]["title"] != "Creatures of the Deep" {
		t.Fatalf("unexpected notification payload: %v", notifier.payloads[0])
	}

	// A local publish keeps the working directory.
	if _, err := os.Stat(job.WorkingDir); err != nil {
		t.Fatalf("working directory should remain: %v", err)
	}
}

func TestExecuteRemovesWorkdirAfterRemotePublish(t *testing.T) {
	fake := &fakeFFmpeg{}
	publisher := &fakePublisher{result: storage.Result{
		VideoURL:     "https://cdn.example/videos/abc.mp4",
		ThumbnailURL: "https://cdn.example/thumbnails/abc.jpg",
	}}
	st, store := newStage(t, fake, publisher, &recordingNotifier{})
	st.WithRemote()
	job := assembledJob(t, store)

	if err := st.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(job.WorkingDir); !os.IsNotExist(err) {
		t.Fatalf("expected working directory removed, stat err %v", err)
	}
	if job.FinalFile != "" {
		t.Fatalf("expected final file cleared, got %q", job.FinalFile)
	}
}

func TestExecuteFailsWhenVideoMissing(t *testing.T) {
	fake := &fakeFFmpeg{}
	st, store := newStage(t, fake, &fakePublisher{}, &recordingNotifier{})
	job := testsupport.NewJob(t, store, "prompt", "Default")
	job.WorkingDir = t.TempDir()

	err := st.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(fake.commands) != 0 {
		t.Fatalf("expected no ffmpeg invocations, got %d", len(fake.commands))
	}
}

func TestExecuteFailsWhenThumbnailExtractionFails(t *testing.T) {
	fake := &fakeFFmpeg{fail: true}
	st, store := newStage(t, fake, &fakePublisher{}, &recordingNotifier{})
	job := assembledJob(t, store)

	err := st.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if job.Status == queue.StatusCompleted {
		t.Fatal("job must not complete when thumbnail extraction fails")
	}
}

func TestExecuteFailsWhenUploadFails(t *testing.T) {
	fake := &fakeFFmpeg{}
	publisher := &fakePublisher{err: errors.New("bucket unreachable")}
	notifier := &recordingNotifier{}
	st, store := newStage(t, fake, publisher, notifier)
	job := assembledJob(t, store)

	err := st.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrPublish) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if job.Status == queue.StatusCompleted {
		t.Fatal("job must not complete when upload fails")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("unexpected notifications: %v", notifier.events)
	}
}

func TestHealthCheck(t *testing.T) {
	fake := &fakeFFmpeg{}
	st, _ := newStage(t, fake, &fakePublisher{}, &recordingNotifier{})
	if health := st.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage: %+v", health)
	}
}
