package storyboard_test

import (
	"strings"
	"testing"

	"keyframe/internal/storyboard"
)

func sampleScript(slides int) storyboard.Script {
	script := storyboard.Script{Title: "Sample"}
	for i := 0; i < slides; i++ {
		script.Slides = append(script.Slides, storyboard.Slide{
			Index:             i,
			Narration:         "spoken text",
			ImagePrompt:       "an image",
			EstimatedDuration: 6,
		})
	}
	return script
}

func TestDecodeStampsIndexes(t *testing.T) {
	payload := `{"title":"T","slides":[
		{"narration_prompt":"a","image_prompt":"b","duration":5.5},
		{"narration_prompt":"c","image_prompt":"d","duration":6.5}
	]}`
	script, err := storyboard.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i, slide := range script.Slides {
		if slide.Index != i {
			t.Fatalf("slide %d has index %d", i, slide.Index)
		}
	}
	if got := script.TotalEstimatedDuration(); got != 12 {
		t.Fatalf("total estimated = %v, want 12", got)
	}
}

func TestValidateSlideCount(t *testing.T) {
	policy := storyboard.ResolveStyle("Default")
	script := sampleScript(policy.SlideCount - 1)
	err := storyboard.Validate(script, policy)
	if err == nil {
		t.Fatal("expected slide count error")
	}
	if !strings.Contains(err.Error(), "expected 5 slides") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestValidateNamesOffendingSlide(t *testing.T) {
	policy := storyboard.ResolveStyle("Default")

	script := sampleScript(policy.SlideCount)
	script.Slides[2].Narration = "   "
	if err := storyboard.Validate(script, policy); err == nil || !strings.Contains(err.Error(), "slide 2") {
		t.Fatalf("expected slide 2 narration error, got %v", err)
	}

	script = sampleScript(policy.SlideCount)
	script.Slides[4].ImagePrompt = ""
	if err := storyboard.Validate(script, policy); err == nil || !strings.Contains(err.Error(), "slide 4") {
		t.Fatalf("expected slide 4 image error, got %v", err)
	}

	script = sampleScript(policy.SlideCount)
	script.Slides[0].EstimatedDuration = 0
	if err := storyboard.Validate(script, policy); err == nil || !strings.Contains(err.Error(), "slide 0") {
		t.Fatalf("expected slide 0 duration error, got %v", err)
	}
}

func TestValidateAcceptsWellFormedScript(t *testing.T) {
	for _, style := range storyboard.StyleNames() {
		policy := storyboard.ResolveStyle(style)
		if err := storyboard.Validate(sampleScript(policy.SlideCount), policy); err != nil {
			t.Fatalf("style %s: %v", style, err)
		}
	}
}

func TestEffectiveDurationPrefersMeasured(t *testing.T) {
	slide := storyboard.Slide{EstimatedDuration: 6}
	if got := slide.EffectiveDuration(); got != 6 {
		t.Fatalf("estimate not used: %v", got)
	}
	slide.ActualDuration = 5.8
	if got := slide.EffectiveDuration(); got != 5.8 {
		t.Fatalf("measured duration not preferred: %v", got)
	}
}

func TestReconciled(t *testing.T) {
	script := sampleScript(3)
	if script.Reconciled() {
		t.Fatal("unreconciled script reported reconciled")
	}
	for i := range script.Slides {
		script.Slides[i].ActualDuration = 5.9
	}
	if !script.Reconciled() {
		t.Fatal("reconciled script not detected")
	}
}

func TestResolveStyleFallsBackToDefault(t *testing.T) {
	policy := storyboard.ResolveStyle("does-not-exist")
	if policy.Name != storyboard.DefaultStyle {
		t.Fatalf("expected default policy, got %s", policy.Name)
	}
	if policy.SlideCount != 5 {
		t.Fatalf("default slide count = %d", policy.SlideCount)
	}
}

func TestEncodeRoundTripKeepsActualDurations(t *testing.T) {
	script := sampleScript(2)
	script.Slides[0].ActualDuration = 6.1
	script.Slides[1].ActualDuration = 5.7

	payload, err := script.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored := storyboard.FromJSON(payload)
	if !restored.Reconciled() {
		t.Fatal("actual durations lost in round trip")
	}
}

func TestWithinTargetRange(t *testing.T) {
	policy := storyboard.ResolveStyle("Default")
	script := sampleScript(policy.SlideCount) // 5 x 6s = 30s
	if !storyboard.WithinTargetRange(script, policy) {
		t.Fatal("expected 30s to be inside 25-35s")
	}
	script.Slides[0].EstimatedDuration = 20
	if storyboard.WithinTargetRange(script, policy) {
		t.Fatal("expected 44s to be outside 25-35s")
	}
}
