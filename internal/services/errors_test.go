package services_test

import (
	"errors"
	"testing"

	"keyframe/internal/services"
)

func TestWrapPreservesMarker(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrMediaGeneration, "media", "synthesize narration", "slide 2 failed", cause)
	if !errors.Is(err, services.ErrMediaGeneration) {
		t.Fatalf("expected media generation marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		marker error
		want   string
	}{
		{services.ErrScriptGeneration, "script_generation"},
		{services.ErrScriptValidation, "script_validation"},
		{services.ErrMediaGeneration, "media_generation"},
		{services.ErrDurationMeasurement, "duration_measurement"},
		{services.ErrSegmentEncode, "segment_encode"},
		{services.ErrAssembly, "assembly"},
		{services.ErrAssemblyVerification, "assembly_verification"},
		{services.ErrPublish, "publish"},
	}
	for _, tc := range tests {
		err := services.Wrap(tc.marker, "stage", "op", "", nil)
		if got := services.Kind(err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.marker, got, tc.want)
		}
	}
	if got := services.Kind(errors.New("plain")); got != "unknown" {
		t.Errorf("Kind(plain) = %q, want unknown", got)
	}
	if got := services.Kind(nil); got != "" {
		t.Errorf("Kind(nil) = %q, want empty", got)
	}
}
