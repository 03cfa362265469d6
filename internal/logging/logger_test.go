package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"keyframe/internal/services"
)

func TestConsoleHandlerFormatsSubject(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("stage started", Int64(FieldJobID, 7), String(FieldStage, "script"))

	line := buf.String()
	if !strings.Contains(line, "Job #7 (script)") {
		t.Fatalf("expected subject in output, got %q", line)
	}
	if !strings.Contains(line, "stage started") {
		t.Fatalf("expected message in output, got %q", line)
	}
}

func TestJSONHandlerLowercasesLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Warn("advisory", String("reason", "duration outside target range"))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("expected lowercase level, got %q", out)
	}
	if !strings.Contains(out, `"msg":"advisory"`) {
		t.Fatalf("expected msg key, got %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "assembly")

	WithContext(ctx, logger).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"job_id":42`) {
		t.Fatalf("expected job_id field, got %q", out)
	}
	if !strings.Contains(out, `"stage":"assembly"`) {
		t.Fatalf("expected stage field, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
