package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRunnerPrependsGlobalFlags(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	runner := NewRunner("/usr/bin/ffmpeg", WithRunFunc(func(ctx context.Context, binary string, args []string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return nil, nil
	}))

	if err := runner.Run(context.Background(), "-i", "input.mp4", "out.mp4"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gotBinary != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotBinary)
	}
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "input.mp4", "out.mp4"}
	if len(gotArgs) != len(want) {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	for i := range want {
		if gotArgs[i] != want[i] {
			t.Fatalf("arg %d: got %q want %q", i, gotArgs[i], want[i])
		}
	}
}

func TestRunnerWrapsFailureOutput(t *testing.T) {
	runner := NewRunner("ffmpeg", WithRunFunc(func(ctx context.Context, binary string, args []string) ([]byte, error) {
		return []byte("Unknown encoder 'libx265'"), errors.New("exit status 1")
	}))

	err := runner.Run(context.Background(), "-i", "in.mp4", "out.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected command output in error, got %v", err)
	}
}

func TestRunnerRequiresArgs(t *testing.T) {
	runner := NewRunner("")
	if err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error for empty args")
	}
	if runner.Binary() != "ffmpeg" {
		t.Fatalf("expected default binary, got %q", runner.Binary())
	}
}
