package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RunFunc executes a single ffmpeg invocation and returns combined output.
type RunFunc func(ctx context.Context, binary string, args []string) ([]byte, error)

// Runner invokes ffmpeg with a fixed binary path.
type Runner struct {
	binary string
	run    RunFunc
}

// Option customizes the runner.
type Option func(*Runner)

// WithRunFunc overrides how commands are executed (useful for tests).
func WithRunFunc(run RunFunc) Option {
	return func(r *Runner) {
		if run != nil {
			r.run = run
		}
	}
}

// NewRunner constructs a runner for the supplied binary path.
func NewRunner(binary string, opts ...Option) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	r := &Runner{binary: binary, run: execRun}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binary returns the configured binary path.
func (r *Runner) Binary() string {
	return r.binary
}

// Run invokes ffmpeg with -y prepended so outputs are overwritten.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	if len(args) == 0 {
		return errors.New("ffmpeg run: no arguments")
	}
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	output, err := r.run(ctx, r.binary, full)
	if err != nil {
		return fmt.Errorf("ffmpeg run: %w: %s", err, summarizeOutput(output))
	}
	return nil
}

func execRun(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}

func summarizeOutput(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return "<no output>"
	}
	const limit = 400
	if len(trimmed) > limit {
		trimmed = trimmed[:limit] + "..."
	}
	return trimmed
}
