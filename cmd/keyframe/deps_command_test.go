package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStubBinary(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func TestDepsReportsConfiguredTools(t *testing.T) {
	env := setupCLITestEnv(t)

	binDir := t.TempDir()
	ffmpeg := writeStubBinary(t, binDir, "ffmpeg")
	ffprobe := writeStubBinary(t, binDir, "ffprobe")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(
		"[paths]\nstaging_dir = %q\nlog_dir = %q\n\n[tools]\nffmpeg = %q\nffprobe = %q\n",
		env.cfg.Paths.StagingDir,
		env.cfg.Paths.LogDir,
		ffmpeg,
		ffprobe,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, _, err := runCLI(t, []string{"deps"}, configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "FFprobe")
	requireContains(t, out, "ok")
}

func TestDepsFailsWhenBinaryMissing(t *testing.T) {
	env := setupCLITestEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(
		"[paths]\nstaging_dir = %q\nlog_dir = %q\n\n[tools]\nffmpeg = %q\nffprobe = %q\n",
		env.cfg.Paths.StagingDir,
		env.cfg.Paths.LogDir,
		filepath.Join(t.TempDir(), "missing-ffmpeg"),
		filepath.Join(t.TempDir(), "missing-ffprobe"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, []string{"deps"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "missing required dependencies") {
		t.Fatalf("expected missing dependency error, got %v", err)
	}
}
