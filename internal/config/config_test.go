package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if strings.HasPrefix(cfg.Paths.StagingDir, "~") {
		t.Fatalf("expected expanded staging dir, got %q", cfg.Paths.StagingDir)
	}
	if cfg.Workflow.QueuePollInterval <= 0 {
		t.Fatal("expected positive poll interval")
	}
	if len(cfg.Speech.Voices) == 0 {
		t.Fatal("expected default voice pool")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, got exists for %q", path)
	}
	if cfg.LLM.Model != defaultLLMModel {
		t.Fatalf("expected default model, got %q", cfg.LLM.Model)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keyframe.toml")
	body := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[logging]
format = "json"

[llm]
model = "test-model"

[speech]
voices = ["Joanna"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if cfg.LLM.Model != "test-model" {
		t.Fatalf("expected model override, got %q", cfg.LLM.Model)
	}
	if len(cfg.Speech.Voices) != 1 || cfg.Speech.Voices[0] != "Joanna" {
		t.Fatalf("expected single voice override, got %v", cfg.Speech.Voices)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad log format")
	}
}

func TestValidateRequiresStorageTarget(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Storage.Bucket = "videos"
	cfg.Storage.Endpoint = ""
	cfg.Storage.Region = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bucket without endpoint/region")
	}
}

func TestApplyEnvFillsBlanks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	cfg := Default()
	cfg.applyEnv()
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("expected llm key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Images.DALLE.APIKey != "sk-test" {
		t.Fatalf("expected dalle key from env, got %q", cfg.Images.DALLE.APIKey)
	}
	if cfg.Speech.AccessKeyID != "AKIATEST" {
		t.Fatalf("expected speech key from env, got %q", cfg.Speech.AccessKeyID)
	}
}

func TestApplyEnvDoesNotOverrideExplicit(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg := Default()
	cfg.LLM.APIKey = "sk-file"
	cfg.applyEnv()
	if cfg.LLM.APIKey != "sk-file" {
		t.Fatalf("expected file key preserved, got %q", cfg.LLM.APIKey)
	}
}
