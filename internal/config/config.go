package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Workflow contains daemon timing configuration, in seconds.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
}

// LLM contains connection settings for the script-generation collaborator.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ImageBackend describes one OpenAI-compatible image generation endpoint.
type ImageBackend struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Images contains the image-generation backends selectable per style.
type Images struct {
	DALLE          ImageBackend `toml:"dalle"`
	Flux           ImageBackend `toml:"flux"`
	TimeoutSeconds int          `toml:"timeout_seconds"`
}

// Speech contains Amazon Polly connection settings for narration synthesis.
type Speech struct {
	Region          string   `toml:"region"`
	AccessKeyID     string   `toml:"access_key_id"`
	SecretAccessKey string   `toml:"secret_access_key"`
	Engine          string   `toml:"engine"`
	Voices          []string `toml:"voices"`
}

// Storage contains S3-compatible publishing settings. An empty bucket keeps
// publishing local: final artifacts stay in the job working directory.
type Storage struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	PublicBaseURL   string `toml:"public_base_url"`
}

// Tools contains external binary locations.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config is the root keyframe configuration.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Logging       Logging       `toml:"logging"`
	Workflow      Workflow      `toml:"workflow"`
	LLM           LLM           `toml:"llm"`
	Images        Images        `toml:"images"`
	Speech        Speech        `toml:"speech"`
	Storage       Storage       `toml:"storage"`
	Tools         Tools         `toml:"tools"`
	Notifications Notifications `toml:"notifications"`
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and any secrets left
// blank in the file filled from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	// Missing .env is the common case and not an error.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/keyframe/config.toml")
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("keyframe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// applyEnv fills blank secrets from the conventional environment variables.
func (c *Config) applyEnv() {
	fill := func(target *string, keys ...string) {
		if strings.TrimSpace(*target) != "" {
			return
		}
		for _, key := range keys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				*target = value
				return
			}
		}
	}

	fill(&c.LLM.APIKey, "KEYFRAME_LLM_API_KEY", "OPENAI_API_KEY")
	fill(&c.Images.DALLE.APIKey, "OPENAI_API_KEY")
	fill(&c.Images.Flux.APIKey, "NEBIUS_API_KEY")
	fill(&c.Speech.AccessKeyID, "AWS_ACCESS_KEY_ID")
	fill(&c.Speech.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	fill(&c.Speech.Region, "AWS_REGION")
	fill(&c.Storage.AccessKeyID, "R2_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	fill(&c.Storage.SecretAccessKey, "R2_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the conventional per-user config location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/keyframe/config.toml")
}

// LogDirectory implements logging.LogDirConfig.
func (c *Config) LogDirectory() string { return c.Paths.LogDir }

// LogLevelValue implements logging.LogDirConfig.
func (c *Config) LogLevelValue() string { return c.Logging.Level }

// LogFormatValue implements logging.LogDirConfig.
func (c *Config) LogFormatValue() string { return c.Logging.Format }

// QueueDBPath returns the SQLite queue database location.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.LogDir, "queue.db")
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return filepath.Abs(path)
}
