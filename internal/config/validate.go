package config

import (
	"fmt"
	"strings"
)

// Validate checks structural configuration problems that would prevent the
// daemon from running. Collaborator credentials are checked lazily by each
// client so read-only commands work without secrets.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("paths.staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	for _, voice := range c.Speech.Voices {
		if strings.TrimSpace(voice) == "" {
			return fmt.Errorf("speech.voices must not contain blank entries")
		}
	}
	if c.Storage.Bucket != "" && strings.TrimSpace(c.Storage.Endpoint) == "" && strings.TrimSpace(c.Storage.Region) == "" {
		return fmt.Errorf("storage.endpoint or storage.region is required when storage.bucket is set")
	}
	return nil
}
