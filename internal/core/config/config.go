// Package config handles configuration loading and validation for
// schoolconnect.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Backend Backend `yaml:"backend"`
	School  School  `yaml:"school"`
	TUI     TUI     `yaml:"tui"`
	DataDir string  `yaml:"-"` // set by caller, not from config file
}

// Backend holds the hosted platform connection settings.
type Backend struct {
	// URL is the base REST URL of the platform.
	URL string `yaml:"url"`
	// APIKey is sent on every request. The platform's anon key, not a
	// user credential.
	APIKey string `yaml:"api_key"`
	// TimeoutSeconds bounds each REST request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the REST request timeout.
func (b Backend) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// School holds paths to school data overrides.
type School struct {
	// TimetablePath is an optional YAML timetable override.
	TimetablePath string `yaml:"timetable_path"`
}

// TUI holds dashboard tuning knobs.
type TUI struct {
	// AnimationMillis drives the starfield ticker.
	AnimationMillis int `yaml:"animation_ms"`
	// StarCount is the number of background stars.
	StarCount int `yaml:"star_count"`
}

// AnimationInterval returns the starfield tick interval.
func (t TUI) AnimationInterval() time.Duration {
	return time.Duration(t.AnimationMillis) * time.Millisecond
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: Backend{
			URL:            "http://localhost:8790",
			TimeoutSeconds: 10,
		},
		TUI: TUI{
			AnimationMillis: 100,
			StarCount:       90,
		},
	}
}

// Load reads configuration from the given path and sets the data
// directory. If configPath is empty or doesn't exist, returns defaults
// with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = defaults.Backend.TimeoutSeconds
	}
	if c.TUI.AnimationMillis == 0 {
		c.TUI.AnimationMillis = defaults.TUI.AnimationMillis
	}
	if c.TUI.StarCount == 0 {
		c.TUI.StarCount = defaults.TUI.StarCount
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Backend.URL == "" {
		errs = errs.Append("backend.url", fmt.Errorf("cannot be empty"))
	} else if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = errs.Append("backend.url", fmt.Errorf("%q is not a valid URL", c.Backend.URL))
	}

	if c.Backend.TimeoutSeconds < 0 {
		errs = errs.Append("backend.timeout_seconds", fmt.Errorf("cannot be negative"))
	}

	if c.TUI.StarCount < 0 {
		errs = errs.Append("tui.star_count", fmt.Errorf("cannot be negative"))
	}

	return errs.ToError()
}

// SessionFile returns the path to the stored session JSON file.
func (c *Config) SessionFile() string {
	return filepath.Join(c.DataDir, "session.json")
}

// OutboxFile returns the path to the unsent-message outbox JSON file.
func (c *Config) OutboxFile() string {
	return filepath.Join(c.DataDir, "outbox.json")
}
