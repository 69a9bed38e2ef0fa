package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8790", cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 90, cfg.TUI.StarCount)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Backend.URL, cfg.Backend.URL)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `backend:
  url: https://platform.example.com
  api_key: anon-key
school:
  timetable_path: /etc/school/timetable.yaml
tui:
  star_count: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "https://platform.example.com", cfg.Backend.URL)
	assert.Equal(t, "anon-key", cfg.Backend.APIKey)
	assert.Equal(t, "/etc/school/timetable.yaml", cfg.School.TimetablePath)
	assert.Equal(t, 40, cfg.TUI.StarCount)
	// Unset values fall back to defaults.
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, dir, cfg.DataDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data_dir",
		},
		{
			name:    "empty backend url",
			mutate:  func(c *Config) { c.Backend.URL = "" },
			wantErr: "backend.url",
		},
		{
			name:    "relative backend url",
			mutate:  func(c *Config) { c.Backend.URL = "localhost:8790/api" },
			wantErr: "not a valid URL",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Backend.TimeoutSeconds = -1 },
			wantErr: "timeout_seconds",
		},
		{
			name:    "negative stars",
			mutate:  func(c *Config) { c.TUI.StarCount = -1 },
			wantErr: "star_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Paths(t *testing.T) {
	cfg := Config{DataDir: "/data/schoolconnect"}
	assert.Equal(t, filepath.Join("/data/schoolconnect", "session.json"), cfg.SessionFile())
	assert.Equal(t, filepath.Join("/data/schoolconnect", "outbox.json"), cfg.OutboxFile())
}
