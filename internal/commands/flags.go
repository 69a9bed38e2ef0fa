package commands

import (
	"os"
	"path/filepath"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/config"
	"schoolconnect/internal/core/session"
	"schoolconnect/internal/store/jsonfile"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Client talks to the communication platform. It carries the stored
	// session token when one exists.
	Client *backend.Client

	// Sessions persists the login session between runs.
	Sessions session.Store

	// Outbox holds messages whose insert failed.
	Outbox *jsonfile.Outbox

	// Session is the stored session, nil when logged out or expired.
	Session *session.Session
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "schoolconnect", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "schoolconnect")
}
