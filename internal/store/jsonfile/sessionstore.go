// Package jsonfile provides JSON-file-backed stores with flock guards so
// concurrent schoolconnect processes (TUI plus one-shot CLI sends) don't
// corrupt each other's state.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"schoolconnect/internal/core/session"
)

// SessionStore implements session.Store using a single JSON file.
type SessionStore struct {
	path string
	mu   sync.RWMutex
}

// NewSessionStore creates a session store at the given file path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Current returns the stored session. Returns session.ErrNotLoggedIn if
// no session file exists.
func (s *SessionStore) Current(ctx context.Context) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess session.Session
	err := withFileLock(s.path, syscall.LOCK_SH, func() error {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if os.IsNotExist(err) {
				return session.ErrNotLoggedIn
			}
			return fmt.Errorf("read session file: %w", err)
		}
		if len(data) == 0 {
			return session.ErrNotLoggedIn
		}
		if err := json.Unmarshal(data, &sess); err != nil {
			return fmt.Errorf("parse session file: %w", err)
		}
		return nil
	})
	if err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Save stores the session, replacing any previous one.
func (s *SessionStore) Save(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return withFileLock(s.path, syscall.LOCK_EX, func() error {
		return writeJSONAtomic(s.path, sess, 0o600)
	})
}

// Clear removes the stored session. Clearing an empty store is not an
// error.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return withFileLock(s.path, syscall.LOCK_EX, func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	})
}

// withFileLock acquires a file lock next to path, executes fn, then
// releases the lock.
func withFileLock(path string, lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// writeJSONAtomic writes v as indented JSON via a temp file rename.
func writeJSONAtomic(path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
