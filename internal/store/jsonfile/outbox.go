package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"
)

// OutboxEntry is a message whose insert failed, kept so the user's text
// survives the process.
type OutboxEntry struct {
	ClientToken string    `json:"client_token"`
	Text        string    `json:"text"`
	SenderID    string    `json:"sender_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Outbox persists unsent messages in a JSON file.
type Outbox struct {
	path string
	mu   sync.RWMutex
}

// NewOutbox creates an outbox at the given file path.
func NewOutbox(path string) *Outbox {
	return &Outbox{path: path}
}

// Add appends an entry, replacing any existing entry with the same
// client token.
func (o *Outbox) Add(ctx context.Context, entry OutboxEntry) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return withFileLock(o.path, syscall.LOCK_EX, func() error {
		entries, err := o.load()
		if err != nil {
			return err
		}

		replaced := false
		for i := range entries {
			if entries[i].ClientToken == entry.ClientToken {
				entries[i] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			entries = append(entries, entry)
		}

		return writeJSONAtomic(o.path, entries, 0o600)
	})
}

// List returns all entries in insertion order.
func (o *Outbox) List(ctx context.Context) ([]OutboxEntry, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var entries []OutboxEntry
	err := withFileLock(o.path, syscall.LOCK_SH, func() error {
		var err error
		entries, err = o.load()
		return err
	})
	return entries, err
}

// Remove deletes the entry with the given client token. Removing an
// absent token is not an error.
func (o *Outbox) Remove(ctx context.Context, clientToken string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return withFileLock(o.path, syscall.LOCK_EX, func() error {
		entries, err := o.load()
		if err != nil {
			return err
		}

		kept := entries[:0]
		for _, e := range entries {
			if e.ClientToken != clientToken {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(entries) {
			return nil
		}

		return writeJSONAtomic(o.path, kept, 0o600)
	})
}

// load reads the outbox file. A missing or empty file is an empty
// outbox.
func (o *Outbox) load() ([]OutboxEntry, error) {
	data, err := os.ReadFile(o.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read outbox file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var entries []OutboxEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse outbox file: %w", err)
	}
	return entries, nil
}
