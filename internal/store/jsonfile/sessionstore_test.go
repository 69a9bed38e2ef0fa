package jsonfile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"schoolconnect/internal/core/session"
)

func TestSessionStore_SaveAndCurrent(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	sess := session.Session{
		UserID:     "u1",
		PlatformID: "SC-001",
		Name:       "Thandi",
		Role:       session.RoleTeacher,
		Email:      "thandi@school.example",
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got != sess {
		t.Errorf("Current = %+v, want %+v", got, sess)
	}
}

func TestSessionStore_CurrentEmpty(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	_, err := store.Current(context.Background())
	if !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("Current error = %v, want ErrNotLoggedIn", err)
	}
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	if err := store.Save(ctx, session.Session{UserID: "u1", Role: session.RoleParent}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	if _, err := store.Current(ctx); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("Current after Clear = %v, want ErrNotLoggedIn", err)
	}

	// Clearing again is fine.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestSessionStore_SaveReplaces(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	ctx := context.Background()

	_ = store.Save(ctx, session.Session{UserID: "u1", Role: session.RoleStudent})
	_ = store.Save(ctx, session.Session{UserID: "u2", Role: session.RoleParent})

	got, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if got.UserID != "u2" {
		t.Errorf("UserID = %q, want %q", got.UserID, "u2")
	}
}
