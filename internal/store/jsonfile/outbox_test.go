package jsonfile

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testEntry(token, text string) OutboxEntry {
	return OutboxEntry{
		ClientToken: token,
		Text:        text,
		SenderID:    "u1",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestOutbox_AddAndList(t *testing.T) {
	ob := NewOutbox(filepath.Join(t.TempDir(), "outbox.json"))
	ctx := context.Background()

	if err := ob.Add(ctx, testEntry("t1", "first")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := ob.Add(ctx, testEntry("t2", "second")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	entries, err := ob.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Text != "first" || entries[1].Text != "second" {
		t.Errorf("entries out of order: %+v", entries)
	}
}

func TestOutbox_AddReplacesSameToken(t *testing.T) {
	ob := NewOutbox(filepath.Join(t.TempDir(), "outbox.json"))
	ctx := context.Background()

	_ = ob.Add(ctx, testEntry("t1", "old"))
	_ = ob.Add(ctx, testEntry("t1", "new"))

	entries, err := ob.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(entries))
	}
	if entries[0].Text != "new" {
		t.Errorf("Text = %q, want %q", entries[0].Text, "new")
	}
}

func TestOutbox_Remove(t *testing.T) {
	ob := NewOutbox(filepath.Join(t.TempDir(), "outbox.json"))
	ctx := context.Background()

	_ = ob.Add(ctx, testEntry("t1", "first"))
	_ = ob.Add(ctx, testEntry("t2", "second"))

	if err := ob.Remove(ctx, "t1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	entries, _ := ob.List(ctx)
	if len(entries) != 1 || entries[0].ClientToken != "t2" {
		t.Errorf("entries after Remove = %+v", entries)
	}

	// Absent token is not an error.
	if err := ob.Remove(ctx, "missing"); err != nil {
		t.Errorf("Remove missing token failed: %v", err)
	}
}

func TestOutbox_ListEmpty(t *testing.T) {
	ob := NewOutbox(filepath.Join(t.TempDir(), "outbox.json"))

	entries, err := ob.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List returned %d entries, want 0", len(entries))
	}
}
