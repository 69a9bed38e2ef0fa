package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel errors for feed operations.
var (
	ErrEmptyText            = errors.New("message text is empty")
	ErrNoSender             = errors.New("sender is not set")
	ErrHistoryAfterMutation = errors.New("history load after live updates began")
	ErrTokenNotFound        = errors.New("no pending message for token")
)

// Feed maintains the ordered local view of one conversation. It merges
// the initial history load, optimistic local sends, and change feed
// insert events without ever displaying a confirmed row twice.
//
// A Feed is owned by a single goroutine (the UI event loop); it does no
// internal locking.
type Feed struct {
	messages []Message
	byID     map[string]struct{} // confirmed store IDs present in the view
	byToken  map[string]int      // pending client token -> position
	mutated  bool                // a send or feed event has been applied
	now      func() time.Time
	log      zerolog.Logger
}

// NewFeed creates an empty feed.
func NewFeed(log zerolog.Logger) *Feed {
	return &Feed{
		byID:    make(map[string]struct{}),
		byToken: make(map[string]int),
		now:     time.Now,
		log:     log,
	}
}

// WithClock overrides the local clock used for provisional timestamps.
func (f *Feed) WithClock(now func() time.Time) *Feed {
	f.now = now
	return f
}

// Messages returns the current ordered view. The returned slice is a
// copy; callers may not mutate feed state through it.
func (f *Feed) Messages() []Message {
	out := make([]Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// Len returns the number of messages in the view.
func (f *Feed) Len() int {
	return len(f.messages)
}

// LoadHistory initializes the view from an initial store query, given in
// ascending created_at order. Re-running with the same rows before any
// other mutation yields the same view. Once a send or feed event has
// been applied the history is live and a reload is refused.
func (f *Feed) LoadHistory(rows []Row) error {
	if f.mutated {
		return ErrHistoryAfterMutation
	}

	f.messages = f.messages[:0]
	clear(f.byID)
	clear(f.byToken)

	for _, row := range rows {
		if row.ID == "" {
			f.log.Warn().Str("sender", row.SenderID).Msg("history row missing id, skipped")
			continue
		}
		if _, ok := f.byID[row.ID]; ok {
			continue
		}
		f.byID[row.ID] = struct{}{}
		f.messages = append(f.messages, confirmed(row))
	}

	return nil
}

// Send appends an optimistic entry for text authored by senderID and
// returns it. The entry is visible immediately; the caller issues the
// store insert carrying the returned ClientToken and reports the outcome
// via MarkSent or MarkFailed.
func (f *Feed) Send(text, senderID string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyText
	}
	if senderID == "" {
		return Message{}, ErrNoSender
	}

	msg := Message{
		ClientToken: uuid.NewString(),
		Text:        text,
		SenderID:    senderID,
		// Local clock, advisory only. The store assigns the real one.
		CreatedAt: f.now(),
		State:     StatePending,
	}

	f.byToken[msg.ClientToken] = len(f.messages)
	f.messages = append(f.messages, msg)
	f.mutated = true

	return msg, nil
}

// ApplyInsert reconciles one change feed event into the view:
//
//  1. a row whose ID is already present is a redelivery, dropped
//  2. a row matching a pending client token replaces that entry in place
//  3. anything else is a new remote message, appended
//
// Delivery may repeat and may race the caller's own insert response;
// the result is the same either way.
func (f *Feed) ApplyInsert(row Row) {
	if row.ID == "" {
		f.log.Warn().Str("sender", row.SenderID).Msg("feed row missing id, dropped")
		return
	}
	f.mutated = true

	if _, ok := f.byID[row.ID]; ok {
		return
	}

	if row.ClientToken != "" {
		if pos, ok := f.byToken[row.ClientToken]; ok {
			f.messages[pos] = confirmed(row)
			f.byID[row.ID] = struct{}{}
			delete(f.byToken, row.ClientToken)
			return
		}
	}

	f.byID[row.ID] = struct{}{}
	f.messages = append(f.messages, confirmed(row))
}

// MarkSent records that the insert request for a pending entry was
// accepted. The entry stays pending until its row arrives on the feed;
// this only clears a previous failure mark.
func (f *Feed) MarkSent(token string) error {
	pos, ok := f.byToken[token]
	if !ok {
		// Feed event won the race and already confirmed the entry.
		return nil
	}
	if f.messages[pos].State == StateFailed {
		f.messages[pos].State = StatePending
	}
	return nil
}

// MarkFailed flags a pending entry whose insert request failed. The
// entry keeps its position and text so the user can retry.
func (f *Feed) MarkFailed(token string) error {
	pos, ok := f.byToken[token]
	if !ok {
		return ErrTokenNotFound
	}
	f.messages[pos].State = StateFailed
	return nil
}

// Retry re-arms a failed entry and returns the updated message so the
// caller can reissue the insert. The entry keeps its position and its
// original client token: a send that timed out locally may still have
// reached the store, and its feed row carries the original token. With
// the token unchanged, whichever insert lands first replaces the entry
// in place and the other is absorbed, never duplicated.
func (f *Feed) Retry(token string) (Message, error) {
	pos, ok := f.byToken[token]
	if !ok {
		return Message{}, ErrTokenNotFound
	}
	if f.messages[pos].State != StateFailed {
		return f.messages[pos], nil
	}

	f.messages[pos].State = StatePending
	return f.messages[pos], nil
}

func confirmed(row Row) Message {
	return Message{
		ID:          row.ID,
		ClientToken: row.ClientToken,
		Text:        row.Text,
		SenderID:    row.SenderID,
		CreatedAt:   row.CreatedAt,
		State:       StateConfirmed,
	}
}
