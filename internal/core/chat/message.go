// Package chat defines the conversation domain types and the feed
// reconciler that keeps the local message view consistent against the
// platform's change feed.
package chat

import "time"

// State represents the delivery lifecycle of a message in the local view.
type State string

const (
	// StatePending is a locally-authored message awaiting store confirmation.
	StatePending State = "pending"
	// StateConfirmed is a message the store has assigned an ID to.
	StateConfirmed State = "confirmed"
	// StateFailed is a locally-authored message whose insert failed.
	// The text stays visible so the user can retry.
	StateFailed State = "failed"
)

// Message is a single chat message in the local view.
type Message struct {
	// ID is assigned by the message store. Empty until confirmed.
	ID string `json:"id,omitempty"`
	// ClientToken correlates an optimistic send with the store row that
	// later arrives on the change feed. Never shown to other clients.
	ClientToken string    `json:"client_token,omitempty"`
	Text        string    `json:"text"`
	SenderID    string    `json:"sender_id"`
	CreatedAt   time.Time `json:"created_at"`
	State       State     `json:"state"`
}

// Confirmed returns true once the store has assigned the message an ID.
func (m *Message) Confirmed() bool {
	return m.State == StateConfirmed
}

// Row is a message row as delivered by the store query or the change
// feed. CreatedAt and ID are store-assigned; ClientToken is echoed back
// only for rows this client inserted.
type Row struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	SenderID    string    `json:"sender_id"`
	ClientToken string    `json:"client_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
