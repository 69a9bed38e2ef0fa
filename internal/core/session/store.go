package session

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned when no session is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Store defines persistence for the single current session.
type Store interface {
	// Current returns the stored session. Returns ErrNotLoggedIn if none.
	Current(ctx context.Context) (Session, error)
	// Save stores the session, replacing any previous one.
	Save(ctx context.Context, s Session) error
	// Clear removes the stored session. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}
