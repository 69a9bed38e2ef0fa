// Package directory resolves sender IDs to display names and roles for
// rendering. It is presentation-only: a lookup miss degrades to an
// unlabeled bubble, never an error.
package directory

import "schoolconnect/internal/core/session"

// User is one entry in the platform's user directory.
type User struct {
	ID         string       `json:"id"`
	PlatformID string       `json:"platform_id"`
	Name       string       `json:"name"`
	Role       session.Role `json:"role"`
}

// Directory is an in-memory snapshot of the user table, loaded once per
// dashboard run.
type Directory struct {
	byID map[string]User
}

// New builds a directory from a user listing. Entries without an ID are
// skipped.
func New(users []User) *Directory {
	d := &Directory{byID: make(map[string]User, len(users))}
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		d.byID[u.ID] = u
	}
	return d
}

// Lookup returns the user for an ID. ok is false on a miss.
func (d *Directory) Lookup(id string) (User, bool) {
	u, ok := d.byID[id]
	return u, ok
}

// Len returns the number of known users.
func (d *Directory) Len() int {
	return len(d.byID)
}
