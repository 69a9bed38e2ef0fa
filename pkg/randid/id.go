// Package randid generates the short random identifiers the platform
// hands out, in the shapes the hosted service uses.
package randid

import "math/rand/v2"

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate creates a random lowercase alphanumeric ID of the specified
// length.
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// UserID returns a user ID in the platform's "u-" prefixed shape.
func UserID() string {
	return "u-" + Generate(8)
}
