// Package session defines the signed-in user context and its lifecycle.
// A session is established at login, persisted between runs, and cleared
// at logout. Everything that needs the current user receives a Session
// explicitly; there is no ambient global.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the platform role of the signed-in user.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is one of the platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleTeacher:
		return true
	}
	return false
}

// Session is the signed-in user context.
type Session struct {
	UserID     string `json:"user_id"`
	PlatformID string `json:"platform_id"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Email      string `json:"email"`
	// AccessToken is the bearer token the backend issued at login.
	AccessToken string    `json:"access_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Valid reports whether the session carries everything the dashboard
// needs to resolve the sender and render bubbles.
func (s *Session) Valid() bool {
	return s.UserID != "" && s.Role.Valid() && !s.Expired(time.Now())
}

// Expired reports whether the access token has an exp claim in the past.
// A session without a token, or with a token carrying no exp claim,
// never expires locally; the backend is the authority either way.
func (s *Session) Expired(now time.Time) bool {
	if s.AccessToken == "" {
		return false
	}

	// Unverified parse: we only read the expiry hint. Signature
	// verification belongs to the backend.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
