package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "u1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleParent.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestSession_Valid(t *testing.T) {
	s := Session{UserID: "u1", Role: RoleStudent}
	assert.True(t, s.Valid())

	assert.False(t, (&Session{Role: RoleStudent}).Valid(), "user id required")
	assert.False(t, (&Session{UserID: "u1"}).Valid(), "role required")
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "no token", token: "", want: false},
		{name: "garbage token", token: "not-a-jwt", want: false},
		{name: "no exp claim", token: signedToken(t, time.Time{}), want: false},
		{name: "future exp", token: signedToken(t, now.Add(time.Hour)), want: false},
		{name: "past exp", token: signedToken(t, now.Add(-time.Hour)), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Session{UserID: "u1", Role: RoleParent, AccessToken: tt.token}
			assert.Equal(t, tt.want, s.Expired(now))
		})
	}
}
