// Command devserver runs a local stand-in for the school's
// communication platform: the login, message, and user endpoints plus
// the websocket change feed, backed by memory. It exists so the client
// can be developed and demoed without the real platform.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"schoolconnect/internal/backend"
	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/directory"
	"schoolconnect/internal/core/session"
	"schoolconnect/pkg/randid"
)

var jwtSecret = []byte("devserver-local-secret")

type server struct {
	mu       sync.Mutex
	users    []directory.User
	messages []chat.Row

	hub *hub
	log zerolog.Logger

	// raceDelay postpones the insert response until after the feed
	// event goes out, so clients can be tested against the event
	// arriving first.
	raceDelay time.Duration
}

func newServer(log zerolog.Logger, raceDelay time.Duration) *server {
	s := &server{
		users: []directory.User{
			{ID: "u-dana", PlatformID: "PR1001", Name: "Dana Mokoena", Role: session.RoleParent},
			{ID: "u-thabo", PlatformID: "ST2044", Name: "Thabo Mokoena", Role: session.RoleStudent},
			{ID: "u-naidoo", PlatformID: "TE0007", Name: "Mrs Naidoo", Role: session.RoleTeacher},
		},
		hub:       newHub(log.With().Str("component", "hub").Logger()),
		log:       log,
		raceDelay: raceDelay,
	}
	go s.hub.run()
	return s
}

func main() {
	var (
		addr      string
		raceDelay time.Duration
	)

	app := &cli.Command{
		Name:      "devserver",
		Usage:     "Local stand-in for the school communication platform",
		UsageText: "devserver [--addr :8790] [--race-delay 150ms]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       ":8790",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "race-delay",
				Usage:       "delay insert responses so the feed event arrives first",
				Destination: &raceDelay,
			},
		},
		Action: func(ctx context.Context, _ *cli.Command) error {
			logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			s := newServer(logger, raceDelay)

			logger.Info().Str("addr", addr).Msg("devserver listening")
			return http.ListenAndServe(addr, s.routes())
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("devserver failed")
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/api/messages", s.handleListMessages)
		r.Post("/api/messages", s.handleInsertMessage)
		r.Get("/api/users", s.handleListUsers)
		r.Get("/api/feed", s.hub.serveWs)
	})

	return r
}

// requireToken checks the bearer token signature. The dev server does
// not care who the subject is.
func (s *server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	if creds.Password == "" || !creds.Role.Valid() {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	user, ok := s.findUser(creds)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign token")
		return
	}

	s.log.Info().Str("user", user.Name).Msg("login")
	writeJSON(w, http.StatusOK, backend.LoginResult{User: user, AccessToken: token})
}

// findUser matches by platform ID and role. Unknown platform IDs get a
// fresh user so any credentials work against the dev server.
func (s *server) findUser(creds backend.Credentials) (directory.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.PlatformID == creds.PlatformID && u.Role == creds.Role {
			return u, true
		}
	}

	user := directory.User{
		ID:         randid.UserID(),
		PlatformID: creds.PlatformID,
		Name:       creds.Email,
		Role:       creds.Role,
	}
	s.users = append(s.users, user)
	return user, true
}

func (s *server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := make([]chat.Row, len(s.messages))
	copy(rows, s.messages)
	s.mu.Unlock()

	// Rows are stored in insert order, which is created_at.asc.
	writeJSON(w, http.StatusOK, rows)
}

func (s *server) handleInsertMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text        string `json:"text"`
		SenderID    string `json:"sender_id"`
		ClientToken string `json:"client_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Text) == "" || req.SenderID == "" {
		writeError(w, http.StatusBadRequest, "text and sender_id are required")
		return
	}

	row := chat.Row{
		ID:          uuid.NewString(),
		Text:        req.Text,
		SenderID:    req.SenderID,
		ClientToken: req.ClientToken,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	if existing, ok := s.rowByToken(req.ClientToken); ok {
		// Redelivered insert, same client token. Return the stored row
		// instead of creating a duplicate.
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, existing)
		return
	}
	s.messages = append(s.messages, row)
	s.mu.Unlock()

	event, _ := json.Marshal(map[string]any{"type": "insert", "row": row})
	s.hub.broadcast <- event

	if s.raceDelay > 0 {
		time.Sleep(s.raceDelay)
	}

	writeJSON(w, http.StatusCreated, row)
}

// rowByToken must be called with the lock held.
func (s *server) rowByToken(token string) (chat.Row, bool) {
	if token == "" {
		return chat.Row{}, false
	}
	for _, row := range s.messages {
		if row.ClientToken == token {
			return row, true
		}
	}
	return chat.Row{}, false
}

func (s *server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]directory.User, len(s.users))
	copy(users, s.users)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, users)
}

func signToken(user directory.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
