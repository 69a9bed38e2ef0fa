// Package backend is the client for the hosted school platform: a
// Postgres-backed REST API for users and messages plus a websocket
// change feed of message inserts. Everything durable lives on the
// platform; this package only moves rows.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"schoolconnect/internal/core/chat"
	"schoolconnect/internal/core/directory"
	"schoolconnect/internal/core/session"
)

// Sentinel errors for platform calls.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform returned %d: %s", e.Status, e.Body)
}

// Credentials are the login form fields.
type Credentials struct {
	Email      string       `json:"email"`
	PlatformID string       `json:"platform_id"`
	Password   string       `json:"password"`
	Role       session.Role `json:"role"`
}

// LoginResult is the platform's answer to a successful login.
type LoginResult struct {
	User        directory.User `json:"user"`
	AccessToken string         `json:"access_token"`
}

// Client talks to the platform's REST API.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// New creates a platform client. baseURL is the REST root, apiKey the
// platform's anon key.
func New(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// WithToken returns a copy of the client authenticated as a user.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// Login resolves credentials to a platform user and access token.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/login", creds, &result)

	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	return result, nil
}

// ListMessages returns the conversation history in ascending created_at
// order, as the store queries it.
func (c *Client) ListMessages(ctx context.Context) ([]chat.Row, error) {
	var rows []chat.Row
	if err := c.do(ctx, http.MethodGet, "/api/messages?order=created_at.asc", nil, &rows); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return rows, nil
}

// insertRequest is the message insert payload. The store assigns id and
// created_at; client_token is persisted so the change feed can echo it
// back to the sender.
type insertRequest struct {
	Text        string `json:"text"`
	SenderID    string `json:"sender_id"`
	ClientToken string `json:"client_token"`
}

// InsertMessage appends a message to the store and returns the created
// row.
func (c *Client) InsertMessage(ctx context.Context, text, senderID, clientToken string) (chat.Row, error) {
	req := insertRequest{Text: text, SenderID: senderID, ClientToken: clientToken}

	var row chat.Row
	if err := c.do(ctx, http.MethodPost, "/api/messages", req, &row); err != nil {
		return chat.Row{}, fmt.Errorf("insert message: %w", err)
	}
	return row, nil
}

// ListUsers returns the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]directory.User, error) {
	var users []directory.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FeedURL returns the websocket URL of the change feed.
func (c *Client) FeedURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/feed"
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("platform request")

	if resp.StatusCode == http.StatusUnauthorized && path != "/api/login" {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setAuth adds the platform headers to a request or dial.
func (c *Client) setAuth(h http.Header) {
	if c.apiKey != "" {
		h.Set("X-Api-Key", c.apiKey)
	}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
}
