package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolconnect/internal/core/chat"
)

func TestFeedSubscription_DeliversInserts(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/feed", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		frames := []string{
			`{"type":"insert","row":{"id":"m1","text":"hi","sender_id":"u1"}}`,
			`not json`,
			`{"type":"presence"}`,
			`{"type":"insert","row":{"id":"m2","text":"hey","sender_id":"u2"}}`,
		}
		for _, f := range frames {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(f)))
		}

		// Hold the connection open until the client hangs up.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-key", 5*time.Second, zerolog.Nop())
	sub, err := c.SubscribeFeed(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	var rows []chat.Row
	timeout := time.After(5 * time.Second)
	for len(rows) < 2 {
		select {
		case row := <-sub.Events():
			rows = append(rows, row)
		case <-timeout:
			t.Fatalf("timed out with %d rows", len(rows))
		}
	}

	assert.Equal(t, "m1", rows[0].ID)
	assert.Equal(t, "m2", rows[1].ID)
}

func TestFeedSubscription_CloseStopsPump(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, zerolog.Nop())
	sub, err := c.SubscribeFeed(context.Background())
	require.NoError(t, err)

	sub.Close()

	_, open := <-sub.Events()
	assert.False(t, open, "events channel closes on Close")
}

func TestFeedSubscription_ReconnectsAfterDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	dials := make(chan struct{}, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials <- struct{}{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the connection immediately; the client should dial again.
		conn.Close()
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, zerolog.Nop())
	sub, err := c.SubscribeFeed(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 2; i++ {
		select {
		case <-dials:
		case <-time.After(10 * time.Second):
			t.Fatal("feed did not reconnect")
		}
	}
}
