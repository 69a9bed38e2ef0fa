package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"schoolconnect/internal/core/chat"
)

const (
	// Time allowed to write a control message to the peer.
	feedWriteWait = 10 * time.Second
	// Time allowed to read the next pong from the peer.
	feedPongWait = 60 * time.Second
	// Ping period. Must be less than feedPongWait.
	feedPingPeriod = (feedPongWait * 9) / 10
	// Reconnect backoff bounds.
	feedBackoffMin = time.Second
	feedBackoffMax = 30 * time.Second
)

// feedEvent is one change feed frame. Only message inserts are emitted
// today; the type field leaves room for more.
type feedEvent struct {
	Type string   `json:"type"`
	Row  chat.Row `json:"row"`
}

// FeedSubscription consumes the platform's insert change feed. Rows are
// delivered at-least-once with no ordering guarantee relative to this
// client's own inserts; the chat.Feed reconciler absorbs both.
type FeedSubscription struct {
	url    string
	header http.Header
	events chan chat.Row
	cancel context.CancelFunc
	done   chan struct{}
	log    zerolog.Logger
}

// SubscribeFeed opens the change feed and starts its read pump. The
// subscription reconnects with capped backoff until Close is called or
// ctx is done.
func (c *Client) SubscribeFeed(ctx context.Context) (*FeedSubscription, error) {
	wsURL, err := c.FeedURL()
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	c.setAuth(header)

	ctx, cancel := context.WithCancel(ctx)
	sub := &FeedSubscription{
		url:    wsURL,
		header: header,
		events: make(chan chat.Row, 64),
		cancel: cancel,
		done:   make(chan struct{}),
		log:    c.log.With().Str("component", "feed").Logger(),
	}

	go sub.run(ctx)
	return sub, nil
}

// Events returns the channel of insert rows. It is closed when the
// subscription stops.
func (s *FeedSubscription) Events() <-chan chat.Row {
	return s.events
}

// Close tears down the subscription and waits for the pump to exit.
func (s *FeedSubscription) Close() {
	s.cancel()
	<-s.done
}

// run dials and pumps until ctx is done, reconnecting on failure.
func (s *FeedSubscription) run(ctx context.Context) {
	defer close(s.events)
	defer close(s.done)

	backoff := feedBackoffMin
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, s.header)
		if err != nil {
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("feed dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, feedBackoffMax)
			continue
		}

		s.log.Debug().Str("url", s.url).Msg("feed connected")
		backoff = feedBackoffMin
		s.pump(ctx, conn)
	}
}

// pump reads events from one connection until it breaks, keeping the
// connection alive with pings.
func (s *FeedSubscription) pump(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close() //nolint:errcheck

	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	// Ping ticker and ctx watcher; closing the connection unblocks the
	// read loop below.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(feedPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(feedWriteWait))
				_ = conn.Close()
				return
			case <-stop:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("feed read failed")
			}
			return
		}

		var ev feedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn().Err(err).Msg("feed frame not decodable, dropped")
			continue
		}
		if ev.Type != "insert" {
			continue
		}

		select {
		case s.events <- ev.Row:
		case <-ctx.Done():
			return
		}
	}
}
