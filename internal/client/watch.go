package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/poesyliang/poesy-blog/internal/migration"
)

// EventStream is an open subscription to migration events.
type EventStream struct {
	ctx     context.Context
	conn    *websocket.Conn
	stop    func() bool
	pending *migration.Event
}

// DialEvents subscribes to migration events. The stream is closed when ctx
// is done or Close is called.
func (c *Client) DialEvents(ctx context.Context) (*EventStream, error) {
	wsEndpoint := strings.Replace(c.baseURL, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + migratePath + "/events")
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	s := &EventStream{
		ctx:  ctx,
		conn: conn,
		stop: context.AfterFunc(ctx, func() { conn.Close() }),
	}

	// The server confirms the subscription once it is registered; events
	// published after that point reach this stream.
	hello, err := s.Next()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("await subscription: %w", err)
	}
	if hello.Type != migration.EventSubscribed {
		s.pending = &hello
	}
	return s, nil
}

// Next blocks until the next event arrives.
func (s *EventStream) Next() (migration.Event, error) {
	if ev := s.pending; ev != nil {
		s.pending = nil
		return *ev, nil
	}

	var ev migration.Event
	if err := s.conn.ReadJSON(&ev); err != nil {
		if s.ctx.Err() != nil {
			return ev, s.ctx.Err()
		}
		return ev, fmt.Errorf("read event: %w", err)
	}
	return ev, nil
}

// Close ends the subscription.
func (s *EventStream) Close() error {
	s.stop()
	return s.conn.Close()
}

// WatchMigration subscribes to migration events, then calls start, if
// non-nil, to launch a run. Events of the run whose ID start returns are
// passed to onEvent until that run completes or fails; an empty ID follows
// whichever run comes first. It also returns when onEvent returns an error
// or ctx is done.
func (c *Client) WatchMigration(ctx context.Context, start func(context.Context) (string, error), onEvent func(migration.Event) error) error {
	stream, err := c.DialEvents(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	var runID string
	if start != nil {
		if runID, err = start(ctx); err != nil {
			return err
		}
	}

	for {
		ev, err := stream.Next()
		if err != nil {
			return err
		}
		if runID != "" && ev.RunID != runID {
			continue
		}
		if err := onEvent(ev); err != nil {
			return err
		}
		if ev.Terminal() {
			return nil
		}
	}
}
