// Package transport is the client side of the relay connection: it sends
// local draw events and hands remote ones to a Handler.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HaaL01/drawing-board/internal/protocol"
)

// ErrClosed is returned once the channel to the relay is gone. There is no
// reconnect; a new Client has to be dialed.
var ErrClosed = errors.New("connection closed")

// Handler receives decoded remote events.
type Handler interface {
	ApplyEvent(ev protocol.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev protocol.Event)

// ApplyEvent calls f(ev).
func (f HandlerFunc) ApplyEvent(ev protocol.Event) { f(ev) }

// Client is one connection to the relay. Sends may be called from any
// goroutine; Run must only be called once.
type Client struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	log  *slog.Logger

	closeOnce sync.Once
}

// Dial opens the single long-lived channel to the relay at url.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	logger.Info("connected to relay", "url", url)
	return &Client{conn: conn, log: logger}, nil
}

// Send encodes ev and writes it. Delivery is not acknowledged.
func (c *Client) Send(ev protocol.Event) error {
	data, err := protocol.Encode(ev)
	if err != nil {
		return err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

// Pump sends every event produced on events until the channel is closed,
// ctx is done or a write fails.
func (c *Client) Pump(ctx context.Context, events <-chan protocol.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := c.Send(ev); err != nil {
				return err
			}
		}
	}
}

// Run reads from the relay until the connection drops or ctx is done.
// Messages that fail to decode are dropped.
func (c *Client) Run(ctx context.Context, h Handler) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", ErrClosed, err)
		}
		ev, err := protocol.Decode(data)
		if err != nil {
			c.log.Debug("dropping message", "err", err)
			continue
		}
		h.ApplyEvent(ev)
	}
}

// Close sends a close frame and releases the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}
