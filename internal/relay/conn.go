package relay

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

type frame struct {
	typ  int
	data []byte
}

// Conn is one connected peer.
type Conn struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	send   chan frame
	closed bool
	mu     sync.Mutex
}

// enqueue never blocks: a full queue drops the frame for this peer only.
func (c *Conn) enqueue(f frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

func (c *Conn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump drains the send queue onto the socket. It owns all writes. A
// failed write calls drop, which is expected to unregister the peer.
func (c *Conn) writePump(log *slog.Logger, drop func()) {
	defer c.Conn.Close()

	for f := range c.send {
		if err := c.Conn.WriteMessage(f.typ, f.data); err != nil {
			log.Debug("websocket write failed", "id", c.ID, "err", err)
			drop()
			return
		}
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
}
