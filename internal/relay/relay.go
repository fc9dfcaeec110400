// Package relay forwards every message received from one peer to all other
// connected peers.
package relay

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/HaaL01/drawing-board/internal/protocol"
)

// DefaultSendBuffer is the per-peer queue length used when Options leaves
// SendBuffer unset.
const DefaultSendBuffer = 256

// Options configures a Relay.
type Options struct {
	// SendBuffer is the number of messages queued per peer before new
	// messages for that peer are dropped.
	SendBuffer int
	// StampSender sets the "userId" field of forwarded JSON objects to the
	// sender's identity. Other payloads are always forwarded verbatim.
	StampSender bool
	Logger      *slog.Logger
}

// Relay owns the set of live connections.
type Relay struct {
	conns map[string]*Conn
	mu    sync.RWMutex
	opts  Options
	log   *slog.Logger
}

// New returns an empty relay configured by opts.
func New(opts Options) *Relay {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Relay{
		conns: make(map[string]*Conn),
		opts:  opts,
		log:   opts.Logger,
	}
}

// Accept registers ws under a fresh identity and starts its write pump.
// The peer is removed again by Close or when a write to it fails. Serve
// additionally reads from ws and relays what it sends.
func (r *Relay) Accept(ws *websocket.Conn) *Conn {
	c := &Conn{
		Conn:      ws,
		Connected: time.Now(),
		send:      make(chan frame, r.opts.SendBuffer),
	}

	r.mu.Lock()
	for {
		c.ID = uuid.NewString()
		if _, taken := r.conns[c.ID]; !taken {
			break
		}
	}
	r.conns[c.ID] = c
	n := len(r.conns)
	r.mu.Unlock()

	go c.writePump(r.log, func() { r.Close(c.ID) })

	r.log.Info("peer connected", "id", c.ID, "remote", ws.RemoteAddr().String(), "peers", n)
	return c
}

// Serve accepts ws and relays everything it sends until the connection
// fails or is closed.
func (r *Relay) Serve(ws *websocket.Conn) {
	c := r.Accept(ws)
	defer r.Close(c.ID)

	for {
		typ, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				r.log.Warn("websocket read failed", "id", c.ID, "err", err)
			}
			return
		}
		r.broadcast(c.ID, frame{typ: typ, data: msg})
	}
}

// Broadcast queues a text message for every peer except from and reports
// how many peers accepted it.
func (r *Relay) Broadcast(from string, msg []byte) int {
	return r.broadcast(from, frame{typ: websocket.TextMessage, data: msg})
}

func (r *Relay) broadcast(from string, f frame) int {
	if r.opts.StampSender && f.typ == websocket.TextMessage {
		f.data, _ = protocol.StampSender(f.data, from)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for id, c := range r.conns {
		if id == from {
			continue
		}
		if c.enqueue(f) {
			delivered++
		} else {
			r.log.Debug("dropping message", "from", from, "to", id)
		}
	}
	return delivered
}

// Close removes id from the live set and shuts its connection down. Closing
// an unknown or already closed identity is a no-op.
func (r *Relay) Close(id string) bool {
	r.mu.Lock()
	c, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	n := len(r.conns)
	r.mu.Unlock()

	if !ok {
		return false
	}
	c.shutdown()
	r.log.Info("peer disconnected", "id", id, "remote", c.Conn.RemoteAddr().String(), "peers", n, "connected_for", time.Since(c.Connected).Round(time.Millisecond))
	return true
}

// CloseAll disconnects every peer.
func (r *Relay) CloseAll() {
	for _, id := range r.Peers() {
		r.Close(id)
	}
}

// Len returns the number of live connections.
func (r *Relay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Peers returns the live identities in sorted order.
func (r *Relay) Peers() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
