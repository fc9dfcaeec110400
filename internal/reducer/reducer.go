// Package reducer replays remote draw events onto a local canvas.
package reducer

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/HaaL01/drawing-board/internal/protocol"
)

// Canvas is the subset of a 2D drawing context the reducer needs.
type Canvas interface {
	Save()
	Restore()
	SetStrokeStyle(style string)
	SetFillStyle(style string)
	SetLineWidth(w float64)
	SetCompositeOperation(op string)
	StrokeLine(from, to protocol.Point)
	FillRect(x, y, w, h float64)
}

// MouseState is the last known button state of a peer.
type MouseState int

const (
	MouseUnknown MouseState = iota
	MouseDown
	MouseUp
)

func (m MouseState) String() string {
	switch m {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	default:
		return "unknown"
	}
}

// PeerState is what the reducer remembers about one remote peer.
type PeerState struct {
	Last    protocol.Point
	HasLast bool
	Mouse   MouseState
}

// Reducer applies events one at a time. State is kept per sender so that
// interleaved strokes from different peers never join up.
type Reducer struct {
	mu     sync.Mutex
	canvas Canvas
	peers  map[string]*PeerState
	log    *slog.Logger
}

// New returns a reducer drawing onto canvas. A nil logger uses slog.Default.
func New(canvas Canvas, logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{
		canvas: canvas,
		peers:  make(map[string]*PeerState),
		log:    logger,
	}
}

// Apply decodes raw and applies it. Events with an unknown tool are ignored;
// malformed input is reported and leaves the canvas untouched.
func (r *Reducer) Apply(raw []byte) error {
	ev, err := protocol.Decode(raw)
	if errors.Is(err, protocol.ErrUnknownTool) {
		r.log.Debug("ignoring event", "err", err)
		return nil
	}
	if err != nil {
		return err
	}
	r.ApplyEvent(ev)
	return nil
}

// ApplyEvent draws a single decoded event.
func (r *Reducer) ApplyEvent(ev protocol.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e := ev.(type) {
	case protocol.Line:
		r.line(e)
	case protocol.Rectangle:
		r.rectangle(e)
	case protocol.Mouse:
		r.mouse(e)
	}
}

// Peer returns a copy of the state kept for id.
func (r *Reducer) Peer(id string) (PeerState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.peers[id]
	if !ok {
		return PeerState{}, false
	}
	return *st, true
}

func (r *Reducer) peer(id string) *PeerState {
	st, ok := r.peers[id]
	if !ok {
		st = &PeerState{}
		r.peers[id] = st
	}
	return st
}

func (r *Reducer) line(e protocol.Line) {
	st := r.peer(e.UserID)
	from := e.Position
	if st.HasLast {
		from = st.Last
	}

	r.canvas.Save()
	if e.StrokeStyle != "" {
		r.canvas.SetStrokeStyle(e.StrokeStyle)
	}
	r.canvas.SetLineWidth(e.LineWidth)
	if e.GlobalCompositeOperation != "" {
		r.canvas.SetCompositeOperation(e.GlobalCompositeOperation)
	}
	r.canvas.StrokeLine(from, e.Position)
	r.canvas.Restore()

	st.Last = e.Position
	st.HasLast = true
}

func (r *Reducer) rectangle(e protocol.Rectangle) {
	r.canvas.Save()
	if e.FillStyle != "" {
		r.canvas.SetFillStyle(e.FillStyle)
	}
	r.canvas.FillRect(e.Position.X, e.Position.Y, e.Width, e.Height)
	r.canvas.Restore()
}

func (r *Reducer) mouse(e protocol.Mouse) {
	st := r.peer(e.UserID)
	switch e.Event {
	case protocol.MouseDown:
		st.Mouse = MouseDown
	case protocol.MouseUp:
		st.Mouse = MouseUp
		st.HasLast = false
	}
}
