package canvas

import "github.com/HaaL01/drawing-board/internal/protocol"

// OpKind names a recorded drawing operation.
type OpKind string

const (
	OpStroke OpKind = "stroke"
	OpFill   OpKind = "fill"
)

// Op is one drawing operation together with the style it was drawn with.
type Op struct {
	Kind  OpKind
	From  protocol.Point
	To    protocol.Point
	Rect  Rect
	Style Style
}

// Recorder is a canvas that records operations instead of painting them.
// It is not safe for concurrent use.
type Recorder struct {
	styleStack
	Ops []Op
}

// NewRecorder returns an empty recorder with the default style.
func NewRecorder() *Recorder {
	return &Recorder{styleStack: newStyleStack()}
}

// StrokeLine records a line segment drawn with the current style.
func (r *Recorder) StrokeLine(from, to protocol.Point) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, From: from, To: to, Style: r.cur})
}

// FillRect records a filled rectangle drawn with the current style.
func (r *Recorder) FillRect(x, y, w, h float64) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Rect: Rect{x, y, w, h}, Style: r.cur})
}

// Last returns the most recent operation.
func (r *Recorder) Last() (Op, bool) {
	if len(r.Ops) == 0 {
		return Op{}, false
	}
	return r.Ops[len(r.Ops)-1], true
}
