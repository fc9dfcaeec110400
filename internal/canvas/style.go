// Package canvas provides drawing surfaces that replay remote draw events.
// Recorder keeps a log of operations, Raster paints into an RGBA image.
package canvas

import "github.com/HaaL01/drawing-board/internal/protocol"

// Style is the rendering state saved and restored by Save and Restore.
type Style struct {
	StrokeStyle        string
	FillStyle          string
	LineWidth          float64
	CompositeOperation string
}

// DefaultStyle matches the initial state of a browser 2D context.
func DefaultStyle() Style {
	return Style{
		StrokeStyle:        "#000000",
		FillStyle:          "#000000",
		LineWidth:          1,
		CompositeOperation: "source-over",
	}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

type styleStack struct {
	cur   Style
	saved []Style
}

func newStyleStack() styleStack {
	return styleStack{cur: DefaultStyle()}
}

func (s *styleStack) Save() {
	s.saved = append(s.saved, s.cur)
}

// Restore pops the last saved style. Without a matching Save it does nothing.
func (s *styleStack) Restore() {
	if len(s.saved) == 0 {
		return
	}
	s.cur = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
}

func (s *styleStack) SetStrokeStyle(style string) { s.cur.StrokeStyle = style }
func (s *styleStack) SetFillStyle(style string)   { s.cur.FillStyle = style }
func (s *styleStack) SetCompositeOperation(op string) {
	s.cur.CompositeOperation = op
}

// SetLineWidth ignores non-positive widths.
func (s *styleStack) SetLineWidth(w float64) {
	if w > 0 {
		s.cur.LineWidth = w
	}
}

// Style returns the current rendering state.
func (s *styleStack) Style() Style { return s.cur }

// Depth reports how many styles are saved.
func (s *styleStack) Depth() int { return len(s.saved) }

func (s *styleStack) erasing() bool {
	return s.cur.CompositeOperation == protocol.CompositeErase
}
