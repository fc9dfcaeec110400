package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Tool names carried in the "tool" field of every event.
const (
	ToolLine      = "Line"
	ToolRectangle = "Rectangle"
	ToolMouse     = "Mouse"
)

// Mouse button transitions carried by Mouse events.
const (
	MouseDown = "mousedown"
	MouseUp   = "mouseup"
)

// CompositeErase is the composite operation used by the erase tool.
const CompositeErase = "destination-out"

// Decode errors.
var (
	ErrMalformed   = errors.New("malformed event")
	ErrUnknownTool = errors.New("unknown tool")
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one draw event on the wire. The set of implementations is closed:
// Line, Rectangle and Mouse.
type Event interface {
	// Tool returns the value of the "tool" tag.
	Tool() string
	// Sender returns the identity the relay stamped on the event, if any.
	Sender() string

	event()
}

// Line is one pencil sample. Consecutive samples from the same peer are joined
// into a stroke by the receiver.
type Line struct {
	UserID                   string  `json:"userId,omitempty"`
	StrokeStyle              string  `json:"strokeStyle,omitempty"`
	LineWidth                float64 `json:"lineWidth"`
	GlobalCompositeOperation string  `json:"globalCompositeOperation,omitempty"`
	Position                 Point   `json:"position"`
}

// Rectangle fills an axis-aligned rectangle.
type Rectangle struct {
	UserID    string  `json:"userId,omitempty"`
	Position  Point   `json:"position"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	FillStyle string  `json:"fillStyle,omitempty"`
}

// Mouse reports a button transition of the sender.
type Mouse struct {
	UserID string `json:"userId,omitempty"`
	Event  string `json:"event"`
}

func (Line) Tool() string      { return ToolLine }
func (Rectangle) Tool() string { return ToolRectangle }
func (Mouse) Tool() string     { return ToolMouse }

func (l Line) Sender() string      { return l.UserID }
func (r Rectangle) Sender() string { return r.UserID }
func (m Mouse) Sender() string     { return m.UserID }

func (Line) event()      {}
func (Rectangle) event() {}
func (Mouse) event()     {}

// MarshalJSON encodes l with its "tool" tag.
func (l Line) MarshalJSON() ([]byte, error) {
	type line Line
	return json.Marshal(struct {
		Tool string `json:"tool"`
		line
	}{ToolLine, line(l)})
}

// MarshalJSON encodes r with its "tool" tag.
func (r Rectangle) MarshalJSON() ([]byte, error) {
	type rectangle Rectangle
	return json.Marshal(struct {
		Tool string `json:"tool"`
		rectangle
	}{ToolRectangle, rectangle(r)})
}

// MarshalJSON encodes m with its "tool" tag.
func (m Mouse) MarshalJSON() ([]byte, error) {
	type mouse Mouse
	return json.Marshal(struct {
		Tool string `json:"tool"`
		mouse
	}{ToolMouse, mouse(m)})
}

// Encode serializes an event to JSON text, tag included.
func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil event", ErrMalformed)
	}
	return json.Marshal(e)
}

// Decode parses one JSON event. Missing numeric fields decode as zero and
// missing style fields as empty strings. A well-formed object with a tag
// outside the known set yields ErrUnknownTool.
func Decode(raw []byte) (Event, error) {
	var head struct {
		Tool string `json:"tool"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		ev  Event
		err error
	)
	switch head.Tool {
	case ToolLine:
		var l Line
		err = json.Unmarshal(raw, &l)
		ev = l
	case ToolRectangle:
		var r Rectangle
		err = json.Unmarshal(raw, &r)
		ev = r
	case ToolMouse:
		var m Mouse
		err = json.Unmarshal(raw, &m)
		ev = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, head.Tool)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, head.Tool, err)
	}
	return ev, nil
}

// StampSender sets the "userId" field of a JSON object to id. Anything that
// is not a JSON object is returned unchanged with ok set to false.
func StampSender(raw []byte, id string) (stamped []byte, ok bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return raw, false
	}
	idRaw, err := json.Marshal(id)
	if err != nil {
		return raw, false
	}
	obj["userId"] = idRaw
	out, err := json.Marshal(obj)
	if err != nil {
		return raw, false
	}
	return out, true
}
