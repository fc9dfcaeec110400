package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaaL01/drawing-board/internal/protocol"
)

func TestRecorderSaveRestore(t *testing.T) {
	r := NewRecorder()
	r.Save()
	r.SetFillStyle("#ff0000")
	r.SetLineWidth(0)
	r.FillRect(1, 2, 3, 4)
	r.Restore()
	r.Restore() // unbalanced restore is ignored

	op, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, OpFill, op.Kind)
	assert.Equal(t, Rect{1, 2, 3, 4}, op.Rect)
	assert.Equal(t, "#ff0000", op.Style.FillStyle)
	assert.Equal(t, 1.0, op.Style.LineWidth)
	assert.Equal(t, DefaultStyle(), r.Style())
	assert.Zero(t, r.Depth())
}

func assertColor(t *testing.T, want color.NRGBA, got color.Color, msg string) {
	t.Helper()
	n, ok := got.(color.NRGBA)
	require.True(t, ok, msg)
	// fractional channels may round either way
	assert.InDelta(t, want.R, n.R, 1, msg)
	assert.InDelta(t, want.G, n.G, 1, msg)
	assert.InDelta(t, want.B, n.B, 1, msg)
	assert.InDelta(t, want.A, n.A, 1, msg)
}

func TestParseColor(t *testing.T) {
	tests := map[string]color.NRGBA{
		"#ff0000":                   {255, 0, 0, 255},
		"#0f0":                      {0, 255, 0, 255},
		"#00000080":                 {0, 0, 0, 128},
		"rgb(1, 2, 3)":              {1, 2, 3, 255},
		"rgba(10,20,30,0.5)":        {10, 20, 30, 128},
		"rgb(255 0 0)":              {255, 0, 0, 255},
		"rgb(1.5, 2, 3)":            {2, 2, 3, 255},
		"rgb(100%, 0%, 0%)":         {255, 0, 0, 255},
		"hsl(0, 100%, 50%)":         {255, 0, 0, 255},
		"hsla(120, 100%, 25%, 0.5)": {0, 128, 0, 128},
		"White":                     {255, 255, 255, 255},
		"cornflowerblue":            {100, 149, 237, 255},
		"navy":                      {0, 0, 128, 255},
		"rebeccapurple":             {102, 51, 153, 255},
		"transparent":               {0, 0, 0, 0},
	}
	for in, want := range tests {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assertColor(t, want, got, in)
	}

	for _, name := range []string{
		"aliceblue", "antiquewhite", "aqua", "beige", "chartreuse", "crimson",
		"darkgoldenrod", "darkslategray", "deeppink", "gainsboro", "honeydew",
		"lavenderblush", "lightseagreen", "mediumvioletred", "mintcream",
		"olivedrab", "papayawhip", "rosybrown", "teal", "yellowgreen",
	} {
		_, err := ParseColor(name)
		assert.NoError(t, err, name)
	}

	for _, in := range []string{"", "#12", "#zzzzzz", "rgb(1,2)", "notacolor"} {
		_, err := ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestRasterAcceptsCSSStyles(t *testing.T) {
	r, err := NewRaster(4, 4, "")
	require.NoError(t, err)
	for _, style := range []string{"hsl(0, 100%, 50%)", "cornflowerblue", "rgb(255 0 0)", "rgb(100%, 0%, 0%)", "navy"} {
		r.SetStrokeStyle(style)
		assert.Equal(t, style, r.Style().StrokeStyle)
	}

	r.SetFillStyle("hsl(240, 100%, 50%)")
	r.FillRect(0, 0, 4, 4)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, r.Image().At(2, 2))
}

func TestRasterFillAndErase(t *testing.T) {
	r, err := NewRaster(40, 40, "#ffffff")
	require.NoError(t, err)

	r.SetFillStyle("#ff0000")
	r.FillRect(0, 0, 20, 20)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, r.Image().At(10, 10))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, r.Image().At(30, 30))

	r.SetLineWidth(6)
	r.SetCompositeOperation(protocol.CompositeErase)
	r.StrokeLine(protocol.Point{X: 0, Y: 10}, protocol.Point{X: 40, Y: 10})
	assert.Equal(t, color.RGBA{0, 0, 0, 0}, r.Image().At(10, 10))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, r.Image().At(10, 2))

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
}

func TestRasterIgnoresBadStyles(t *testing.T) {
	r, err := NewRaster(10, 10, "")
	require.NoError(t, err)
	r.SetStrokeStyle("not a color")
	r.SetFillStyle("#00ff00")
	assert.Equal(t, "#000000", r.Style().StrokeStyle)
	assert.Equal(t, "#00ff00", r.Style().FillStyle)

	_, err = NewRaster(10, 10, "nope")
	assert.Error(t, err)
}
