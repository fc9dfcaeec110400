package canvas

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/mazznoer/csscolorparser"

	"github.com/HaaL01/drawing-board/internal/protocol"
)

// Raster paints into an RGBA image. Erasing (destination-out) clears the
// covered pixels to transparent.
type Raster struct {
	styleStack
	dc *gg.Context
}

// NewRaster creates a width x height canvas cleared to background. An empty
// background leaves the canvas transparent.
func NewRaster(width, height int, background string) (*Raster, error) {
	dc := gg.NewContext(width, height)
	if background != "" {
		c, err := ParseColor(background)
		if err != nil {
			return nil, err
		}
		dc.SetColor(c)
		dc.Clear()
	}
	return &Raster{styleStack: newStyleStack(), dc: dc}, nil
}

// SetStrokeStyle ignores colors it cannot parse, like a browser context does.
func (r *Raster) SetStrokeStyle(style string) {
	if _, err := ParseColor(style); err == nil {
		r.styleStack.SetStrokeStyle(style)
	}
}

// SetFillStyle ignores colors it cannot parse.
func (r *Raster) SetFillStyle(style string) {
	if _, err := ParseColor(style); err == nil {
		r.styleStack.SetFillStyle(style)
	}
}

// StrokeLine strokes a segment with round caps.
func (r *Raster) StrokeLine(from, to protocol.Point) {
	r.paint(r.cur.StrokeStyle, func(dc *gg.Context) {
		dc.SetLineWidth(r.cur.LineWidth)
		dc.SetLineCapRound()
		dc.DrawLine(from.X, from.Y, to.X, to.Y)
		dc.Stroke()
	})
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.paint(r.cur.FillStyle, func(dc *gg.Context) {
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	})
}

// Image returns the backing image. It is not a copy.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// SavePNG writes the canvas to a PNG file at path.
func (r *Raster) SavePNG(path string) error { return r.dc.SavePNG(path) }

func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) paint(style string, draw func(dc *gg.Context)) {
	if r.erasing() {
		mask := gg.NewContext(r.dc.Width(), r.dc.Height())
		mask.SetRGBA(0, 0, 0, 1)
		draw(mask)
		r.clearMasked(mask.Image().(*image.RGBA))
		return
	}
	c, err := ParseColor(style)
	if err != nil {
		c = color.Black
	}
	r.dc.SetColor(c)
	draw(r.dc)
}

// clearMasked applies destination-out: every premultiplied channel of the
// destination is scaled by the inverse of the mask's alpha.
func (r *Raster) clearMasked(mask *image.RGBA) {
	dst, ok := r.dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	for i := 3; i < len(mask.Pix) && i < len(dst.Pix); i += 4 {
		a := mask.Pix[i]
		if a == 0 {
			continue
		}
		keep := 255 - uint32(a)
		for j := i - 3; j <= i; j++ {
			dst.Pix[j] = uint8(uint32(dst.Pix[j]) * keep / 255)
		}
	}
}

// ParseColor parses any CSS color value a browser canvas accepts as a
// stroke or fill style.
func ParseColor(s string) (color.Color, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
