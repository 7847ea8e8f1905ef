// Package render provides the 2D display surface the pipeline draws onto.
package render

import (
	"image"
	"image/color"
)

// Font selects a typeface family for overlay text.
type Font string

const (
	FontDefault Font = ""
	FontScript  Font = "script"
	FontSerif   Font = "serif"
)

// TextStyle describes how overlay text is drawn.
type TextStyle struct {
	Size  float64 // glyph height in pixels
	Color color.RGBA
	Font  Font
}

// Surface is a drawing target. Coordinates are in frame pixels with the
// origin at the top-left corner. Shapes are filled and have no outline.
type Surface interface {
	// Size returns the surface width and height.
	Size() (width, height int)

	// DrawFrame paints img over the whole surface, flipped horizontally when flip is set.
	DrawFrame(img *image.RGBA, flip bool)

	// Circle fills a circle centered on (cx, cy) with the given diameter.
	Circle(cx, cy, diameter float64, c color.RGBA)

	// Square fills a square whose top-left corner is (x, y).
	Square(x, y, side float64, c color.RGBA)

	// Text draws s horizontally centered on x with its baseline at y.
	Text(s string, x, y float64, style TextStyle)
}

// Mirror returns a view of s in which every primitive is flipped about the
// vertical center line. Text stays readable; only its anchor moves.
func Mirror(s Surface) Surface {
	if m, ok := s.(mirrored); ok {
		return m.Surface
	}
	return mirrored{s}
}

type mirrored struct {
	Surface
}

func (m mirrored) width() float64 {
	w, _ := m.Size()
	return float64(w)
}

func (m mirrored) DrawFrame(img *image.RGBA, flip bool) {
	m.Surface.DrawFrame(img, !flip)
}

func (m mirrored) Circle(cx, cy, diameter float64, c color.RGBA) {
	m.Surface.Circle(m.width()-cx, cy, diameter, c)
}

func (m mirrored) Square(x, y, side float64, c color.RGBA) {
	m.Surface.Square(m.width()-x-side, y, side, c)
}

func (m mirrored) Text(s string, x, y float64, style TextStyle) {
	m.Surface.Text(s, m.width()-x, y, style)
}
