package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/posecue/internal/log"
)

// TextThickness is the stroke width used for overlay text.
const TextThickness = 2

// Canvas is a Surface backed by a BGR gocv.Mat.
type Canvas struct {
	mat    gocv.Mat
	width  int
	height int
}

// NewCanvas creates a black canvas of the given size.
// The caller must Close it.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		mat:    gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3),
		width:  width,
		height: height,
	}
}

func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// DrawFrame converts img to BGR, scales it to the canvas and copies it in.
func (c *Canvas) DrawFrame(img *image.RGBA, flip bool) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		log.Warn("draw frame", "error", err)
		return
	}
	defer src.Close()

	if src.Cols() != c.width || src.Rows() != c.height {
		gocv.Resize(src, &src, image.Pt(c.width, c.height), 0, 0, gocv.InterpolationLinear)
	}

	if flip {
		gocv.Flip(src, &c.mat, 1)
		return
	}
	src.CopyTo(&c.mat)
}

func (c *Canvas) Circle(cx, cy, diameter float64, col color.RGBA) {
	radius := int(math.Round(diameter / 2))
	if radius < 1 {
		radius = 1
	}
	gocv.Circle(&c.mat, image.Pt(round(cx), round(cy)), radius, col, -1)
}

func (c *Canvas) Square(x, y, side float64, col color.RGBA) {
	x0, y0 := round(x), round(y)
	s := round(side)
	if s < 1 {
		s = 1
	}
	gocv.Rectangle(&c.mat, image.Rect(x0, y0, x0+s, y0+s), col, -1)
}

func (c *Canvas) Text(s string, x, y float64, style TextStyle) {
	face := hersheyFont(style.Font)
	scale := gocv.GetFontScaleFromHeight(face, round(style.Size), TextThickness)
	size := gocv.GetTextSize(s, face, scale, TextThickness)

	org := image.Pt(round(x)-size.X/2, round(y))
	gocv.PutText(&c.mat, s, org, face, scale, style.Color, TextThickness)
}

// Mat returns the underlying image. It stays owned by the canvas.
func (c *Canvas) Mat() gocv.Mat {
	return c.mat
}

// JPEG encodes the current canvas contents.
func (c *Canvas) JPEG() ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, c.mat)
	if err != nil {
		return nil, fmt.Errorf("encode canvas: %w", err)
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close releases the canvas memory.
func (c *Canvas) Close() error {
	return c.mat.Close()
}

func hersheyFont(f Font) gocv.HersheyFont {
	switch f {
	case FontScript:
		return gocv.FontHersheyScriptComplex
	case FontSerif:
		return gocv.FontHersheyComplex
	default:
		return gocv.FontHersheySimplex
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
