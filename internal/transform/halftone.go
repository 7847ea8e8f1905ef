package transform

import (
	"image"
	"image/color"

	"github.com/ayusman/posecue/internal/render"
)

// DefaultStride is the halftone grid spacing in pixels.
const DefaultStride = 5

// Halftone palette. Dark cells get the bright green.
var (
	HalftoneDark  = color.RGBA{R: 10, G: 244, B: 3, A: 255}
	HalftoneLight = color.RGBA{R: 0, G: 134, B: 0, A: 255}
)

// Halftone re-renders the frame as a coarse grid of shapes sized and
// coloured by brightness. It reads the frame but never modifies it.
type Halftone struct {
	Stride int
}

// Cell is one sampled grid position and the shape drawn for it.
type Cell struct {
	X, Y   int
	Size   float64
	Color  color.RGBA
	Circle bool // false means square
}

// Cells samples the frame on the grid. The top-left pixel of each cell
// stands for the whole cell. Cells below the top quarter are circles.
func (h Halftone) Cells(frame *image.RGBA) []Cell {
	stride := h.Stride
	if stride <= 0 {
		stride = DefaultStride
	}

	b := frame.Bounds()
	maxSize := float64(stride) * 1.25
	quarter := float64(b.Dy()) / 4

	cells := make([]Cell, 0, (b.Dx()/stride+1)*(b.Dy()/stride+1))
	for y := 0; y < b.Dy(); y += stride {
		for x := 0; x < b.Dx(); x += stride {
			i := frame.PixOffset(b.Min.X+x, b.Min.Y+y)
			v := Brightness(frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2])

			c := HalftoneLight
			if v < 128 {
				c = HalftoneDark
			}

			cells = append(cells, Cell{
				X:      x,
				Y:      y,
				Size:   Remap(v, 0, 255, 2, maxSize),
				Color:  c,
				Circle: float64(y) > quarter,
			})
		}
	}
	return cells
}

func (h Halftone) Apply(frame *image.RGBA, s render.Surface) {
	for _, c := range h.Cells(frame) {
		if c.Circle {
			s.Circle(float64(c.X), float64(c.Y), c.Size, c.Color)
		} else {
			s.Square(float64(c.X), float64(c.Y), c.Size, c.Color)
		}
	}
}
