package render

import (
	"image"
	"image/color"
	"sync"
)

// OpKind identifies a recorded drawing primitive.
type OpKind string

const (
	OpFrame  OpKind = "frame"
	OpCircle OpKind = "circle"
	OpSquare OpKind = "square"
	OpText   OpKind = "text"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  OpKind
	X, Y  float64
	Size  float64 // diameter for circles, side for squares
	Color color.RGBA
	Text  string
	Style TextStyle
	Flip  bool
	Frame *image.RGBA
}

// Recorder is a Surface that records every primitive instead of drawing it.
type Recorder struct {
	width, height int

	mu  sync.Mutex
	ops []Op
}

// NewRecorder creates a Recorder of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) Size() (int, int) {
	return r.width, r.height
}

func (r *Recorder) DrawFrame(img *image.RGBA, flip bool) {
	r.record(Op{Kind: OpFrame, Flip: flip, Frame: img})
}

func (r *Recorder) Circle(cx, cy, diameter float64, c color.RGBA) {
	r.record(Op{Kind: OpCircle, X: cx, Y: cy, Size: diameter, Color: c})
}

func (r *Recorder) Square(x, y, side float64, c color.RGBA) {
	r.record(Op{Kind: OpSquare, X: x, Y: y, Size: side, Color: c})
}

func (r *Recorder) Text(s string, x, y float64, style TextStyle) {
	r.record(Op{Kind: OpText, X: x, Y: y, Text: s, Style: style, Color: style.Color})
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

// Ops returns a copy of everything recorded so far.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OfKind returns the recorded ops of one kind.
func (r *Recorder) OfKind(kind OpKind) []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}
