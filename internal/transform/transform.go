// Package transform implements the per-frame pixel effects and the stage
// that composites them onto the display surface.
package transform

import (
	"image"

	"github.com/ayusman/posecue/internal/render"
)

// Transform renders a frame onto a surface. It may mutate the frame in place.
type Transform interface {
	Apply(frame *image.RGBA, s render.Surface)
}

// Composite applies t through the mirrored view of s, so every transform
// lands in the same orientation as the mirrored camera image.
func Composite(t Transform, frame *image.RGBA, s render.Surface) {
	t.Apply(frame, render.Mirror(s))
}

// Passthrough draws the frame unchanged.
type Passthrough struct{}

func (Passthrough) Apply(frame *image.RGBA, s render.Surface) {
	s.DrawFrame(frame, false)
}

// Brightness is the unweighted mean of the three colour channels.
func Brightness(r, g, b uint8) float64 {
	return (float64(r) + float64(g) + float64(b)) / 3
}

// Remap linearly maps v from [inMin, inMax] to [outMin, outMax] without clamping.
func Remap(v, inMin, inMax, outMin, outMax float64) float64 {
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}
