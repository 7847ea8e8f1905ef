// Package effect chooses and renders the per-band visual overlay.
package effect

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/render"
	"github.com/ayusman/posecue/internal/transform"
)

// TextLift is how far above the nose overlay text is anchored.
const TextLift = 80

// Mode is the visual treatment for one signal band.
type Mode int

const (
	ModeEncouraging Mode = iota
	ModeNeutral
	ModeWarning
)

func (m Mode) String() string {
	switch m {
	case ModeEncouraging:
		return "encouraging"
	case ModeNeutral:
		return "neutral"
	case ModeWarning:
		return "warning"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Select maps the signal to a mode. It depends on d alone, never on the
// trigger latch.
func Select(d float64, t cue.Thresholds) Mode {
	switch cue.BandOf(d, t) {
	case cue.BandNear:
		return ModeEncouraging
	case cue.BandMiddle:
		return ModeNeutral
	default:
		return ModeWarning
	}
}

// Overlay is the caption drawn for a mode.
type Overlay struct {
	Text  string
	Style render.TextStyle
}

// Overlays returns the caption for each mode.
func Overlays() map[Mode]Overlay {
	return map[Mode]Overlay{
		ModeEncouraging: {
			Text:  "Great!",
			Style: render.TextStyle{Size: 80, Color: color.RGBA{R: 255, B: 255, A: 255}, Font: render.FontScript},
		},
		ModeNeutral: {
			Text:  "Not Bad",
			Style: render.TextStyle{Size: 50, Color: color.RGBA{G: 255, A: 255}, Font: render.FontDefault},
		},
		ModeWarning: {
			Text:  "WARNING",
			Style: render.TextStyle{Size: 100, Color: color.RGBA{R: 255, A: 255}, Font: render.FontSerif},
		},
	}
}

// Selector renders modes onto a surface.
type Selector struct {
	Halftone transform.Halftone
	Overlays map[Mode]Overlay
}

// NewSelector creates a Selector with the given halftone stride.
func NewSelector(stride int) *Selector {
	return &Selector{
		Halftone: transform.Halftone{Stride: stride},
		Overlays: Overlays(),
	}
}

// Render draws the mode's transform (if any) and then its caption centred
// above the nose of p. Pose coordinates are already in display space, so
// the caption is drawn on s directly. Without a nose keypoint only the
// transform is drawn.
func (sel *Selector) Render(s render.Surface, frame *image.RGBA, p pose.Pose, mode Mode) {
	switch mode {
	case ModeEncouraging:
		transform.Composite(sel.Halftone, frame, s)
	case ModeWarning:
		transform.Composite(transform.ThresholdTransform{}, frame, s)
	}

	nose, ok := p.Keypoint(pose.Nose)
	if !ok {
		return
	}
	o, ok := sel.Overlays[mode]
	if !ok {
		return
	}
	s.Text(o.Text, nose.Position.X, nose.Position.Y-TextLift, o.Style)
}
