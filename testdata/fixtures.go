// Package testdata provides synthetic frames and signal scenarios shared by
// the end-to-end tests.
package testdata

import (
	"image"
	"image/color"

	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/pose"
)

// GradientFrame returns a frame whose grey level rises from black at the
// left edge to white at the right edge.
func GradientFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		level := uint8(0)
		if w > 1 {
			level = uint8(x * 255 / (w - 1))
		}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, color.RGBA{R: level, G: level, B: level, A: 255})
		}
	}
	return img
}

// Step is one tick of a scenario: the signal the primary pose yields and
// the cue the trigger should fire for it.
type Step struct {
	Signal float64
	Want   cue.Event
}

// Scenario is a named sweep of signals under fixed thresholds.
type Scenario struct {
	Name       string
	Thresholds cue.Thresholds
	Steps      []Step
}

// Events returns the non-empty cues the scenario expects, in order.
func (s Scenario) Events() []cue.Event {
	var out []cue.Event
	for _, st := range s.Steps {
		if st.Want != cue.EventNone {
			out = append(out, st.Want)
		}
	}
	return out
}

// Poses returns the detector output for step i: one face at nose whose
// keypoint distance equals the step's signal.
func (s Scenario) Poses(i int, nose pose.Point) []pose.Pose {
	return []pose.Pose{pose.FacePose(nose, s.Steps[i].Signal)}
}

// Scenarios lists sweeps under the default 70/120 thresholds.
func Scenarios() []Scenario {
	def := cue.DefaultThresholds()
	return []Scenario{
		{
			Name:       "lean away and back",
			Thresholds: def,
			Steps: []Step{
				{100, cue.EventNone},
				{130, cue.EventFar},
				{140, cue.EventNone},
				{100, cue.EventNone},
				{125, cue.EventFar},
			},
		},
		{
			Name:       "jump across bands",
			Thresholds: def,
			Steps: []Step{
				{130, cue.EventFar},
				{50, cue.EventNear},
				{130, cue.EventFar},
				{60, cue.EventNear},
				{65, cue.EventNone},
			},
		},
		{
			Name:       "boundaries never fire",
			Thresholds: def,
			Steps: []Step{
				{120, cue.EventNone},
				{70, cue.EventNone},
				{120, cue.EventNone},
				{69.9, cue.EventNear},
				{70, cue.EventNone},
				{69.9, cue.EventNear},
			},
		},
	}
}
