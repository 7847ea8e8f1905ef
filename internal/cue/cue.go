// Package cue turns the per-frame distance signal into one-shot cue events
// using a two-threshold hysteresis latch.
package cue

import (
	"errors"
	"fmt"
)

// Default thresholds, in pixels, for a 640x480 camera.
const (
	DefaultNear = 70.0
	DefaultFar  = 120.0
)

// ErrInvalidThresholds is returned when Near is not strictly below Far.
var ErrInvalidThresholds = errors.New("near threshold must be below far threshold")

// Thresholds partitions the signal into the near, middle and far bands.
type Thresholds struct {
	Near float64 `yaml:"near" json:"near"`
	Far  float64 `yaml:"far" json:"far"`
}

// DefaultThresholds returns the 70/120 pair.
func DefaultThresholds() Thresholds {
	return Thresholds{Near: DefaultNear, Far: DefaultFar}
}

// Validate checks 0 <= Near < Far.
func (t Thresholds) Validate() error {
	if t.Near < 0 {
		return fmt.Errorf("near threshold %.1f: %w", t.Near, ErrInvalidThresholds)
	}
	if t.Near >= t.Far {
		return fmt.Errorf("near %.1f, far %.1f: %w", t.Near, t.Far, ErrInvalidThresholds)
	}
	return nil
}

// Band is one of the three signal ranges used for rendering.
type Band int

const (
	BandNear Band = iota
	BandMiddle
	BandFar
)

func (b Band) String() string {
	switch b {
	case BandNear:
		return "near"
	case BandMiddle:
		return "middle"
	case BandFar:
		return "far"
	default:
		return fmt.Sprintf("Band(%d)", int(b))
	}
}

// BandOf classifies d: below Near is near, at or above Far is far.
// Note the far boundary differs from the trigger, which needs d > Far.
func BandOf(d float64, t Thresholds) Band {
	switch {
	case d < t.Near:
		return BandNear
	case d < t.Far:
		return BandMiddle
	default:
		return BandFar
	}
}

// Latch remembers which band was last announced.
type Latch int

const (
	LatchNone Latch = iota
	LatchNear
	LatchFar
)

func (l Latch) String() string {
	switch l {
	case LatchNone:
		return "none"
	case LatchNear:
		return "near"
	case LatchFar:
		return "far"
	default:
		return fmt.Sprintf("Latch(%d)", int(l))
	}
}

// Event is what a step asks the caller to announce.
type Event int

const (
	EventNone Event = iota
	EventNear
	EventFar
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventNear:
		return "near"
	case EventFar:
		return "far"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// State is the per-session memory carried from tick to tick.
// The zero value is the initial state.
type State struct {
	Signal    float64 // last extracted distance; stale when no pose was seen
	HasSignal bool
	Latch     Latch
}

// Step records d as the current signal and advances the latch.
//
//   - d > Far fires EventFar unless the latch already holds far.
//   - d < Near fires EventNear unless the latch already holds near.
//   - anything in between clears the latch, re-arming both events.
func Step(st State, d float64, t Thresholds) (State, Event) {
	st.Signal = d
	st.HasSignal = true

	switch {
	case d > t.Far:
		if st.Latch == LatchFar {
			return st, EventNone
		}
		st.Latch = LatchFar
		return st, EventFar
	case d < t.Near:
		if st.Latch == LatchNear {
			return st, EventNone
		}
		st.Latch = LatchNear
		return st, EventNear
	default:
		st.Latch = LatchNone
		return st, EventNone
	}
}
