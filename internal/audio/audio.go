// Package audio plays the near and far cue sounds.
package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/log"
)

// ErrNoSound is returned when a cue has no sound attached.
var ErrNoSound = errors.New("no sound loaded")

// Player plays one sound. Play restarts the sound from the beginning if it
// is already playing; calls are never queued.
type Player interface {
	Play() error
}

// Cues maps trigger events to sounds.
type Cues struct {
	Near Player
	Far  Player
}

// Fire plays the sound for e. EventNone and missing players are no-ops.
func (c Cues) Fire(e cue.Event) error {
	var p Player
	switch e {
	case cue.EventNear:
		p = c.Near
	case cue.EventFar:
		p = c.Far
	default:
		return nil
	}
	if p == nil {
		return nil
	}
	if err := p.Play(); err != nil {
		return fmt.Errorf("play %s cue: %w", e, err)
	}
	log.Debug("cue played", "event", e.String())
	return nil
}

// MockPlayer counts plays for testing.
type MockPlayer struct {
	mu    sync.Mutex
	plays int
	err   error
}

// NewMockPlayer creates a new MockPlayer.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{}
}

// SetError makes subsequent Play calls fail with err.
func (m *MockPlayer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Plays returns how many times Play was called.
func (m *MockPlayer) Plays() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

func (m *MockPlayer) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	return m.err
}
