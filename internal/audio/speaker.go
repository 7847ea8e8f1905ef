package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/ayusman/posecue/internal/log"
)

// OutputRate is the sample rate the speaker is opened at. Sounds with a
// different rate are resampled on load.
const OutputRate beep.SampleRate = 44100

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(OutputRate, OutputRate.N(time.Second/10))
		if speakerErr == nil {
			log.Info("audio output ready", "rate", int(OutputRate))
		}
	})
	return speakerErr
}

// SpeakerPlayer plays a sound decoded fully into memory at load time.
type SpeakerPlayer struct {
	name   string
	buffer *beep.Buffer

	mu      sync.Mutex
	current *beep.Ctrl
}

// LoadSound decodes an mp3 or wav file and opens the speaker on first use.
func LoadSound(path string) (*SpeakerPlayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("unsupported sound format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode sound: %w", err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if format.SampleRate != OutputRate {
		src = beep.Resample(4, format.SampleRate, OutputRate, stream)
		format.SampleRate = OutputRate
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(src)

	if err := initSpeaker(); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	log.Info("sound loaded", "path", path, "samples", buffer.Len())
	return &SpeakerPlayer{name: filepath.Base(path), buffer: buffer}, nil
}

// Play starts the sound from the beginning, cutting off any earlier play
// of the same sound.
func (p *SpeakerPlayer) Play() error {
	if p.buffer == nil || p.buffer.Len() == 0 {
		return ErrNoSound
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctrl := &beep.Ctrl{Streamer: p.buffer.Streamer(0, p.buffer.Len())}

	speaker.Lock()
	if p.current != nil {
		// A Ctrl with no streamer reports drained and is dropped by the mixer.
		p.current.Streamer = nil
	}
	speaker.Unlock()

	p.current = ctrl
	speaker.Play(ctrl)
	return nil
}

func (p *SpeakerPlayer) String() string {
	return p.name
}
