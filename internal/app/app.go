// Package app wires the camera, pose detector, cue trigger and effects into
// the per-frame pipeline.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/posecue/internal/audio"
	"github.com/ayusman/posecue/internal/capture"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/effect"
	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/mailbox"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/render"
	"github.com/ayusman/posecue/internal/store"
)

// DefaultTickHz is the render loop rate when none is configured.
const DefaultTickHz = 30

// Presenter receives the surface after each tick has been drawn.
// Returning false asks the loop to stop.
type Presenter interface {
	Present(s render.Surface) bool
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(s render.Surface) bool

func (f PresenterFunc) Present(s render.Surface) bool { return f(s) }

// Config holds configuration options for the application.
type Config struct {
	Camera     capture.Camera
	Detector   pose.Detector
	Surface    render.Surface
	Store      *store.Store // optional, records cue events
	Cues       audio.Cues
	Extractor  pose.Extractor
	Thresholds cue.Thresholds
	Stride     int // halftone grid spacing
	TickHz     int

	// Stream encodes every rendered frame as JPEG into Output.
	Stream bool
}

// Status is a snapshot of the pipeline after a tick.
type Status struct {
	Enabled    bool           `json:"enabled"`
	Signal     float64        `json:"signal"`
	HasSignal  bool           `json:"has_signal"`
	Band       string         `json:"band,omitempty"`
	Latch      string         `json:"latch"`
	Poses      int            `json:"poses"`
	Thresholds cue.Thresholds `json:"thresholds"`
	LastCue    string         `json:"last_cue,omitempty"`
	Ticks      uint64         `json:"ticks"`
	Dropped    uint64         `json:"dropped_frames"`
}

// App is the main application that runs the capture, detect and render loop.
type App struct {
	config    Config
	camera    capture.Camera
	detector  pose.Detector
	surface   render.Surface
	selector  *effect.Selector
	extractor pose.Extractor

	// frames carries camera frames to the detector worker; poses carries
	// its results back. Both keep only the newest value.
	frames *mailbox.Slot[*capture.Frame]
	poses  *mailbox.Slot[[]pose.Pose]
	output *mailbox.Slot[[]byte]

	presenters []Presenter
	cueFuncs   []func(cue.Event, float64)
	tickFuncs  []func(Status)

	mu         sync.RWMutex
	enabled    bool
	thresholds cue.Thresholds
	status     Status

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new App instance with the given configuration.
// A missing camera, detector or surface falls back to the defaults.
func New(config Config) *App {
	if config.TickHz <= 0 {
		config.TickHz = DefaultTickHz
	}
	if config.Extractor.From == "" || config.Extractor.To == "" {
		config.Extractor = pose.DefaultExtractor()
	}
	if config.Thresholds.Validate() != nil {
		config.Thresholds = cue.DefaultThresholds()
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detector:   config.Detector,
		surface:    config.Surface,
		selector:   effect.NewSelector(config.Stride),
		extractor:  config.Extractor,
		output:     mailbox.New[[]byte](),
		enabled:    true,
		thresholds: config.Thresholds,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.DefaultConfig())
	}
	if a.surface == nil {
		a.surface = render.NewCanvas(capture.DefaultWidth, capture.DefaultHeight)
	}

	// Try PoseNet first, fall back to mock detector
	if a.detector == nil {
		if pn, err := pose.NewPoseNetDetector(pose.DefaultConfig()); err == nil {
			a.detector = pn
			log.Info("using PoseNet pose detection")
		} else {
			log.Warn("PoseNet not available, using mock detector", "err", err)
			a.detector = pose.NewMockDetector()
		}
	}

	a.status = Status{Enabled: true, Latch: cue.LatchNone.String(), Thresholds: a.thresholds}
	a.resetSlots()
	return a
}

func (a *App) resetSlots() {
	a.frames = mailbox.New[*capture.Frame]()
	a.poses = mailbox.New[[]pose.Pose]()
}

// SetEnabled enables or disables pose tracking. While disabled the camera
// image is still shown but no cues fire.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.status.Enabled = enabled
}

// IsEnabled returns whether pose tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetThresholds replaces the band thresholds. They apply from the next tick.
func (a *App) SetThresholds(t cue.Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.thresholds = t
	a.status.Thresholds = t
	return nil
}

// Thresholds returns the band thresholds in effect.
func (a *App) Thresholds() cue.Thresholds {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.thresholds
}

// Status returns the state after the most recent tick.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// OnCue registers fn to be called from the loop whenever a cue fires.
// Register callbacks before Start.
func (a *App) OnCue(fn func(e cue.Event, signal float64)) {
	a.cueFuncs = append(a.cueFuncs, fn)
}

// OnTick registers fn to be called from the loop after every tick.
// Register callbacks before Start.
func (a *App) OnTick(fn func(Status)) {
	a.tickFuncs = append(a.tickFuncs, fn)
}

// AddPresenter registers a presenter. Register presenters before Start.
func (a *App) AddPresenter(p Presenter) {
	a.presenters = append(a.presenters, p)
}

// Output returns the slot holding the newest rendered frame as JPEG.
// It is only fed when Config.Stream is set.
func (a *App) Output() *mailbox.Slot[[]byte] {
	return a.output
}

// Start opens the camera and runs the loop in the background.
func (a *App) Start() error {
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.mu.Unlock()

	if err := a.open(); err != nil {
		a.mu.Lock()
		a.cancel = nil
		close(a.done)
		a.mu.Unlock()
		cancel()
		return err
	}

	go func() {
		defer close(a.done)
		a.loop(ctx)
	}()

	log.Info("pipeline started", "tick_hz", a.config.TickHz)
	return nil
}

// Run opens the camera and runs the loop on the calling goroutine until ctx
// is cancelled or a presenter asks to stop. Native windows need this on the
// main thread.
func (a *App) Run(ctx context.Context) error {
	if err := a.open(); err != nil {
		return err
	}
	log.Info("pipeline running", "tick_hz", a.config.TickHz)
	a.loop(ctx)
	a.close()
	return nil
}

// Stop halts the loop started by Start and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.close()

	log.Info("pipeline stopped")
}

// Done is closed when a loop started by Start exits.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

func (a *App) open() error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.resetSlots()
	go a.detectLoop(a.frames, a.poses)
	return nil
}

func (a *App) close() {
	a.frames.Close()
	a.poses.Close()

	if err := a.camera.Close(); err != nil {
		log.Error("error closing camera", "err", err)
	}
	if err := a.detector.Close(); err != nil {
		log.Error("error closing detector", "err", err)
	}
}

// PublishPoses injects a pose result as if the detector had produced it.
func (a *App) PublishPoses(poses []pose.Pose) {
	a.poses.Publish(poses)
}

func (a *App) tickInterval() time.Duration {
	return time.Second / time.Duration(a.config.TickHz)
}
