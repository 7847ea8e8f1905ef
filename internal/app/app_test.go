package app

import (
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/posecue/internal/audio"
	"github.com/ayusman/posecue/internal/capture"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/render"
	"github.com/ayusman/posecue/internal/store"
)

type fixture struct {
	app      *App
	camera   *capture.MockCamera
	detector *pose.MockDetector
	surface  *render.Recorder
	near     *audio.MockPlayer
	far      *audio.MockPlayer
}

func newFixture(t *testing.T, s *store.Store) *fixture {
	t.Helper()

	f := &fixture{
		camera:   capture.NewMockCamera([]*image.RGBA{capture.SolidFrame(40, 40, 200)}, true),
		detector: pose.NewMockDetector(),
		surface:  render.NewRecorder(40, 40),
		near:     audio.NewMockPlayer(),
		far:      audio.NewMockPlayer(),
	}
	f.app = New(Config{
		Camera:     f.camera,
		Detector:   f.detector,
		Surface:    f.surface,
		Store:      s,
		Cues:       audio.Cues{Near: f.near, Far: f.far},
		Thresholds: cue.DefaultThresholds(),
		Stride:     5,
		TickHz:     100,
	})
	if err := f.camera.Open(); err != nil {
		t.Fatalf("camera open: %v", err)
	}
	return f
}

// face returns a one-person pose list with the given signal.
func face(d float64) []pose.Pose {
	return []pose.Pose{pose.FacePose(pose.Point{X: 20, Y: 30}, d)}
}

func TestApp_Tick_NoPose(t *testing.T) {
	f := newFixture(t, nil)

	st := cue.State{Signal: 42, HasSignal: true, Latch: cue.LatchNear}
	got := f.app.Tick(st)

	if got != st {
		t.Errorf("Tick() with no poses changed state: %+v -> %+v", st, got)
	}

	// Only the mirrored camera frame is drawn
	ops := f.surface.Ops()
	if len(ops) != 1 || ops[0].Kind != render.OpFrame || !ops[0].Flip {
		t.Errorf("ops = %+v, want one mirrored frame", ops)
	}
	if f.near.Plays()+f.far.Plays() != 0 {
		t.Error("no cue should fire without a pose")
	}
}

func TestApp_Tick_CueSequence(t *testing.T) {
	f := newFixture(t, nil)

	var fired []cue.Event
	f.app.OnCue(func(e cue.Event, _ float64) {
		fired = append(fired, e)
	})

	signals := []float64{130, 125, 100, 130, 50, 50, 100, 60}
	want := []cue.Event{cue.EventFar, cue.EventFar, cue.EventNear, cue.EventNear}

	var st cue.State
	for _, d := range signals {
		f.app.PublishPoses(face(d))
		st = f.app.Tick(st)
	}

	if len(fired) != len(want) {
		t.Fatalf("fired %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("cue %d = %v, want %v", i, fired[i], want[i])
		}
	}
	if f.far.Plays() != 2 || f.near.Plays() != 2 {
		t.Errorf("plays near=%d far=%d, want 2 and 2", f.near.Plays(), f.far.Plays())
	}
	if st.Latch != cue.LatchNear {
		t.Errorf("final latch = %v, want near", st.Latch)
	}
}

func TestApp_Tick_BoundaryHasNoCue(t *testing.T) {
	f := newFixture(t, nil)

	var st cue.State
	for _, d := range []float64{120, 70} {
		f.app.PublishPoses(face(d))
		st = f.app.Tick(st)
	}

	if f.near.Plays()+f.far.Plays() != 0 {
		t.Error("signals exactly on a threshold must not fire")
	}
	if st.Latch != cue.LatchNone {
		t.Errorf("latch = %v, want none", st.Latch)
	}
}

func TestApp_Tick_EffectPerBand(t *testing.T) {
	tests := []struct {
		d      float64
		text   string
		frames int
		shapes bool
	}{
		{50, "Great!", 1, true},
		{100, "Not Bad", 1, false},
		{120, "WARNING", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newFixture(t, nil)
			f.app.PublishPoses(face(tt.d))
			f.app.Tick(cue.State{})

			texts := f.surface.OfKind(render.OpText)
			if len(texts) != 1 || texts[0].Text != tt.text {
				t.Fatalf("texts = %+v, want %q", texts, tt.text)
			}
			if texts[0].X != 20 || texts[0].Y != 30-80 {
				t.Errorf("text anchor = (%v, %v)", texts[0].X, texts[0].Y)
			}
			if got := len(f.surface.OfKind(render.OpFrame)); got != tt.frames {
				t.Errorf("frame draws = %d, want %d", got, tt.frames)
			}
			shapes := len(f.surface.OfKind(render.OpCircle))+len(f.surface.OfKind(render.OpSquare)) > 0
			if shapes != tt.shapes {
				t.Errorf("halftone shapes drawn = %v, want %v", shapes, tt.shapes)
			}
		})
	}
}

func TestApp_Tick_MissingKeypointKeepsSignal(t *testing.T) {
	f := newFixture(t, nil)

	noEye := []pose.Pose{{Keypoints: []pose.Keypoint{{Part: pose.Nose}}}}
	f.app.PublishPoses(noEye)

	st := cue.State{Signal: 90, HasSignal: true}
	got := f.app.Tick(st)

	if got != st {
		t.Errorf("state = %+v, want unchanged %+v", got, st)
	}
	if len(f.surface.OfKind(render.OpText)) != 0 {
		t.Error("no overlay expected without a signal")
	}
}

func TestApp_Tick_Disabled(t *testing.T) {
	f := newFixture(t, nil)
	f.app.SetEnabled(false)
	f.app.PublishPoses(face(200))

	f.app.Tick(cue.State{})

	if f.far.Plays() != 0 {
		t.Error("cues must not fire while disabled")
	}
	if f.app.frames.Seq() != 0 {
		t.Error("frames must not reach the detector while disabled")
	}
	if f.app.Status().Enabled {
		t.Error("status should report disabled")
	}
}

func TestApp_Tick_ReadError(t *testing.T) {
	f := newFixture(t, nil)
	f.camera.Close()

	st := cue.State{Latch: cue.LatchFar}
	if got := f.app.Tick(st); got != st {
		t.Errorf("state changed on read error: %+v", got)
	}
	if len(f.surface.Ops()) != 0 {
		t.Error("nothing should be drawn without a frame")
	}
}

func TestApp_Tick_FrameToDetectorIsCopy(t *testing.T) {
	f := newFixture(t, nil)
	f.app.PublishPoses(face(200)) // warning mode thresholds the frame in place

	f.app.Tick(cue.State{})

	sent, ok := f.app.frames.Latest()
	if !ok {
		t.Fatal("no frame handed to the detector")
	}
	if sent.Image.Pix[0] != 200 {
		t.Errorf("detector frame pixel = %d, want untouched 200", sent.Image.Pix[0])
	}
}

func TestApp_SetThresholds(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.app.SetThresholds(cue.Thresholds{Near: 90, Far: 80}); err == nil {
		t.Error("SetThresholds should reject near >= far")
	}

	if err := f.app.SetThresholds(cue.Thresholds{Near: 20, Far: 40}); err != nil {
		t.Fatalf("SetThresholds() error = %v", err)
	}

	f.app.PublishPoses(face(50))
	st := f.app.Tick(cue.State{})

	if st.Latch != cue.LatchFar || f.far.Plays() != 1 {
		t.Errorf("new thresholds not applied: latch=%v far plays=%d", st.Latch, f.far.Plays())
	}
	if got := f.app.Status().Thresholds; got.Near != 20 || got.Far != 40 {
		t.Errorf("status thresholds = %+v", got)
	}
}

func TestApp_Status(t *testing.T) {
	f := newFixture(t, nil)

	var mu sync.Mutex
	var seen []Status
	f.app.OnTick(func(s Status) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	f.app.PublishPoses(face(130))
	f.app.Tick(cue.State{})

	s := f.app.Status()
	if !s.HasSignal || s.Signal != 130 || s.Band != "far" || s.Latch != "far" || s.LastCue != "far" {
		t.Errorf("status = %+v", s)
	}
	if s.Ticks != 1 || s.Poses != 1 {
		t.Errorf("ticks=%d poses=%d, want 1 and 1", s.Ticks, s.Poses)
	}
	if len(seen) != 1 || seen[0] != s {
		t.Errorf("OnTick saw %+v", seen)
	}
}

func TestApp_RecordsEvents(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	f := newFixture(t, s)

	var st cue.State
	for _, d := range []float64{130, 100, 40} {
		f.app.PublishPoses(face(d))
		st = f.app.Tick(st)
	}

	events, err := s.Events().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(events))
	}
	if n, _ := s.Events().Count("far"); n != 1 {
		t.Errorf("far events = %d, want 1", n)
	}
}

func TestApp_PresenterStopsLoop(t *testing.T) {
	f := newFixture(t, nil)

	var calls int
	f.app.AddPresenter(PresenterFunc(func(render.Surface) bool {
		calls++
		return calls < 3
	}))

	if err := f.app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-f.app.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop when the presenter returned false")
	}
	f.app.Stop()

	if calls != 3 {
		t.Errorf("presenter calls = %d, want 3", calls)
	}
}

func TestApp_StartStop_DetectorWorker(t *testing.T) {
	f := newFixture(t, nil)
	f.detector.SetPoses(face(130))

	if err := f.app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for f.far.Plays() == 0 {
		select {
		case <-deadline:
			f.app.Stop()
			t.Fatal("far cue never fired from detector results")
		case <-time.After(10 * time.Millisecond):
		}
	}

	f.app.Stop()

	if f.camera.IsOpen() {
		t.Error("camera should be closed after Stop")
	}
	if f.detector.Calls() == 0 {
		t.Error("detector was never called")
	}
	if f.far.Plays() != 1 {
		t.Errorf("far plays = %d, want exactly 1 while latched", f.far.Plays())
	}

	// Stop is idempotent
	f.app.Stop()
}
