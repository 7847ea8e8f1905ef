package app

import (
	"context"
	"time"

	"github.com/ayusman/posecue/internal/capture"
	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/effect"
	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/mailbox"
	"github.com/ayusman/posecue/internal/pose"
	"github.com/ayusman/posecue/internal/store"
	"github.com/ayusman/posecue/internal/transform"
)

// loop drives Tick at the configured rate. The cue state lives here and
// nowhere else.
func (a *App) loop(ctx context.Context) {
	ticker := time.NewTicker(a.tickInterval())
	defer ticker.Stop()

	var st cue.State
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var ok bool
			st, ok = a.tick(st)
			if !ok {
				log.Info("presenter closed, stopping loop")
				return
			}
		}
	}
}

// detectLoop runs the pose detector on the newest frame whenever one is
// available. It is slower than the tick loop; frames it cannot keep up with
// are overwritten in the slot and never queue.
func (a *App) detectLoop(frames *mailbox.Slot[*capture.Frame], poses *mailbox.Slot[[]pose.Pose]) {
	for {
		frame, ok := frames.Next()
		if !ok {
			return
		}

		result, err := a.detector.Detect(frame.Image)
		if err != nil {
			log.Warn("pose detection failed", "err", err)
			continue
		}
		poses.Publish(result)
	}
}

// Tick runs one frame of the pipeline and returns the next cue state.
//
// Pipeline logic:
// 1. Read a frame and hand a copy to the detector
// 2. Draw the frame mirrored
// 3. Read the newest poses; with none, present and keep st unchanged
// 4. Update the signal from the primary pose and step the trigger
// 5. Fire the cue sound for any edge
// 6. Render the effect for the signal's band and present
func (a *App) Tick(st cue.State) cue.State {
	st, _ = a.tick(st)
	return st
}

func (a *App) tick(st cue.State) (cue.State, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Warn("error reading frame", "err", err)
		return st, true
	}

	enabled := a.IsEnabled()
	if enabled {
		// The tick may transform its frame in place
		a.frames.Publish(frame.Clone())
	}

	transform.Composite(transform.Passthrough{}, frame.Image, a.surface)

	var poses []pose.Pose
	if enabled {
		poses, _ = a.poses.Latest()
	}
	if len(poses) == 0 {
		return st, a.finish(st, 0, nil)
	}

	d, ok := a.extractor.Extract(poses)
	if !ok {
		// Keypoints missing: keep the previous signal untouched
		return st, a.finish(st, len(poses), nil)
	}
	th := a.Thresholds()
	st, ev := cue.Step(st, d, th)
	if ev != cue.EventNone {
		a.fire(ev, d)
	}

	band := cue.BandOf(d, th)
	a.selector.Render(a.surface, frame.Image, poses[0], effect.Select(d, th))

	return st, a.finish(st, len(poses), &band)
}

func (a *App) fire(ev cue.Event, d float64) {
	log.Info("cue fired", "event", ev.String(), "signal", d)

	if err := a.config.Cues.Fire(ev); err != nil {
		log.Warn("cue playback failed", "err", err)
	}

	if a.config.Store != nil {
		if err := a.config.Store.Events().Create(&store.Event{Kind: ev.String(), Distance: d}); err != nil {
			log.Warn("failed to record cue", "err", err)
		}
	}

	a.mu.Lock()
	a.status.LastCue = ev.String()
	a.mu.Unlock()

	for _, fn := range a.cueFuncs {
		fn(ev, d)
	}
}

// finish publishes status, presents the surface and reports whether the
// loop should continue.
func (a *App) finish(st cue.State, poses int, band *cue.Band) bool {
	a.mu.Lock()
	a.status.Signal = st.Signal
	a.status.HasSignal = st.HasSignal
	a.status.Latch = st.Latch.String()
	a.status.Poses = poses
	a.status.Band = ""
	if band != nil {
		a.status.Band = band.String()
	}
	a.status.Ticks++
	a.status.Dropped = a.frames.Dropped()
	status := a.status
	a.mu.Unlock()

	for _, fn := range a.tickFuncs {
		fn(status)
	}

	if a.config.Stream {
		if enc, ok := a.surface.(interface{ JPEG() ([]byte, error) }); ok {
			if buf, err := enc.JPEG(); err == nil {
				a.output.Publish(buf)
			} else {
				log.Warn("failed to encode frame", "err", err)
			}
		}
	}

	keep := true
	for _, p := range a.presenters {
		if !p.Present(a.surface) {
			keep = false
		}
	}
	return keep
}
