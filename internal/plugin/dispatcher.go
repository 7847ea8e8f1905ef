package plugin

import (
	"context"
	"sync"
	"time"

	"github.com/ayusman/posecue/internal/cue"
	"github.com/ayusman/posecue/internal/log"
)

// QueueSize is how many cues may wait for the hook worker before new ones
// are dropped.
const QueueSize = 8

// Dispatcher runs hooks for cues on a background worker so the render loop
// never waits on an external process.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	jobs     chan Request

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	closed  bool
	ran     int
	failed  int
	dropped int
}

// NewDispatcher starts a dispatcher over the discovered hooks.
func NewDispatcher(m *Manager, e *Executor) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		manager:  m,
		executor: e,
		jobs:     make(chan Request, QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Dispatch queues a cue for every hook subscribed to it. It never blocks.
// Cues dispatched after Close are ignored.
func (d *Dispatcher) Dispatch(e cue.Event, signal float64, t cue.Thresholds) {
	if e == cue.EventNone {
		return
	}
	req := Request{
		Event:     e.String(),
		Signal:    signal,
		Near:      t.Near,
		Far:       t.Far,
		Timestamp: time.Now().UnixMilli(),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	select {
	case d.jobs <- req:
	default:
		d.dropped++
		log.Warn("hook queue full, dropping cue", "event", req.Event)
	}
}

// Close stops the worker after the queued cues have run. It is idempotent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}

// Stats returns how many hook runs succeeded, failed and were dropped.
func (d *Dispatcher) Stats() (ran, failed, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ran, d.failed, d.dropped
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for req := range d.jobs {
		for _, p := range d.manager.ForEvent(req.Event) {
			req := req
			resp, err := d.executor.Execute(d.ctx, p, &req)

			d.mu.Lock()
			switch {
			case err != nil:
				d.failed++
				log.Warn("hook failed", "hook", p.Manifest.Name, "err", err)
			case !resp.Success:
				d.failed++
				log.Warn("hook reported failure", "hook", p.Manifest.Name, "error", resp.Error)
			default:
				d.ran++
				log.Debug("hook ran", "hook", p.Manifest.Name, "event", req.Event)
			}
			d.mu.Unlock()
		}
	}
}
