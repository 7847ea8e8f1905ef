package plugin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/posecue/internal/cue"
)

func TestDispatcher_RunsSubscribedHooks(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	calls := filepath.Join(dir, "calls.log")

	writeManifest(t, dir, "far-hook", Manifest{Name: "far-hook", Executable: "run.sh", Events: []string{"far"}})
	writeScript(t, filepath.Join(dir, "far-hook"), "run.sh", "cat >> "+calls+"\necho >> "+calls+"\n")

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatal(err)
	}

	d := NewDispatcher(m, NewExecutor(5*time.Second))
	th := cue.DefaultThresholds()
	d.Dispatch(cue.EventFar, 130, th)
	d.Dispatch(cue.EventNear, 50, th)
	d.Dispatch(cue.EventNone, 90, th)
	d.Close()

	ran, failed, dropped := d.Stats()
	if ran != 1 || failed != 0 || dropped != 0 {
		t.Errorf("stats = %d/%d/%d, want 1/0/0", ran, failed, dropped)
	}

	data, err := os.ReadFile(calls)
	if err != nil {
		t.Fatalf("hook never ran: %v", err)
	}
	if strings.Count(string(data), `"event":"far"`) != 1 || strings.Contains(string(data), `"event":"near"`) {
		t.Errorf("hook input = %s", data)
	}
}

func TestDispatcher_NoHooks(t *testing.T) {
	m := NewManager(t.TempDir())
	m.Discover()

	d := NewDispatcher(m, NewExecutor(time.Second))
	d.Dispatch(cue.EventFar, 130, cue.DefaultThresholds())
	d.Close()

	if ran, failed, _ := d.Stats(); ran != 0 || failed != 0 {
		t.Errorf("stats = %d/%d, want nothing run", ran, failed)
	}
}

func TestDispatcher_DispatchAfterClose(t *testing.T) {
	m := NewManager(t.TempDir())
	m.Discover()

	d := NewDispatcher(m, NewExecutor(time.Second))
	d.Close()

	// Neither call may panic
	d.Dispatch(cue.EventNear, 40, cue.DefaultThresholds())
	d.Close()

	if ran, failed, dropped := d.Stats(); ran+failed+dropped != 0 {
		t.Errorf("stats = %d/%d/%d, want nothing after Close", ran, failed, dropped)
	}
}
