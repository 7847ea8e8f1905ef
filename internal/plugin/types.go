// Package plugin runs external cue hooks: executables that are handed a
// JSON description of every near or far cue.
package plugin

// Manifest describes a hook's metadata and the cues it wants.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"` // "near", "far"; empty means both
}

// Request is written to the hook's stdin.
type Request struct {
	Event     string  `json:"event"`
	Signal    float64 `json:"signal"`
	Near      float64 `json:"near"`
	Far       float64 `json:"far"`
	Timestamp int64   `json:"timestamp"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Plugin represents a discovered hook with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the hook subscribed to event.
func (p *Plugin) Handles(event string) bool {
	if len(p.Manifest.Events) == 0 {
		return true
	}
	for _, e := range p.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}
