// Package main provides a cue hook that raises a desktop notification for
// every near or far cue.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the cue handed over by the hook executor.
type Request struct {
	Event     string  `json:"event"`
	Signal    float64 `json:"signal"`
	Near      float64 `json:"near"`
	Far       float64 `json:"far"`
	Timestamp int64   `json:"timestamp"`
}

// Response represents the output to the hook executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// messages maps cue events to notification text.
var messages = map[string]string{
	"near": "Too close to the screen",
	"far":  "Leaning away",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	msg, ok := messages[req.Event]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown event: %s", req.Event))
		return
	}

	body := fmt.Sprintf("%s (%.0f px)", msg, req.Signal)
	if err := notify("posecue", body); err != nil {
		writeErrorResponse(fmt.Sprintf("notify failed: %v", err))
		return
	}

	writeSuccessResponse()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// notify shows a desktop notification using the platform's own tool.
func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", title, body)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
