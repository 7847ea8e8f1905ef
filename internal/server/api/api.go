// Package api provides HTTP API handlers for the posecue control surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/posecue/internal/app"
	"github.com/ayusman/posecue/internal/cue"
)

// Controller is the part of the running pipeline the API can read and drive.
type Controller interface {
	Status() app.Status
	IsEnabled() bool
	SetEnabled(enabled bool)
	Thresholds() cue.Thresholds
	SetThresholds(t cue.Thresholds) error
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
