package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/store"
)

// StatusHandler reports pipeline status and toggles tracking.
type StatusHandler struct {
	ctrl  Controller
	store *store.Store // optional, persists the enabled flag
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(ctrl Controller, s *store.Store) *StatusHandler {
	return &StatusHandler{ctrl: ctrl, store: s}
}

type enabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET /api/status and PUT /api/status {"enabled": bool}.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	case http.MethodPut:
		var req enabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Body must be {\"enabled\": true|false}")
			return
		}

		h.ctrl.SetEnabled(*req.Enabled)
		if h.store != nil {
			if err := h.store.Settings().SaveEnabled(*req.Enabled); err != nil {
				log.Warn("failed to persist enabled flag", "err", err)
			}
		}
		log.Info("tracking toggled", "enabled", *req.Enabled)
		writeJSON(w, http.StatusOK, h.ctrl.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
