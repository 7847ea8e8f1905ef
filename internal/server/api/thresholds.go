package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/posecue/internal/log"
	"github.com/ayusman/posecue/internal/store"
)

// ThresholdsHandler reads and replaces the band thresholds.
type ThresholdsHandler struct {
	ctrl  Controller
	store *store.Store // optional, persists changes
}

// NewThresholdsHandler creates a new ThresholdsHandler.
func NewThresholdsHandler(ctrl Controller, s *store.Store) *ThresholdsHandler {
	return &ThresholdsHandler{ctrl: ctrl, store: s}
}

type thresholdsRequest struct {
	Near *float64 `json:"near"`
	Far  *float64 `json:"far"`
}

// ServeHTTP handles GET and PUT /api/thresholds.
func (h *ThresholdsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.ctrl.Thresholds())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// update applies a partial threshold change. Omitted fields keep their
// current value.
func (h *ThresholdsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req thresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	t := h.ctrl.Thresholds()
	if req.Near != nil {
		t.Near = *req.Near
	}
	if req.Far != nil {
		t.Far = *req.Far
	}

	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.store != nil {
		if err := h.store.Settings().SaveThresholds(t); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save thresholds")
			return
		}
	}

	if err := h.ctrl.SetThresholds(t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info("thresholds updated", "near", t.Near, "far", t.Far)
	writeJSON(w, http.StatusOK, t)
}
