package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/posecue/internal/store"
)

// DefaultEventLimit caps GET /api/events when no limit is given.
const DefaultEventLimit = 50

// EventsHandler serves the recorded cue history.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

type eventResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Distance  float64 `json:"distance"`
	CreatedAt string  `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
	Counts map[string]int  `json:"counts"`
}

// ServeHTTP routes /api/events and /api/events/{id}.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/events"), "/")
	if id != "" {
		h.get(w, id)
		return
	}
	h.list(w, r)
}

// list handles GET /api/events?limit=N.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
		Counts: make(map[string]int, 2),
	}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}
	for _, kind := range []string{"near", "far"} {
		n, err := h.store.Events().Count(kind)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to count events")
			return
		}
		response.Counts[kind] = n
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/events/{id}.
func (h *EventsHandler) get(w http.ResponseWriter, id string) {
	e, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(e))
}

func toEventResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Kind:      e.Kind,
		Distance:  e.Distance,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
