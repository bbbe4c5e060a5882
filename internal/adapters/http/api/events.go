package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// EventsHandler handles event log requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type eventsResponse struct {
	Events []eventPayload `json:"events"`
}

// HandleEmployeeEvents handles GET /sessions/{subject}/employees/{id}/events.
// The donut query parameter selects the what-if stream.
func (h *EventsHandler) HandleEmployeeEvents(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid employee id", ErrBadRequest))
		return
	}
	donut := r.URL.Query().Get("donut") == "true"

	events, err := h.deps.GetEmployeeEvents(r.Context(), r.PathValue("subject"), employeeID, donut)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: toEventPayloads(events)})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type notesResponse struct {
	Found bool          `json:"found"`
	Event *eventPayload `json:"event"`
}

// HandleUpdateNotes handles PATCH /sessions/{subject}/events/{id}.
// A miss is reported in the body, not as a 404, since callers probe
// for an entry's existence.
func (h *EventsHandler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	ev, found, err := h.deps.UpdateEventNotes(r.Context(), r.PathValue("subject"), r.PathValue("id"), req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := notesResponse{Found: found}
	if found {
		payload := toEventPayload(ev)
		resp.Event = &payload
	}
	writeJSON(w, http.StatusOK, resp)
}

type removeResponse struct {
	Removed bool `json:"removed"`
}

// HandleRemoveEvent handles DELETE /sessions/{subject}/events/{id}.
func (h *EventsHandler) HandleRemoveEvent(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.RemoveEvent(r.Context(), r.PathValue("subject"), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, removeResponse{Removed: removed})
}
