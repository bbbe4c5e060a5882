package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
)

// MovesHandler handles grid and donut placement requests.
type MovesHandler struct {
	deps Dependencies
}

// NewMovesHandler creates a new moves handler.
func NewMovesHandler(deps Dependencies) *MovesHandler {
	return &MovesHandler{deps: deps}
}

type moveRequest struct {
	EmployeeID  int    `json:"employee_id"`
	Performance string `json:"performance"`
	Potential   string `json:"potential"`
}

func (r moveRequest) validate() error {
	if !model.Rating(r.Performance).IsValid() {
		return fmt.Errorf("%w: invalid performance %q", ErrBadRequest, r.Performance)
	}
	if !model.Rating(r.Potential).IsValid() {
		return fmt.Errorf("%w: invalid potential %q", ErrBadRequest, r.Potential)
	}
	return nil
}

type moveResponse struct {
	Event eventPayload `json:"event"`
}

// HandleMove handles POST /sessions/{subject}/move requests.
func (h *MovesHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.MoveEmployee)
}

// HandleDonutMove handles POST /sessions/{subject}/donut-move requests.
func (h *MovesHandler) HandleDonutMove(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.MoveEmployeeDonut)
}

func (h *MovesHandler) handle(w http.ResponseWriter, r *http.Request, move moveFunc) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	ev, err := move(r.Context(), r.PathValue("subject"), req.EmployeeID,
		model.Rating(req.Performance), model.Rating(req.Potential))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Event: toEventPayload(ev)})
}

type moveFunc func(ctx context.Context, subjectID string, employeeID int, performance, potential model.Rating) (event.Event, error)
