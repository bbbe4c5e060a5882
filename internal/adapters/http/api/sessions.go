package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/session"
)

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps          Dependencies
	maxRosterSize int
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies, maxRosterSize int) *SessionsHandler {
	return &SessionsHandler{deps: deps, maxRosterSize: maxRosterSize}
}

// createSessionRequest mirrors the import collaborator's output: an
// ordered sequence of employee snapshots plus provenance.
type createSessionRequest struct {
	Subject   string                  `json:"subject"`
	Source    sourcePayload           `json:"source"`
	Employees []createEmployeePayload `json:"employees"`
}

type sourcePayload struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Sheet    string `json:"sheet"`
}

type createEmployeePayload struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Performance string   `json:"performance"`
	Potential   string   `json:"potential"`
	Flags       []string `json:"flags"`
}

func (r createSessionRequest) validate(maxRosterSize int) error {
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("%w: missing subject", ErrBadRequest)
	}
	if len(r.Employees) == 0 {
		return fmt.Errorf("%w: empty employee roster", ErrBadRequest)
	}
	if maxRosterSize > 0 && len(r.Employees) > maxRosterSize {
		return fmt.Errorf("%w: roster exceeds %d employees", ErrBadRequest, maxRosterSize)
	}
	seen := make(map[int]struct{}, len(r.Employees))
	for _, e := range r.Employees {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: duplicate employee id %d", ErrBadRequest, e.ID)
		}
		seen[e.ID] = struct{}{}
		if !model.Rating(e.Performance).IsValid() {
			return fmt.Errorf("%w: invalid performance %q for employee %d", ErrBadRequest, e.Performance, e.ID)
		}
		if !model.Rating(e.Potential).IsValid() {
			return fmt.Errorf("%w: invalid potential %q for employee %d", ErrBadRequest, e.Potential, e.ID)
		}
		for _, f := range e.Flags {
			if !model.Flag(f).IsValid() {
				return fmt.Errorf("%w: unknown flag %q for employee %d", ErrBadRequest, f, e.ID)
			}
		}
	}
	return nil
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Subject   string `json:"subject"`
	Employees int    `json:"employees"`
}

// HandleCreateSession handles POST /sessions requests.
func (h *SessionsHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := req.validate(h.maxRosterSize); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	employees := make([]model.Employee, len(req.Employees))
	for i, e := range req.Employees {
		flags := make([]model.Flag, len(e.Flags))
		for j, f := range e.Flags {
			flags[j] = model.Flag(f)
		}
		employees[i] = model.Employee{
			ID:          e.ID,
			Name:        e.Name,
			Performance: model.Rating(e.Performance),
			Potential:   model.Rating(e.Potential),
			Flags:       flags,
		}
	}

	sessionID, err := h.deps.CreateSession(r.Context(), req.Subject, employees, session.Provenance{
		Filename: req.Source.Filename,
		Path:     req.Source.Path,
		Sheet:    req.Source.Sheet,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: sessionID,
		Subject:   req.Subject,
		Employees: len(employees),
	})
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Subject   string            `json:"subject"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
	Source    sourcePayload     `json:"source"`
	Current   []employeePayload `json:"current"`
	Events    []eventPayload    `json:"events"`
	DonutLog  []eventPayload    `json:"donut_events"`
	DonutMode bool              `json:"donut_mode"`
}

type employeePayload struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Performance  string       `json:"performance"`
	Potential    string       `json:"potential"`
	Position     int          `json:"position"`
	Flags        []string     `json:"flags"`
	Modified     bool         `json:"modified"`
	LastModified string       `json:"last_modified"`
	Donut        donutPayload `json:"donut"`
}

type donutPayload struct {
	Performance  string `json:"performance"`
	Potential    string `json:"potential"`
	Position     int    `json:"position"`
	Notes        string `json:"notes"`
	Modified     bool   `json:"modified"`
	LastModified string `json:"last_modified"`
}

func toEmployeePayload(e model.Employee) employeePayload {
	flags := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		flags[i] = string(f)
	}
	return employeePayload{
		ID:           e.ID,
		Name:         e.Name,
		Performance:  string(e.Performance),
		Potential:    string(e.Potential),
		Position:     e.Position,
		Flags:        flags,
		Modified:     e.Modified,
		LastModified: formatTime(e.LastModified),
		Donut: donutPayload{
			Performance:  string(e.Donut.Performance),
			Potential:    string(e.Donut.Potential),
			Position:     e.Donut.Position,
			Notes:        e.Donut.Notes,
			Modified:     e.Donut.Modified,
			LastModified: formatTime(e.Donut.LastModified),
		},
	}
}

// HandleGetSession handles GET /sessions/{subject} requests.
func (h *SessionsHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.deps.GetSession(r.Context(), r.PathValue("subject"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	current := make([]employeePayload, len(state.Current))
	for i, e := range state.Current {
		current[i] = toEmployeePayload(e)
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: state.ID,
		Subject:   state.SubjectID,
		CreatedAt: formatTime(state.CreatedAt),
		UpdatedAt: formatTime(state.UpdatedAt),
		Source: sourcePayload{
			Filename: state.Source.Filename,
			Path:     state.Source.Path,
			Sheet:    state.Source.Sheet,
		},
		Current:   current,
		Events:    toEventPayloads(state.Events),
		DonutLog:  toEventPayloads(state.DonutEvents),
		DonutMode: state.DonutMode,
	})
}

// HandleDeleteSession handles DELETE /sessions/{subject} requests.
func (h *SessionsHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("subject")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
