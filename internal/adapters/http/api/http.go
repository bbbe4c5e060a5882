// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/ninebox/internal/app"
	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/session"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the session manager.
type Dependencies interface {
	CreateSession(ctx context.Context, subjectID string, employees []model.Employee, source session.Provenance) (string, error)
	GetSession(ctx context.Context, subjectID string) (*session.State, error)
	DeleteSession(ctx context.Context, subjectID string) error

	MoveEmployee(ctx context.Context, subjectID string, employeeID int, performance, potential model.Rating) (event.Event, error)
	MoveEmployeeDonut(ctx context.Context, subjectID string, employeeID int, performance, potential model.Rating) (event.Event, error)
	UpdateEmployeeFlags(ctx context.Context, subjectID string, employeeID int, flags []model.Flag) error
	ToggleDonutMode(ctx context.Context, subjectID string, enabled bool) error

	GetEmployeeEvents(ctx context.Context, subjectID string, employeeID int, donut bool) ([]event.Event, error)
	UpdateEventNotes(ctx context.Context, subjectID, eventID, notes string) (event.Event, bool, error)
	RemoveEvent(ctx context.Context, subjectID, eventID string) (bool, error)
}

// Server wires HTTP routes for the review API.
type Server struct {
	maxRosterSize int

	sessionsHandler *SessionsHandler
	movesHandler    *MovesHandler
	flagsHandler    *FlagsHandler
	eventsHandler   *EventsHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxRosterSize caps the employee roster accepted on session creation.
func WithMaxRosterSize(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxRosterSize = n
		}
	}
}

const defaultMaxRosterSize = 5000

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{maxRosterSize: defaultMaxRosterSize}
	for _, opt := range opts {
		opt(s)
	}
	s.sessionsHandler = NewSessionsHandler(deps, s.maxRosterSize)
	s.movesHandler = NewMovesHandler(deps)
	s.flagsHandler = NewFlagsHandler(deps)
	s.eventsHandler = NewEventsHandler(deps)
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreateSession, "sessions"))
	mux.HandleFunc("GET /sessions/{subject}", MetricsMiddleware(s.sessionsHandler.HandleGetSession, "sessions"))
	mux.HandleFunc("DELETE /sessions/{subject}", MetricsMiddleware(s.sessionsHandler.HandleDeleteSession, "sessions"))

	mux.HandleFunc("POST /sessions/{subject}/move", MetricsMiddleware(s.movesHandler.HandleMove, "move"))
	mux.HandleFunc("POST /sessions/{subject}/donut-move", MetricsMiddleware(s.movesHandler.HandleDonutMove, "donut_move"))
	mux.HandleFunc("PUT /sessions/{subject}/donut-mode", MetricsMiddleware(s.flagsHandler.HandleDonutMode, "donut_mode"))
	mux.HandleFunc("PUT /sessions/{subject}/employees/{id}/flags", MetricsMiddleware(s.flagsHandler.HandleUpdateFlags, "flags"))

	mux.HandleFunc("GET /sessions/{subject}/employees/{id}/events", MetricsMiddleware(s.eventsHandler.HandleEmployeeEvents, "events"))
	mux.HandleFunc("PATCH /sessions/{subject}/events/{id}", MetricsMiddleware(s.eventsHandler.HandleUpdateNotes, "events"))
	mux.HandleFunc("DELETE /sessions/{subject}/events/{id}", MetricsMiddleware(s.eventsHandler.HandleRemoveEvent, "events"))
}

// eventPayload is the wire view of an event, tagged by type.
type eventPayload struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	EmployeeID     int    `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	UpdatedAt      string `json:"updated_at"`
	Notes          string `json:"notes"`
	OldPerformance string `json:"old_performance,omitempty"`
	OldPotential   string `json:"old_potential,omitempty"`
	OldPosition    int    `json:"old_position,omitempty"`
	NewPerformance string `json:"new_performance,omitempty"`
	NewPotential   string `json:"new_potential,omitempty"`
	NewPosition    int    `json:"new_position,omitempty"`
	Flag           string `json:"flag,omitempty"`
}

// toEventPayload projects an event variant onto the wire view. The
// switch is exhaustive over the sealed variant set.
func toEventPayload(ev event.Event) eventPayload {
	meta := ev.Header()
	p := eventPayload{
		Type:         string(ev.Kind()),
		ID:           meta.ID,
		EmployeeID:   meta.EmployeeID,
		EmployeeName: meta.EmployeeName,
		UpdatedAt:    formatTime(meta.UpdatedAt),
		Notes:        meta.Notes,
	}
	switch e := ev.(type) {
	case *event.GridMove:
		p.OldPerformance = string(e.OldPerformance)
		p.OldPotential = string(e.OldPotential)
		p.OldPosition = e.OldPosition
		p.NewPerformance = string(e.NewPerformance)
		p.NewPotential = string(e.NewPotential)
		p.NewPosition = e.NewPosition
	case *event.DonutMove:
		p.OldPerformance = string(e.OldPerformance)
		p.OldPotential = string(e.OldPotential)
		p.OldPosition = e.OldPosition
		p.NewPerformance = string(e.NewPerformance)
		p.NewPotential = string(e.NewPotential)
		p.NewPosition = e.NewPosition
	case *event.FlagAdd:
		p.Flag = string(e.Flag)
	case *event.FlagRemove:
		p.Flag = string(e.Flag)
	}
	return p
}

func toEventPayloads(events []event.Event) []eventPayload {
	out := make([]eventPayload, len(events))
	for i, ev := range events {
		out[i] = toEventPayload(ev)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps session manager errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNoSession), errors.Is(err, app.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
