// Package session holds the review session aggregate.
package session

import (
	"time"

	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
)

// Provenance records where the session's roster was imported from. The
// engine treats it as opaque.
type Provenance struct {
	Filename string
	Path     string
	Sheet    string
}

// State is the aggregate root of one review session. Baseline and
// Current are index-aligned: current[i].ID == baseline[i].ID for all i,
// and neither sequence is reordered or resized after creation. Baseline
// is immutable ground truth for cancellation comparisons; Current is
// the live projection and is always reconstructible from baseline plus
// the surviving events.
type State struct {
	ID        string
	SubjectID string
	CreatedAt time.Time
	UpdatedAt time.Time
	Source    Provenance

	Baseline []model.Employee
	Current  []model.Employee

	// Events is the primary stream: grid moves and flag changes.
	Events []event.Event
	// DonutEvents is the independent what-if stream.
	DonutEvents []event.Event

	DonutMode bool
}

// New creates a session, deep-copying the roster into both the baseline
// and the current sequence so the two never alias.
func New(id, subjectID string, at time.Time, employees []model.Employee, source Provenance) *State {
	return &State{
		ID:        id,
		SubjectID: subjectID,
		CreatedAt: at,
		UpdatedAt: at,
		Source:    source,
		Baseline:  model.CloneAll(employees),
		Current:   model.CloneAll(employees),
	}
}

// Snapshot returns a deep copy of the aggregate. The copy shares no
// memory with the live state, so callers outside the session manager's
// lock can read it while mutations continue on the original.
func (s *State) Snapshot() *State {
	out := *s
	out.Baseline = model.CloneAll(s.Baseline)
	out.Current = model.CloneAll(s.Current)
	out.Events = event.CloneAll(s.Events)
	out.DonutEvents = event.CloneAll(s.DonutEvents)
	return &out
}

// FindBaseline returns a copy of the baseline snapshot for the employee.
func (s *State) FindBaseline(employeeID int) (model.Employee, bool) {
	for i := range s.Baseline {
		if s.Baseline[i].ID == employeeID {
			return s.Baseline[i].Clone(), true
		}
	}
	return model.Employee{}, false
}

// FindCurrent returns the live current snapshot for the employee. All
// mutation flows through the session manager so that every change is
// funnelled through event tracking and persistence.
func (s *State) FindCurrent(employeeID int) (*model.Employee, bool) {
	for i := range s.Current {
		if s.Current[i].ID == employeeID {
			return &s.Current[i], true
		}
	}
	return nil, false
}
