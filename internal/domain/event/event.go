// Package event defines the closed set of trackable review events.
//
// The four variants form a sealed sum type: every consumption site
// switches exhaustively over them, so a new variant cannot be added
// without the compiler (or an explicit unknown-variant error) pointing
// at every place that must learn about it.
package event

import (
	"time"

	"github.com/okian/ninebox/internal/domain/model"
)

// Kind identifies an event variant. Kinds serialize as their canonical
// string label.
type Kind string

const (
	// KindGridMove records a placement change on the primary grid.
	KindGridMove Kind = "grid_move"
	// KindDonutMove records a placement change in donut mode.
	KindDonutMove Kind = "donut_move"
	// KindFlagAdd records a flag being added to an employee.
	KindFlagAdd Kind = "flag_add"
	// KindFlagRemove records a flag being removed from an employee.
	KindFlagRemove Kind = "flag_remove"
)

// Meta carries the fields shared by all event variants.
type Meta struct {
	// ID is the unique event id.
	ID string
	// EmployeeID is the subject of the event.
	EmployeeID int
	// EmployeeName is denormalized for display without a join.
	EmployeeName string
	// UpdatedAt is the creation or last-update timestamp.
	UpdatedAt time.Time
	// Notes is optional free text attached by the reviewer.
	Notes string
}

// Event is the sealed interface over the four trackable variants.
type Event interface {
	// Kind identifies the variant.
	Kind() Kind
	// Header exposes the shared fields for inspection and mutation.
	Header() *Meta
	// NetZero reports whether the event nets out to no change relative
	// to the immutable baseline snapshot. The comparison is always
	// against the baseline, never against a previous event's state.
	NetZero(baseline model.Employee) bool

	isEvent()
}

// Clone returns an independent copy of the event. Variants hold only
// value fields, so copying the struct copies everything.
func Clone(ev Event) Event {
	switch e := ev.(type) {
	case *GridMove:
		c := *e
		return &c
	case *DonutMove:
		c := *e
		return &c
	case *FlagAdd:
		c := *e
		return &c
	case *FlagRemove:
		c := *e
		return &c
	default:
		panic("event: unknown variant")
	}
}

// CloneAll returns a deep copy of an event log.
func CloneAll(log []Event) []Event {
	if log == nil {
		return nil
	}
	out := make([]Event, len(log))
	for i, ev := range log {
		out[i] = Clone(ev)
	}
	return out
}

// GridMove records a primary-grid placement change. Old fields reflect
// the state immediately before this call, not necessarily the baseline.
type GridMove struct {
	Meta

	OldPerformance model.Rating
	OldPotential   model.Rating
	OldPosition    int
	NewPerformance model.Rating
	NewPotential   model.Rating
	NewPosition    int
}

// NewGridMove builds a grid move from the current snapshot and the
// requested placement.
func NewGridMove(id string, at time.Time, current model.Employee, performance, potential model.Rating) *GridMove {
	return &GridMove{
		Meta: Meta{
			ID:           id,
			EmployeeID:   current.ID,
			EmployeeName: current.Name,
			UpdatedAt:    at,
		},
		OldPerformance: current.Performance,
		OldPotential:   current.Potential,
		OldPosition:    current.Position,
		NewPerformance: performance,
		NewPotential:   potential,
		NewPosition:    model.Position(performance, potential),
	}
}

// Kind implements Event.
func (e *GridMove) Kind() Kind { return KindGridMove }

// Header implements Event.
func (e *GridMove) Header() *Meta { return &e.Meta }

// NetZero reports whether the new placement equals the baseline placement.
func (e *GridMove) NetZero(baseline model.Employee) bool {
	return e.NewPerformance == baseline.Performance && e.NewPotential == baseline.Potential
}

func (e *GridMove) isEvent() {}

// DonutMove records a donut-mode placement change. Old fields reflect
// the shadow state immediately before this call.
type DonutMove struct {
	Meta

	OldPerformance model.Rating
	OldPotential   model.Rating
	OldPosition    int
	NewPerformance model.Rating
	NewPotential   model.Rating
	NewPosition    int
}

// NewDonutMove builds a donut move from the current shadow state and the
// requested placement.
func NewDonutMove(id string, at time.Time, current model.Employee, performance, potential model.Rating) *DonutMove {
	return &DonutMove{
		Meta: Meta{
			ID:           id,
			EmployeeID:   current.ID,
			EmployeeName: current.Name,
			UpdatedAt:    at,
		},
		OldPerformance: current.Donut.Performance,
		OldPotential:   current.Donut.Potential,
		OldPosition:    current.Donut.Position,
		NewPerformance: performance,
		NewPotential:   potential,
		NewPosition:    model.Position(performance, potential),
	}
}

// Kind implements Event.
func (e *DonutMove) Kind() Kind { return KindDonutMove }

// Header implements Event.
func (e *DonutMove) Header() *Meta { return &e.Meta }

// NetZero reports whether the move returns to the grid center. Donut
// mode treats the center cell as its universal rest state, independent
// of the subject's baseline placement.
func (e *DonutMove) NetZero(model.Employee) bool {
	return e.NewPosition == model.CenterPosition
}

func (e *DonutMove) isEvent() {}

// FlagAdd records a flag being added to an employee.
type FlagAdd struct {
	Meta

	Flag model.Flag
}

// NewFlagAdd builds a flag-add event for the current snapshot.
func NewFlagAdd(id string, at time.Time, current model.Employee, flag model.Flag) *FlagAdd {
	return &FlagAdd{
		Meta: Meta{
			ID:           id,
			EmployeeID:   current.ID,
			EmployeeName: current.Name,
			UpdatedAt:    at,
		},
		Flag: flag,
	}
}

// Kind implements Event.
func (e *FlagAdd) Kind() Kind { return KindFlagAdd }

// Header implements Event.
func (e *FlagAdd) Header() *Meta { return &e.Meta }

// NetZero reports whether the flag was already present in the baseline.
// Adding a flag the employee always had asserts nothing new.
func (e *FlagAdd) NetZero(baseline model.Employee) bool {
	return baseline.HasFlag(e.Flag)
}

func (e *FlagAdd) isEvent() {}

// FlagRemove records a flag being removed from an employee.
type FlagRemove struct {
	Meta

	Flag model.Flag
}

// NewFlagRemove builds a flag-remove event for the current snapshot.
func NewFlagRemove(id string, at time.Time, current model.Employee, flag model.Flag) *FlagRemove {
	return &FlagRemove{
		Meta: Meta{
			ID:           id,
			EmployeeID:   current.ID,
			EmployeeName: current.Name,
			UpdatedAt:    at,
		},
		Flag: flag,
	}
}

// Kind implements Event.
func (e *FlagRemove) Kind() Kind { return KindFlagRemove }

// Header implements Event.
func (e *FlagRemove) Header() *Meta { return &e.Meta }

// NetZero reports whether the flag was absent from the baseline.
// Removing a flag the employee never had asserts nothing new.
func (e *FlagRemove) NetZero(baseline model.Employee) bool {
	return !baseline.HasFlag(e.Flag)
}

func (e *FlagRemove) isEvent() {}
