// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Rating is an enumerated performance or potential level on the 9-box grid.
type Rating string

// Canonical rating labels.
const (
	RatingLow    Rating = "low"
	RatingMedium Rating = "medium"
	RatingHigh   Rating = "high"
)

// Index returns the 1-based grid index of the rating, or 0 for an
// unknown value.
func (r Rating) Index() int {
	switch r {
	case RatingLow:
		return 1
	case RatingMedium:
		return 2
	case RatingHigh:
		return 3
	default:
		return 0
	}
}

// IsValid reports whether the rating is one of the canonical levels.
func (r Rating) IsValid() bool {
	return r.Index() != 0
}

// Position derives the 1..9 grid position from a performance and a
// potential rating. Position is always a pure function of the pair;
// nothing else may assign it.
func Position(performance, potential Rating) int {
	return (potential.Index()-1)*3 + performance.Index()
}

// CenterPosition is the grid center cell, the universal rest state of
// donut-mode exploration.
const CenterPosition = 5

// DonutState is the independent what-if shadow of an employee. The zero
// value means the employee has not been moved in donut mode.
type DonutState struct {
	Performance  Rating
	Potential    Rating
	Position     int
	Notes        string
	Modified     bool
	LastModified time.Time
}

// IsZero reports whether the shadow is at its empty default.
func (d DonutState) IsZero() bool {
	return d == DonutState{}
}

// Employee is a snapshot of one employee's grid placement, flags and
// donut-mode shadow state.
type Employee struct {
	ID           int
	Name         string
	Performance  Rating
	Potential    Rating
	Position     int
	Flags        []Flag
	Modified     bool
	LastModified time.Time
	Donut        DonutState
}

// SetPlacement assigns performance and potential together with the
// derived grid position. Placement fields are never written separately.
func (e *Employee) SetPlacement(performance, potential Rating) {
	e.Performance = performance
	e.Potential = potential
	e.Position = Position(performance, potential)
}

// SetDonutPlacement assigns the donut shadow placement and derived
// position together.
func (e *Employee) SetDonutPlacement(performance, potential Rating) {
	e.Donut.Performance = performance
	e.Donut.Potential = potential
	e.Donut.Position = Position(performance, potential)
}

// HasFlag reports whether the employee carries the given flag.
func (e *Employee) HasFlag(f Flag) bool {
	for _, have := range e.Flags {
		if have == f {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the employee.
func (e Employee) Clone() Employee {
	out := e
	out.Flags = append([]Flag(nil), e.Flags...)
	return out
}

// CloneAll returns a deep copy of an employee sequence. Order is
// preserved; the result never aliases the input.
func CloneAll(employees []Employee) []Employee {
	out := make([]Employee, len(employees))
	for i, e := range employees {
		out[i] = e.Clone()
	}
	return out
}

// NormalizeFlags returns a sorted copy of flags with duplicates removed.
func NormalizeFlags(flags []Flag) []Flag {
	if len(flags) == 0 {
		return nil
	}
	seen := make(map[Flag]struct{}, len(flags))
	out := make([]Flag, 0, len(flags))
	for _, f := range flags {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DiffFlags computes the flags to add and to remove to turn current into
// requested. Both inputs are treated as sets.
func DiffFlags(current, requested []Flag) (toAdd, toRemove []Flag) {
	cur := make(map[Flag]struct{}, len(current))
	for _, f := range current {
		cur[f] = struct{}{}
	}
	req := make(map[Flag]struct{}, len(requested))
	for _, f := range requested {
		req[f] = struct{}{}
	}
	for _, f := range NormalizeFlags(requested) {
		if _, ok := cur[f]; !ok {
			toAdd = append(toAdd, f)
		}
	}
	for _, f := range NormalizeFlags(current) {
		if _, ok := req[f]; !ok {
			toRemove = append(toRemove, f)
		}
	}
	return toAdd, toRemove
}
