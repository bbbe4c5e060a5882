// Package tracker reconciles trackable events against a session baseline.
//
// Every mutation funnels through Track, which applies the two-step
// contract: supersede any live log entry with the same key, then test
// the new event for net-zero against the immutable baseline snapshot.
// Because supersession always fully replaces rather than merges, a log
// entry's old fields only ever describe the state immediately before
// the latest call; cancellation correctness therefore depends entirely
// on comparing the event's new value with the baseline.
package tracker

import (
	"sort"
	"time"

	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
)

// key is the supersession identity of an event: one live move per
// employee per stream, one live flag event per employee per flag value
// regardless of direction.
type key struct {
	employeeID int
	flag       model.Flag
}

// supersessionKey computes the key for an event. The switch is
// exhaustive over the sealed variant set.
func supersessionKey(ev event.Event) key {
	switch e := ev.(type) {
	case *event.GridMove:
		return key{employeeID: e.EmployeeID}
	case *event.DonutMove:
		return key{employeeID: e.EmployeeID}
	case *event.FlagAdd:
		return key{employeeID: e.EmployeeID, flag: e.Flag}
	case *event.FlagRemove:
		return key{employeeID: e.EmployeeID, flag: e.Flag}
	default:
		panic("tracker: unknown event variant")
	}
}

// Result describes the outcome of a Track call.
type Result struct {
	// Log is the reconciled event log.
	Log []event.Event
	// Kept reports whether the new event survived the net-zero test.
	Kept bool
	// Superseded is the number of prior entries removed. The single-entry
	// invariant makes this at most one, but removal is by predicate.
	Superseded int
}

// Track reconciles a freshly built event into the log. Any existing
// entry sharing the event's supersession key is removed, then the event
// is appended only if it is not net-zero relative to the baseline.
func Track(log []event.Event, ev event.Event, baseline model.Employee) Result {
	k := supersessionKey(ev)

	out := log[:0:0]
	superseded := 0
	for _, existing := range log {
		if supersessionKey(existing) == k {
			superseded++
			continue
		}
		out = append(out, existing)
	}

	kept := !ev.NetZero(baseline)
	if kept {
		out = append(out, ev)
	}

	return Result{Log: out, Kept: kept, Superseded: superseded}
}

// EmployeeEvents returns the log entries for one employee, newest first.
func EmployeeEvents(log []event.Event, employeeID int) []event.Event {
	var out []event.Event
	for _, ev := range log {
		if ev.Header().EmployeeID == employeeID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Header().UpdatedAt.After(out[j].Header().UpdatedAt)
	})
	return out
}

// HasEmployeeEvents reports whether the log holds any entry for the
// employee.
func HasEmployeeEvents(log []event.Event, employeeID int) bool {
	for _, ev := range log {
		if ev.Header().EmployeeID == employeeID {
			return true
		}
	}
	return false
}

// Find returns the entry with the given id.
func Find(log []event.Event, eventID string) (event.Event, bool) {
	for _, ev := range log {
		if ev.Header().ID == eventID {
			return ev, true
		}
	}
	return nil, false
}

// Remove deletes the entry with the given id. Removing an absent id is
// a no-op; callers routinely probe for existence.
func Remove(log []event.Event, eventID string) (out []event.Event, removed bool) {
	out = log[:0:0]
	for _, ev := range log {
		if ev.Header().ID == eventID {
			removed = true
			continue
		}
		out = append(out, ev)
	}
	return out, removed
}

// UpdateNotes sets the notes on the entry with the given id and bumps
// its timestamp. On a miss nothing is mutated and found is false.
func UpdateNotes(log []event.Event, eventID, notes string, at time.Time) (updated event.Event, found bool) {
	for _, ev := range log {
		if ev.Header().ID == eventID {
			ev.Header().Notes = notes
			ev.Header().UpdatedAt = at
			return ev, true
		}
	}
	return nil, false
}
