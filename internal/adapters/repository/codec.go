package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/session"
)

// The persisted record mirrors the aggregate field for field. Every
// enumerated value serializes as its canonical string label, timestamps
// as RFC 3339 text, and optional fields are always present with an
// explicit empty marker so a round trip can distinguish "absent" from
// "not yet written". No field uses omitempty.

type sessionRecord struct {
	ID          string           `json:"id"`
	SubjectID   string           `json:"subject_id"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Source      sourceRecord     `json:"source"`
	Baseline    []employeeRecord `json:"baseline"`
	Current     []employeeRecord `json:"current"`
	Events      []eventRecord    `json:"events"`
	DonutEvents []eventRecord    `json:"donut_events"`
	DonutMode   bool             `json:"donut_mode"`
}

type sourceRecord struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Sheet    string `json:"sheet"`
}

type employeeRecord struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Performance  string      `json:"performance"`
	Potential    string      `json:"potential"`
	Position     int         `json:"position"`
	Flags        []string    `json:"flags"`
	Modified     bool        `json:"modified"`
	LastModified string      `json:"last_modified"`
	Donut        donutRecord `json:"donut"`
}

type donutRecord struct {
	Performance  string `json:"performance"`
	Potential    string `json:"potential"`
	Position     int    `json:"position"`
	Notes        string `json:"notes"`
	Modified     bool   `json:"modified"`
	LastModified string `json:"last_modified"`
}

type eventRecord struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	EmployeeID     int    `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	UpdatedAt      string `json:"updated_at"`
	Notes          string `json:"notes"`
	OldPerformance string `json:"old_performance"`
	OldPotential   string `json:"old_potential"`
	OldPosition    int    `json:"old_position"`
	NewPerformance string `json:"new_performance"`
	NewPotential   string `json:"new_potential"`
	NewPosition    int    `json:"new_position"`
	Flag           string `json:"flag"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func encodeEmployee(e model.Employee) employeeRecord {
	flags := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		flags[i] = string(f)
	}
	return employeeRecord{
		ID:           e.ID,
		Name:         e.Name,
		Performance:  string(e.Performance),
		Potential:    string(e.Potential),
		Position:     e.Position,
		Flags:        flags,
		Modified:     e.Modified,
		LastModified: formatTime(e.LastModified),
		Donut: donutRecord{
			Performance:  string(e.Donut.Performance),
			Potential:    string(e.Donut.Potential),
			Position:     e.Donut.Position,
			Notes:        e.Donut.Notes,
			Modified:     e.Donut.Modified,
			LastModified: formatTime(e.Donut.LastModified),
		},
	}
}

func decodeEmployee(rec employeeRecord) (model.Employee, error) {
	lastModified, err := parseTime(rec.LastModified)
	if err != nil {
		return model.Employee{}, err
	}
	donutModified, err := parseTime(rec.Donut.LastModified)
	if err != nil {
		return model.Employee{}, err
	}
	var flags []model.Flag
	for _, f := range rec.Flags {
		flags = append(flags, model.Flag(f))
	}
	return model.Employee{
		ID:           rec.ID,
		Name:         rec.Name,
		Performance:  model.Rating(rec.Performance),
		Potential:    model.Rating(rec.Potential),
		Position:     rec.Position,
		Flags:        flags,
		Modified:     rec.Modified,
		LastModified: lastModified,
		Donut: model.DonutState{
			Performance:  model.Rating(rec.Donut.Performance),
			Potential:    model.Rating(rec.Donut.Potential),
			Position:     rec.Donut.Position,
			Notes:        rec.Donut.Notes,
			Modified:     rec.Donut.Modified,
			LastModified: donutModified,
		},
	}, nil
}

// encodeEvent flattens an event variant into the tagged wire record.
// The switch is exhaustive over the sealed variant set.
func encodeEvent(ev event.Event) (eventRecord, error) {
	meta := ev.Header()
	rec := eventRecord{
		Type:         string(ev.Kind()),
		ID:           meta.ID,
		EmployeeID:   meta.EmployeeID,
		EmployeeName: meta.EmployeeName,
		UpdatedAt:    formatTime(meta.UpdatedAt),
		Notes:        meta.Notes,
	}
	switch e := ev.(type) {
	case *event.GridMove:
		rec.OldPerformance = string(e.OldPerformance)
		rec.OldPotential = string(e.OldPotential)
		rec.OldPosition = e.OldPosition
		rec.NewPerformance = string(e.NewPerformance)
		rec.NewPotential = string(e.NewPotential)
		rec.NewPosition = e.NewPosition
	case *event.DonutMove:
		rec.OldPerformance = string(e.OldPerformance)
		rec.OldPotential = string(e.OldPotential)
		rec.OldPosition = e.OldPosition
		rec.NewPerformance = string(e.NewPerformance)
		rec.NewPotential = string(e.NewPotential)
		rec.NewPosition = e.NewPosition
	case *event.FlagAdd:
		rec.Flag = string(e.Flag)
	case *event.FlagRemove:
		rec.Flag = string(e.Flag)
	default:
		return eventRecord{}, fmt.Errorf("encode event: unknown variant %T", ev)
	}
	return rec, nil
}

// decodeEvent rebuilds an event variant from its tagged wire record.
func decodeEvent(rec eventRecord) (event.Event, error) {
	updatedAt, err := parseTime(rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	meta := event.Meta{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		EmployeeName: rec.EmployeeName,
		UpdatedAt:    updatedAt,
		Notes:        rec.Notes,
	}
	switch event.Kind(rec.Type) {
	case event.KindGridMove:
		return &event.GridMove{
			Meta:           meta,
			OldPerformance: model.Rating(rec.OldPerformance),
			OldPotential:   model.Rating(rec.OldPotential),
			OldPosition:    rec.OldPosition,
			NewPerformance: model.Rating(rec.NewPerformance),
			NewPotential:   model.Rating(rec.NewPotential),
			NewPosition:    rec.NewPosition,
		}, nil
	case event.KindDonutMove:
		return &event.DonutMove{
			Meta:           meta,
			OldPerformance: model.Rating(rec.OldPerformance),
			OldPotential:   model.Rating(rec.OldPotential),
			OldPosition:    rec.OldPosition,
			NewPerformance: model.Rating(rec.NewPerformance),
			NewPotential:   model.Rating(rec.NewPotential),
			NewPosition:    rec.NewPosition,
		}, nil
	case event.KindFlagAdd:
		return &event.FlagAdd{Meta: meta, Flag: model.Flag(rec.Flag)}, nil
	case event.KindFlagRemove:
		return &event.FlagRemove{Meta: meta, Flag: model.Flag(rec.Flag)}, nil
	default:
		return nil, fmt.Errorf("decode event: unknown type %q", rec.Type)
	}
}

func encodeEvents(log []event.Event) ([]eventRecord, error) {
	out := make([]eventRecord, len(log))
	for i, ev := range log {
		rec, err := encodeEvent(ev)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

func decodeEvents(recs []eventRecord) ([]event.Event, error) {
	var out []event.Event
	for _, rec := range recs {
		ev, err := decodeEvent(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// EncodeState serializes a session aggregate to its persisted document.
func EncodeState(state *session.State) ([]byte, error) {
	baseline := make([]employeeRecord, len(state.Baseline))
	for i, e := range state.Baseline {
		baseline[i] = encodeEmployee(e)
	}
	current := make([]employeeRecord, len(state.Current))
	for i, e := range state.Current {
		current[i] = encodeEmployee(e)
	}
	events, err := encodeEvents(state.Events)
	if err != nil {
		return nil, err
	}
	donutEvents, err := encodeEvents(state.DonutEvents)
	if err != nil {
		return nil, err
	}
	rec := sessionRecord{
		ID:        state.ID,
		SubjectID: state.SubjectID,
		CreatedAt: formatTime(state.CreatedAt),
		UpdatedAt: formatTime(state.UpdatedAt),
		Source: sourceRecord{
			Filename: state.Source.Filename,
			Path:     state.Source.Path,
			Sheet:    state.Source.Sheet,
		},
		Baseline:    baseline,
		Current:     current,
		Events:      events,
		DonutEvents: donutEvents,
		DonutMode:   state.DonutMode,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// DecodeState rebuilds a session aggregate from its persisted document.
func DecodeState(data []byte) (*session.State, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	createdAt, err := parseTime(rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	baseline := make([]model.Employee, len(rec.Baseline))
	for i, e := range rec.Baseline {
		emp, err := decodeEmployee(e)
		if err != nil {
			return nil, err
		}
		baseline[i] = emp
	}
	current := make([]model.Employee, len(rec.Current))
	for i, e := range rec.Current {
		emp, err := decodeEmployee(e)
		if err != nil {
			return nil, err
		}
		current[i] = emp
	}
	events, err := decodeEvents(rec.Events)
	if err != nil {
		return nil, err
	}
	donutEvents, err := decodeEvents(rec.DonutEvents)
	if err != nil {
		return nil, err
	}
	return &session.State{
		ID:        rec.ID,
		SubjectID: rec.SubjectID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Source: session.Provenance{
			Filename: rec.Source.Filename,
			Path:     rec.Source.Path,
			Sheet:    rec.Source.Sheet,
		},
		Baseline:    baseline,
		Current:     current,
		Events:      events,
		DonutEvents: donutEvents,
		DonutMode:   rec.DonutMode,
	}, nil
}
