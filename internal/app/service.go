// Package app provides the session manager that orchestrates every
// mutation of a review session: it builds the typed event for a caller's
// request, delegates reconciliation to the tracker, writes the scalar
// fields onto the current projection and persists the aggregate.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/ninebox/internal/adapters/repository"
	"github.com/okian/ninebox/internal/domain/event"
	"github.com/okian/ninebox/internal/domain/model"
	"github.com/okian/ninebox/internal/domain/session"
	"github.com/okian/ninebox/internal/domain/tracker"
	"github.com/okian/ninebox/pkg/logger"
	"github.com/okian/ninebox/pkg/metrics"
)

// Service is the session manager. It is constructed once per process
// and injected explicitly; there is no package-level instance. Sessions
// are cached in memory and loaded from the store on first access after
// process start. Every public operation is a single load-mutate-persist
// sequence guarded by one mutex, matching the single-user product.
type Service struct {
	mu sync.Mutex

	store    repository.Store
	sessions map[string]*session.State

	clock  func() time.Time
	newID  func() string
	logger logger.Logger
}

// New constructs a Service backed by the given store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sessions: make(map[string]*session.State),
		clock:    time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// CreateSession deep-copies the roster into a fresh session, replacing
// any prior session for the subject, and returns the new session id.
func (s *Service) CreateSession(ctx context.Context, subjectID string, employees []model.Employee, source session.Provenance) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	normalized := model.CloneAll(employees)
	for i := range normalized {
		normalized[i].SetPlacement(normalized[i].Performance, normalized[i].Potential)
		normalized[i].Flags = model.NormalizeFlags(normalized[i].Flags)
		normalized[i].Modified = false
		normalized[i].LastModified = time.Time{}
	}

	state := session.New(s.newID(), subjectID, now, normalized, source)
	if err := s.persist(ctx, state); err != nil {
		return "", err
	}
	s.sessions[subjectID] = state
	metrics.RecordSessionCreated()
	metrics.UpdateSessionsCached(len(s.sessions))

	s.logger.Info(ctx, "session created",
		logger.String("subject", subjectID),
		logger.String("session", state.ID),
		logger.Int("employees", len(state.Baseline)),
	)
	return state.ID, nil
}

// MoveEmployee places an employee on a new grid cell. The returned
// event reflects the request even when reconciliation discarded it as
// net-zero.
func (s *Service) MoveEmployee(ctx context.Context, subjectID string, employeeID int, performance, potential model.Rating) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, current, baseline, err := s.subjectEmployee(ctx, subjectID, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	ev := event.NewGridMove(s.newID(), now, *current, performance, potential)
	res := tracker.Track(state.Events, ev, baseline)
	state.Events = res.Log
	s.recordTracking(res)

	current.SetPlacement(performance, potential)
	s.refreshModified(current, state, now)

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}
	return event.Clone(ev), nil
}

// MoveEmployeeDonut places an employee's donut-mode shadow. A return to
// the center cell cancels the live donut event and resets the shadow to
// its empty defaults; this is a conceptual reset, unlike the primary
// stream which leaves placement at the requested values.
func (s *Service) MoveEmployeeDonut(ctx context.Context, subjectID string, employeeID int, performance, potential model.Rating) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, current, baseline, err := s.subjectEmployee(ctx, subjectID, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	ev := event.NewDonutMove(s.newID(), now, *current, performance, potential)
	res := tracker.Track(state.DonutEvents, ev, baseline)
	state.DonutEvents = res.Log
	s.recordTracking(res)

	if res.Kept {
		current.SetDonutPlacement(performance, potential)
		current.Donut.Modified = true
		current.Donut.LastModified = now
	} else {
		current.Donut = model.DonutState{}
	}

	if err := s.persist(ctx, state); err != nil {
		return nil, err
	}
	return event.Clone(ev), nil
}

// UpdateEmployeeFlags reconciles the employee's flag set to the
// requested set, tracking one event per flag that changes membership.
func (s *Service) UpdateEmployeeFlags(ctx context.Context, subjectID string, employeeID int, requested []model.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, current, baseline, err := s.subjectEmployee(ctx, subjectID, employeeID)
	if err != nil {
		return err
	}

	now := s.clock()
	toAdd, toRemove := model.DiffFlags(current.Flags, requested)
	for _, flag := range toAdd {
		res := tracker.Track(state.Events, event.NewFlagAdd(s.newID(), now, *current, flag), baseline)
		state.Events = res.Log
		s.recordTracking(res)
	}
	for _, flag := range toRemove {
		res := tracker.Track(state.Events, event.NewFlagRemove(s.newID(), now, *current, flag), baseline)
		state.Events = res.Log
		s.recordTracking(res)
	}

	current.Flags = model.NormalizeFlags(requested)
	s.refreshModified(current, state, now)

	return s.persist(ctx, state)
}

// ToggleDonutMode flips the aggregate's donut-mode flag. No snapshot or
// log is touched.
func (s *Service) ToggleDonutMode(ctx context.Context, subjectID string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.session(ctx, subjectID)
	if err != nil {
		return err
	}
	state.DonutMode = enabled
	return s.persist(ctx, state)
}

// UpdateEventNotes sets the notes on the event with the given id,
// searching the primary log and then the donut log. A miss returns
// found=false without error; callers routinely probe for existence.
func (s *Service) UpdateEventNotes(ctx context.Context, subjectID, eventID, notes string) (event.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.session(ctx, subjectID)
	if err != nil {
		return nil, false, err
	}

	now := s.clock()
	updated, found := tracker.UpdateNotes(state.Events, eventID, notes, now)
	if !found {
		updated, found = tracker.UpdateNotes(state.DonutEvents, eventID, notes, now)
	}
	if !found {
		return nil, false, nil
	}
	if err := s.persist(ctx, state); err != nil {
		return nil, false, err
	}
	return event.Clone(updated), true, nil
}

// RemoveEvent removes the event with the given id from either log and
// re-derives the affected employee's projection from the baseline plus
// the surviving events, so the current snapshot stays reconstructible.
// A miss is not an error.
func (s *Service) RemoveEvent(ctx context.Context, subjectID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.session(ctx, subjectID)
	if err != nil {
		return false, err
	}

	donut := false
	ev, found := tracker.Find(state.Events, eventID)
	if !found {
		ev, found = tracker.Find(state.DonutEvents, eventID)
		donut = true
	}
	if !found {
		return false, nil
	}
	if donut {
		state.DonutEvents, _ = tracker.Remove(state.DonutEvents, eventID)
	} else {
		state.Events, _ = tracker.Remove(state.Events, eventID)
	}
	s.rederiveEmployee(state, ev.Header().EmployeeID, donut, s.clock())

	if err := s.persist(ctx, state); err != nil {
		return false, err
	}
	return true, nil
}

// GetEmployeeEvents returns copies of the employee's surviving events
// from the primary or the donut log, newest first. Copies keep readers
// insulated from later in-place notes updates.
func (s *Service) GetEmployeeEvents(ctx context.Context, subjectID string, employeeID int, donut bool) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, _, _, err := s.subjectEmployee(ctx, subjectID, employeeID)
	if err != nil {
		return nil, err
	}
	if donut {
		return event.CloneAll(tracker.EmployeeEvents(state.DonutEvents, employeeID)), nil
	}
	return event.CloneAll(tracker.EmployeeEvents(state.Events, employeeID)), nil
}

// GetSession returns a point-in-time deep copy of the session aggregate
// for a subject. The copy is taken under the lock so readers never
// share memory with a concurrent mutation.
func (s *Service) GetSession(ctx context.Context, subjectID string) (*session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.session(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return state.Snapshot(), nil
}

// DeleteSession removes the session for a subject from the cache and
// the store.
func (s *Service) DeleteSession(ctx context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, subjectID)
	metrics.UpdateSessionsCached(len(s.sessions))
	if err := s.store.Delete(ctx, subjectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w for subject %s", ErrNoSession, subjectID)
		}
		return err
	}
	metrics.RecordSessionDeleted()
	s.logger.Info(ctx, "session deleted", logger.String("subject", subjectID))
	return nil
}

// Stats reports service-level counters for the stats endpoint. Stored
// counts come from the store; the remaining fields cover the in-memory
// cache only.
type Stats struct {
	CachedSessions int `json:"cachedSessions"`
	StoredSessions int `json:"storedSessions"`
	PrimaryEvents  int `json:"primaryEvents"`
	DonutEvents    int `json:"donutEvents"`
}

// GetStats returns service statistics for monitoring. A failing store
// count is logged and reported as zero rather than failing the call.
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{CachedSessions: len(s.sessions)}
	count, err := s.store.Count(context.Background())
	if err != nil {
		s.logger.Warn(context.Background(), "session count unavailable", logger.Error(err))
	} else {
		stats.StoredSessions = count
	}

	for _, state := range s.sessions {
		stats.PrimaryEvents += len(state.Events)
		stats.DonutEvents += len(state.DonutEvents)
	}
	return stats
}

// session returns the cached session for a subject, loading it from the
// store on first access. Callers must hold s.mu.
func (s *Service) session(ctx context.Context, subjectID string) (*session.State, error) {
	if state, ok := s.sessions[subjectID]; ok {
		return state, nil
	}
	state, err := s.store.Load(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w for subject %s", ErrNoSession, subjectID)
		}
		return nil, err
	}
	s.sessions[subjectID] = state
	metrics.UpdateSessionsCached(len(s.sessions))
	return state, nil
}

// subjectEmployee resolves the session plus the employee's current and
// baseline snapshots. The session is confirmed to exist before an
// unknown employee id is reported.
func (s *Service) subjectEmployee(ctx context.Context, subjectID string, employeeID int) (*session.State, *model.Employee, model.Employee, error) {
	state, err := s.session(ctx, subjectID)
	if err != nil {
		return nil, nil, model.Employee{}, err
	}
	current, ok := state.FindCurrent(employeeID)
	if !ok {
		return nil, nil, model.Employee{}, fmt.Errorf("%w: employee %d", ErrEmployeeNotFound, employeeID)
	}
	baseline, ok := state.FindBaseline(employeeID)
	if !ok {
		return nil, nil, model.Employee{}, fmt.Errorf("%w: employee %d", ErrEmployeeNotFound, employeeID)
	}
	return state, current, baseline, nil
}

// rederiveEmployee rebuilds one employee's slice of the projection after
// a log entry was removed out of band. Placement falls back to the
// baseline when no live grid move remains, flags are replayed from the
// baseline through the surviving flag events, and the donut shadow is
// rebuilt from the latest surviving donut move or cleared.
func (s *Service) rederiveEmployee(state *session.State, employeeID int, donut bool, now time.Time) {
	current, ok := state.FindCurrent(employeeID)
	if !ok {
		return
	}
	baseline, ok := state.FindBaseline(employeeID)
	if !ok {
		return
	}

	if donut {
		current.Donut = model.DonutState{}
		for _, ev := range tracker.EmployeeEvents(state.DonutEvents, employeeID) {
			if move, isMove := ev.(*event.DonutMove); isMove {
				current.SetDonutPlacement(move.NewPerformance, move.NewPotential)
				current.Donut.Modified = true
				current.Donut.LastModified = move.UpdatedAt
				break
			}
		}
		return
	}

	current.SetPlacement(baseline.Performance, baseline.Potential)
	for _, ev := range tracker.EmployeeEvents(state.Events, employeeID) {
		if move, isMove := ev.(*event.GridMove); isMove {
			current.SetPlacement(move.NewPerformance, move.NewPotential)
			break
		}
	}

	flags := append([]model.Flag(nil), baseline.Flags...)
	for _, ev := range state.Events {
		if ev.Header().EmployeeID != employeeID {
			continue
		}
		switch e := ev.(type) {
		case *event.FlagAdd:
			flags = append(flags, e.Flag)
		case *event.FlagRemove:
			kept := flags[:0]
			for _, f := range flags {
				if f != e.Flag {
					kept = append(kept, f)
				}
			}
			flags = kept
		}
	}
	current.Flags = model.NormalizeFlags(flags)
	s.refreshModified(current, state, now)
}

// refreshModified re-derives the employee's modified indicator from
// primary-log membership.
func (s *Service) refreshModified(current *model.Employee, state *session.State, now time.Time) {
	if tracker.HasEmployeeEvents(state.Events, current.ID) {
		current.Modified = true
		current.LastModified = now
		return
	}
	current.Modified = false
	current.LastModified = time.Time{}
}

func (s *Service) recordTracking(res tracker.Result) {
	if res.Kept {
		metrics.RecordEventTracked()
	} else {
		metrics.RecordEventCancelled()
	}
	metrics.RecordEventSuperseded(res.Superseded)
}

// persist writes the aggregate through the store. Persistence failures
// propagate unchanged; surfacing them is the caller's responsibility.
func (s *Service) persist(ctx context.Context, state *session.State) error {
	state.UpdatedAt = s.clock()
	start := time.Now()
	err := s.store.Save(ctx, state)
	metrics.RecordPersistLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordPersistError()
		return err
	}
	return nil
}
