package repository

import (
	"context"
	"sync"

	"github.com/okian/ninebox/internal/domain/session"
)

// MemoryStore keeps sessions in process memory. Records round-trip
// through the same codec as the SQLite store, so callers get back an
// independent copy with identical serialization semantics.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, state *session.State) error {
	document, err := EncodeState(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SubjectID] = document
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, subjectID string) (*session.State, error) {
	s.mu.RLock()
	document, ok := s.sessions[subjectID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return DecodeState(document)
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[subjectID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, subjectID)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
