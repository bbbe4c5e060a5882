// Package repository defines the session store port and its adapters.
package repository

import (
	"context"

	"github.com/okian/ninebox/internal/domain/session"
)

// Store provides durable load/save access to session state, keyed by
// subject id. One record exists per subject; writes are last-writer-wins
// because the product is single-user.
type Store interface {
	// Save persists the whole aggregate, replacing any prior record for
	// the same subject.
	Save(ctx context.Context, state *session.State) error

	// Load returns the session for a subject.
	// Returns ErrNotFound if no record exists.
	Load(ctx context.Context, subjectID string) (*session.State, error)

	// Delete removes the session for a subject.
	// Returns ErrNotFound if no record exists.
	Delete(ctx context.Context, subjectID string) error

	// Count returns the number of persisted sessions.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
