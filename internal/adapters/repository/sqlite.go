package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/ninebox/internal/domain/session"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	subject_id TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// SQLiteStore provides SQLite-backed persistence for session state.
// Each subject owns exactly one row holding the encoded aggregate.
type SQLiteStore struct {
	sqlDB       *sql.DB
	busyTimeout time.Duration
}

// Open opens a SQLite store at the provided path, creating the schema
// on first use.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	store := &SQLiteStore{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(store)
	}

	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cleanPath, store.busyTimeout.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	store.sqlDB = sqlDB
	return store, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, state *session.State) error {
	document, err := EncodeState(state)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
		INSERT INTO sessions (subject_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (subject_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at`,
		state.SubjectID, string(document), state.UpdatedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save session %s: %w", state.SubjectID, err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, subjectID string) (*session.State, error) {
	var document string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE subject_id = ?`, subjectID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", subjectID, err)
	}
	return DecodeState([]byte(document))
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, subjectID string) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM sessions WHERE subject_id = ?`, subjectID)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", subjectID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", subjectID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
