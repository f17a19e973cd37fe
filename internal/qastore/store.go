// Package qastore persists per-issue checklist state in Postgres: one row per
// issue key holding the AC and DoD lists as JSONB.
package qastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/sprintqa/qaboard/internal/checklist"
)

// State is the stored checklist state of one issue. LastSavedAt is nil when
// the issue has never been saved.
type State struct {
	AC          []checklist.Item `json:"ac"`
	DoD         []checklist.Item `json:"dod"`
	LastSavedAt *time.Time       `json:"lastSavedAt"`
}

type Store struct {
	db *sql.DB
}

// Open connects to Postgres and applies the pool limits the service runs
// with. The connection is not verified here; call Ping for that.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxIdleTime(30 * time.Second)
	return &Store{db: db}, nil
}

// New wraps an existing database handle. Used by tests.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS qa_states (
	issue_key TEXT PRIMARY KEY,
	ac JSONB DEFAULT '[]'::jsonb,
	dod JSONB DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ DEFAULT NOW()
)`

// EnsureSchema creates the qa_states table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create qa_states table: %w", err)
	}
	return nil
}

const loadSQL = `SELECT ac, dod, updated_at FROM qa_states WHERE issue_key = $1`

// Load returns the stored state for the issue. A missing row is not an
// error: it loads as two empty lists and a nil timestamp.
func (s *Store) Load(ctx context.Context, issueKey string) (*State, error) {
	var (
		acRaw, dodRaw []byte
		updatedAt     time.Time
	)
	err := s.db.QueryRowContext(ctx, loadSQL, issueKey).Scan(&acRaw, &dodRaw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &State{AC: []checklist.Item{}, DoD: []checklist.Item{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load qa state for %s: %w", issueKey, err)
	}
	return &State{
		AC:          checklist.UnmarshalItems(acRaw),
		DoD:         checklist.UnmarshalItems(dodRaw),
		LastSavedAt: &updatedAt,
	}, nil
}

const saveSQL = `
INSERT INTO qa_states (issue_key, ac, dod, updated_at)
VALUES ($1, $2::jsonb, $3::jsonb, NOW())
ON CONFLICT (issue_key)
DO UPDATE SET ac = EXCLUDED.ac, dod = EXCLUDED.dod, updated_at = NOW()
RETURNING updated_at`

// Save upserts the issue's checklist state in one statement, so concurrent
// saves for the same key can never duplicate rows or lose the insert. Nil
// lists are stored as empty arrays. Returns the new updated_at.
func (s *Store) Save(ctx context.Context, issueKey string, ac, dod []checklist.Item) (time.Time, error) {
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx, saveSQL,
		issueKey,
		checklist.MarshalItems(ac),
		checklist.MarshalItems(dod),
	).Scan(&updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("save qa state for %s: %w", issueKey, err)
	}
	return updatedAt, nil
}
