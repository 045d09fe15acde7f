/*
Package sqlite provides a SQLite-backed implementation of the vacation stores.

PURPOSE:
  The default backend of planner serve (cloud records) and an alternative
  device store for the CLI (the kv table).

INTERFACES IMPLEMENTED:
  vacation.RecordStore: one record per (user_id, year)
  vacation.KV:          local key-value blobs and migration flags

KEY TABLES:
  vacation_records: user_id, year, total_days, vacation_dates (JSON array), version
  kv:               key, value

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/planner.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - vacation/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
  - store/postgres: GORM/Postgres implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pochivni/planner/vacation"
)

// Store implements vacation.RecordStore and vacation.KV using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vacation_records (
		user_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		total_days INTEGER NOT NULL CHECK (total_days >= 1),
		vacation_dates TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (user_id, year)
	);

	CREATE INDEX IF NOT EXISTS idx_vacation_records_user
		ON vacation_records(user_id, year DESC);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE
// =============================================================================

// LoadYear returns the user's record for year, nil if none.
func (s *Store) LoadYear(ctx context.Context, userID string, year int) (*vacation.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d vacation.Data
	var datesJSON string

	err := s.db.QueryRowContext(ctx,
		"SELECT version, total_days, vacation_dates FROM vacation_records WHERE user_id = ? AND year = ?",
		userID, year,
	).Scan(&d.Version, &d.TotalDays, &datesJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(datesJSON), &d.VacationDates); err != nil {
		return nil, fmt.Errorf("%w: %s/%d: %v", vacation.ErrCorruptRecord, userID, year, err)
	}
	d = vacation.Normalize(d)
	return &d, nil
}

// SaveYear upserts the user's record for year.
func (s *Store) SaveYear(ctx context.Context, userID string, year int, data vacation.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data = vacation.Normalize(data)
	datesJSON, err := json.Marshal(data.VacationDates)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO vacation_records (user_id, year, version, total_days, vacation_dates, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, year) DO UPDATE SET
			version = excluded.version,
			total_days = excluded.total_days,
			vacation_dates = excluded.vacation_dates,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query,
		userID, year, data.Version, data.TotalDays, string(datesJSON), now,
	)
	return err
}

// Years lists the years the user has records for, newest first.
func (s *Store) Years(ctx context.Context, userID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT year FROM vacation_records WHERE user_id = ? ORDER BY year DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// =============================================================================
// KV
// =============================================================================

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"vacation_records", "kv"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
