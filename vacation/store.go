/*
store.go - Persistence contracts for vacation records

KEY INTERFACES:
  RecordStore: one Data per (user, year), owned by the cloud
  KV:          a byte-oriented local key-value store (the device)

ADAPTERS OVER KV:
  LocalStore: the anonymous record under StorageKey
  FlagStore:  per-user "migration already attempted" flags

MISSING VS FAILED:
  LoadYear returns (nil, nil) when no record exists. A non-nil error always
  means the store could not answer; callers treat both as "no data" but only
  the error is logged.

IMPLEMENTATIONS:
  - store/memory:   in-memory, for tests and dev
  - store/sqlite:   default backend, also a KV
  - store/postgres: GORM over Postgres
  - remote:         HTTP client against planner serve
  - FileKV (below): one JSON file per key on the device
*/
package vacation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// =============================================================================
// INTERFACES
// =============================================================================

// RecordStore loads and saves per-year records.
type RecordStore interface {
	// LoadYear returns the user's record for year, or nil if none exists.
	LoadYear(ctx context.Context, userID string, year int) (*Data, error)

	// SaveYear upserts the user's record for year.
	SaveYear(ctx context.Context, userID string, year int, data Data) error
}

// KV is a local key-value store.
type KV interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// =============================================================================
// LOCAL STORE
// =============================================================================

// LocalStore keeps the single device-wide record in a KV.
type LocalStore struct {
	kv KV
}

func NewLocalStore(kv KV) *LocalStore { return &LocalStore{kv: kv} }

// Load returns the stored record, or Default with ok=false when nothing is stored.
// A record that cannot be decoded yields Default and an ErrCorruptRecord error.
func (s *LocalStore) Load(ctx context.Context) (Data, bool, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return Default(), false, fmt.Errorf("read local record: %w", err)
	}
	if !ok || len(raw) == 0 {
		return Default(), false, nil
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Default(), false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return Normalize(d), true, nil
}

// Save replaces the stored record.
func (s *LocalStore) Save(ctx context.Context, d Data) error {
	raw, err := json.Marshal(Normalize(d))
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("write local record: %w", err)
	}
	return nil
}

func (s *LocalStore) Clear(ctx context.Context) error { return s.kv.Delete(ctx, StorageKey) }

// =============================================================================
// MIGRATION FLAGS
// =============================================================================

const flagPrefix = "pochivni-migration-attempted:"

// FlagStore persists, per user, that migration was already attempted on this device.
type FlagStore struct {
	kv KV
}

func NewFlagStore(kv KV) *FlagStore { return &FlagStore{kv: kv} }

func (s *FlagStore) Attempted(ctx context.Context, userID string) (bool, error) {
	_, ok, err := s.kv.Get(ctx, flagPrefix+userID)
	return ok, err
}

func (s *FlagStore) MarkAttempted(ctx context.Context, userID string) error {
	return s.kv.Set(ctx, flagPrefix+userID, []byte("true"))
}

func (s *FlagStore) Clear(ctx context.Context, userID string) error {
	return s.kv.Delete(ctx, flagPrefix+userID)
}

// =============================================================================
// FILE KV
// =============================================================================

// FileKV stores each key as a file under Dir. Writes are atomic (temp file + rename).
type FileKV struct {
	Dir string
}

func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local dir: %w", err)
	}
	return &FileKV{Dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.Dir, url.PathEscape(key)+".json")
}

func (f *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.Dir, ".kv-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
