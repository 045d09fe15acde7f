// Package memory provides in-memory implementations of the vacation stores.
package memory

import (
	"context"
	"sync"

	"github.com/pochivni/planner/vacation"
)

// =============================================================================
// RECORD STORE - In-memory implementation (for testing/dev)
// =============================================================================

type recordKey struct {
	UserID string
	Year   int
}

// Records is a vacation.RecordStore.
type Records struct {
	mu      sync.RWMutex
	records map[recordKey]vacation.Data
}

func NewRecords() *Records {
	return &Records{records: make(map[recordKey]vacation.Data)}
}

// LoadYear returns a copy of the stored record, nil if none.
func (m *Records) LoadYear(_ context.Context, userID string, year int) (*vacation.Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.records[recordKey{userID, year}]
	if !ok {
		return nil, nil
	}
	d.VacationDates = append([]string{}, d.VacationDates...)
	return &d, nil
}

func (m *Records) SaveYear(_ context.Context, userID string, year int, data vacation.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[recordKey{userID, year}] = vacation.Normalize(data)
	return nil
}

// Len returns the number of stored records.
func (m *Records) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// =============================================================================
// KV
// =============================================================================

// KV is a vacation.KV.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKV() *KV {
	return &KV{values: make(map[string][]byte)}
}

func (m *KV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *KV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
