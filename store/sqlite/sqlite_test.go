package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochivni/planner/store/sqlite"
	"github.com/pochivni/planner/vacation"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_RecordUpsert(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	// GIVEN: no record yet
	got, err := store.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	assert.Nil(t, got)

	// WHEN: saving twice for the same user and year
	require.NoError(t, store.SaveYear(ctx, "u1", 2026, vacation.Data{Version: 1, TotalDays: 20, VacationDates: []string{"2026-05-04"}}))
	require.NoError(t, store.SaveYear(ctx, "u1", 2026, vacation.Data{Version: 1, TotalDays: 22, VacationDates: []string{"2026-05-05", "2026-05-04"}}))

	// THEN: the last write wins, normalized
	got, err = store.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, vacation.Data{Version: 1, TotalDays: 22, VacationDates: []string{"2026-05-04", "2026-05-05"}}, *got)
}

func TestStore_RecordsScopedByUserAndYear(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveYear(ctx, "u1", 2025, vacation.Default()))
	require.NoError(t, store.SaveYear(ctx, "u1", 2026, vacation.Default()))
	require.NoError(t, store.SaveYear(ctx, "u2", 2026, vacation.Default()))

	years, err := store.Years(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{2026, 2025}, years)

	none, err := store.LoadYear(ctx, "u2", 2025)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestStore_EmptyDatesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveYear(ctx, "u1", 2026, vacation.Default()))

	got, err := store.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	assert.Equal(t, vacation.Default(), *got)
}

func TestStore_KV(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, ok, err := store.Get(ctx, vacation.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	local := vacation.NewLocalStore(store)
	require.NoError(t, local.Save(ctx, vacation.Data{TotalDays: 25, VacationDates: []string{"2026-08-03"}}))
	require.NoError(t, local.Save(ctx, vacation.Data{TotalDays: 24, VacationDates: []string{"2026-08-04"}}))

	got, ok, err := local.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24, got.TotalDays)
	assert.Equal(t, []string{"2026-08-04"}, got.VacationDates)

	require.NoError(t, store.Delete(ctx, vacation.StorageKey))
	_, ok, err = store.Get(ctx, vacation.StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_FileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "planner.db")

	first, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveYear(ctx, "u1", 2026, vacation.Data{TotalDays: 21, VacationDates: []string{"2026-01-02"}}))
	require.NoError(t, first.Close())

	second, err := sqlite.New(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 21, got.TotalDays)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.SaveYear(ctx, "u1", 2026, vacation.Default()))
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	require.NoError(t, store.Reset(ctx))

	got, err := store.LoadYear(ctx, "u1", 2026)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, ok, _ := store.Get(ctx, "k")
	assert.False(t, ok)
}
