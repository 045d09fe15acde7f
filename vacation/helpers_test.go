package vacation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pochivni/planner/vacation"
)

var errUnreachable = errors.New("cloud unreachable")

// failingStore fails every call.
type failingStore struct{}

func (failingStore) LoadYear(context.Context, string, int) (*vacation.Data, error) {
	return nil, errUnreachable
}

func (failingStore) SaveYear(context.Context, string, int, vacation.Data) error {
	return errUnreachable
}

// countingStore counts saves on top of another store.
type countingStore struct {
	vacation.RecordStore

	mu    sync.Mutex
	saves int
}

func (c *countingStore) SaveYear(ctx context.Context, userID string, year int, d vacation.Data) error {
	c.mu.Lock()
	c.saves++
	c.mu.Unlock()
	return c.RecordStore.SaveYear(ctx, userID, year, d)
}

func (c *countingStore) Saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

// gatedStore blocks loads of one year until released.
type gatedStore struct {
	vacation.RecordStore
	year int

	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGatedStore(inner vacation.RecordStore, year int) *gatedStore {
	return &gatedStore{RecordStore: inner, year: year, started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) LoadYear(ctx context.Context, userID string, year int) (*vacation.Data, error) {
	if year == g.year {
		g.once.Do(func() { close(g.started) })
		<-g.release
	}
	return g.RecordStore.LoadYear(ctx, userID, year)
}

// datesIn returns n consecutive ISO dates starting on Jan 1 of year.
func datesIn(year, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%04d-%02d-%02d", year, 1+i/28, 1+i%28)
	}
	return out
}

func record(total int, dates ...string) vacation.Data {
	if dates == nil {
		dates = []string{}
	}
	return vacation.Data{Version: 1, TotalDays: total, VacationDates: dates}
}

// flakyKV fails reads of the vacation record after the first okReads.
type flakyKV struct {
	vacation.KV

	mu      sync.Mutex
	okReads int
}

var errDiskRead = errors.New("disk read failed")

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == vacation.StorageKey {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.okReads == 0 {
			return nil, false, errDiskRead
		}
		f.okReads--
	}
	return f.KV.Get(ctx, key)
}
