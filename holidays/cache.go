package holidays

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pochivni/planner/calendar"
)

// DefaultCacheTTL is how long a fetched year stays fresh.
const DefaultCacheTTL = 24 * time.Hour

type cacheEntry struct {
	value     any
	fetchedAt time.Time
}

// Cached wraps a Source with a per-year TTL cache. Concurrent misses for the
// same year share one upstream call. Errors are not cached.
type Cached struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCached creates a Cached source. A non-positive ttl uses DefaultCacheTTL.
func NewCached(source Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// WithClock replaces the clock used for expiry.
func (c *Cached) WithClock(now func() time.Time) *Cached {
	c.now = now
	return c
}

func (c *Cached) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	v, err := c.get(fmt.Sprintf("public:%d", year), func() (any, error) {
		return c.source.Holidays(ctx, year)
	})
	if err != nil {
		return nil, err
	}
	return append([]calendar.Holiday(nil), v.([]calendar.Holiday)...), nil
}

func (c *Cached) SchoolHolidays(ctx context.Context, year int) ([]calendar.SchoolHoliday, error) {
	v, err := c.get(fmt.Sprintf("school:%d", year), func() (any, error) {
		return c.source.SchoolHolidays(ctx, year)
	})
	if err != nil {
		return nil, err
	}
	return append([]calendar.SchoolHoliday(nil), v.([]calendar.SchoolHoliday)...), nil
}

// Prefetch loads both lists of year into the cache.
func (c *Cached) Prefetch(ctx context.Context, year int) error {
	if _, err := c.Holidays(ctx, year); err != nil {
		return err
	}
	_, err := c.SchoolHolidays(ctx, year)
	return err
}

// Invalidate drops every cached year.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Cached) get(key string, load func() (any, error)) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.value, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{value: v, fetchedAt: c.now()}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}
