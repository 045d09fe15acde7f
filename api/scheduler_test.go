package api_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pochivni/planner/api"
)

type recordingPrefetcher struct {
	mu    sync.Mutex
	years []int
	fail  bool
}

func (p *recordingPrefetcher) Prefetch(_ context.Context, year int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.years = append(p.years, year)
	if p.fail {
		return errors.New("upstream down")
	}
	return nil
}

func (p *recordingPrefetcher) Years() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.years...)
}

func TestHolidayPrefetcher_RunNow(t *testing.T) {
	// GIVEN
	cache := &recordingPrefetcher{}
	p := api.NewHolidayPrefetcher(cache, nil)
	p.Now = func() time.Time { return time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC) }

	// WHEN
	p.RunNow()

	// THEN: current and next year
	assert.Equal(t, []int{2026, 2027}, cache.Years())
	assert.False(t, p.LastRun().IsZero())
}

func TestHolidayPrefetcher_FailuresDoNotStopTheRun(t *testing.T) {
	cache := &recordingPrefetcher{fail: true}
	p := api.NewHolidayPrefetcher(cache, nil)

	p.RunNow()

	assert.Len(t, cache.Years(), 2)
}

func TestHolidayPrefetcher_StartStop(t *testing.T) {
	cache := &recordingPrefetcher{}
	p := api.NewHolidayPrefetcher(cache, nil)
	p.CheckInterval = 10 * time.Millisecond

	p.Start()
	assert.Eventually(t, func() bool { return len(cache.Years()) >= 4 }, time.Second, 5*time.Millisecond)
	p.Stop()

	n := len(cache.Years())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, len(cache.Years()), "no passes after Stop")

	p.Stop()
}

func TestHolidayPrefetcher_Disabled(t *testing.T) {
	cache := &recordingPrefetcher{}
	p := api.NewHolidayPrefetcher(cache, nil)
	p.Enabled = false

	p.Start()
	p.Stop()

	assert.Empty(t, cache.Years())
}
