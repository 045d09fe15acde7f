package holidays_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/holidays"
)

var errDown = errors.New("provider down")

// stubSource serves fixed lists, or fails for selected years.
type stubSource struct {
	holidays map[int][]calendar.Holiday
	school   map[int][]calendar.SchoolHoliday
	fail     map[int]bool
	delay    time.Duration
	calls    int32
}

func (s *stubSource) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.fail[year] {
		return nil, errDown
	}
	return s.holidays[year], nil
}

func (s *stubSource) SchoolHolidays(ctx context.Context, year int) ([]calendar.SchoolHoliday, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.fail[year] {
		return nil, errDown
	}
	return s.school[year], nil
}

func (s *stubSource) Calls() int { return int(atomic.LoadInt32(&s.calls)) }

func hol(date, name string) calendar.Holiday {
	return calendar.Holiday{Date: calendar.Parse(date), Name: name, Type: calendar.PublicHoliday}
}

// =============================================================================
// COMPOSITE
// =============================================================================

func TestComposite_PrimaryWins(t *testing.T) {
	primary := &stubSource{holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "api")}}}
	fallback := &stubSource{holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "computed")}}}

	got, err := holidays.NewComposite(primary, fallback, zap.NewNop()).Holidays(context.Background(), 2026)

	require.NoError(t, err)
	assert.Equal(t, "api", got[0].Name)
	assert.Equal(t, 0, fallback.Calls())
}

func TestComposite_FallsBack(t *testing.T) {
	fallback := &stubSource{
		holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "computed")}},
		school:   map[int][]calendar.SchoolHoliday{2026: {{Name: "Есенна ваканция"}}},
	}

	tests := []struct {
		name    string
		primary *stubSource
	}{
		{"error", &stubSource{fail: map[int]bool{2026: true}}},
		{"empty", &stubSource{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := holidays.NewComposite(tt.primary, fallback, zap.NewNop())

			got, err := c.Holidays(context.Background(), 2026)
			require.NoError(t, err)
			assert.Equal(t, "computed", got[0].Name)

			school, err := c.SchoolHolidays(context.Background(), 2026)
			require.NoError(t, err)
			assert.Equal(t, "Есенна ваканция", school[0].Name)
		})
	}
}

func TestComposite_BothFail(t *testing.T) {
	failing := &stubSource{fail: map[int]bool{2026: true}}

	_, err := holidays.NewComposite(failing, failing, nil).Holidays(context.Background(), 2026)

	assert.ErrorIs(t, err, errDown)
}

// =============================================================================
// CACHE
// =============================================================================

func TestCached_HitsWithinTTL(t *testing.T) {
	src := &stubSource{holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "a")}}}
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := holidays.NewCached(src, time.Hour).WithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		_, err := c.Holidays(context.Background(), 2026)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.Calls())

	// WHEN: the entry expires
	now = now.Add(2 * time.Hour)
	_, err := c.Holidays(context.Background(), 2026)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	src := &stubSource{fail: map[int]bool{2026: true}}
	c := holidays.NewCached(src, time.Hour)

	_, err := c.Holidays(context.Background(), 2026)
	require.Error(t, err)

	src.fail = nil
	_, err = c.Holidays(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestCached_ReturnsCopies(t *testing.T) {
	src := &stubSource{holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "a")}}}
	c := holidays.NewCached(src, time.Hour)

	first, _ := c.Holidays(context.Background(), 2026)
	first[0].Name = "mutated"

	second, _ := c.Holidays(context.Background(), 2026)
	assert.Equal(t, "a", second[0].Name)
}

func TestCached_ConcurrentMissesShareOneCall(t *testing.T) {
	src := &stubSource{
		holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "a")}},
		delay:    50 * time.Millisecond,
	}
	c := holidays.NewCached(src, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Holidays(context.Background(), 2026)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.Calls())
}

func TestCached_PrefetchAndInvalidate(t *testing.T) {
	src := &stubSource{
		holidays: map[int][]calendar.Holiday{2027: {hol("2027-01-01", "a")}},
		school:   map[int][]calendar.SchoolHoliday{2027: {{Name: "b"}}},
	}
	c := holidays.NewCached(src, time.Hour)

	require.NoError(t, c.Prefetch(context.Background(), 2027))
	assert.Equal(t, 2, src.Calls())

	_, _ = c.SchoolHolidays(context.Background(), 2027)
	assert.Equal(t, 2, src.Calls())

	c.Invalidate()
	_, _ = c.SchoolHolidays(context.Background(), 2027)
	assert.Equal(t, 3, src.Calls())
}

// =============================================================================
// WINDOW
// =============================================================================

func TestWindow_ThreeYearsSorted(t *testing.T) {
	src := &stubSource{holidays: map[int][]calendar.Holiday{
		2025: {hol("2025-12-24", "prev")},
		2026: {hol("2026-09-22", "b"), hol("2026-03-03", "a")},
		2027: {hol("2027-01-01", "next")},
		2028: {hol("2028-01-01", "outside")},
	}}

	got, err := holidays.Window(context.Background(), src, 2026, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-12-24", "2026-03-03", "2026-09-22", "2027-01-01"}, dates(got))
}

func TestWindow_FailedYearIsEmpty(t *testing.T) {
	src := &stubSource{
		holidays: map[int][]calendar.Holiday{2026: {hol("2026-03-03", "a")}},
		fail:     map[int]bool{2027: true},
	}

	got, err := holidays.Window(context.Background(), src, 2026, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-03"}, dates(got))
}

func TestWindow_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := holidays.Window(ctx, &stubSource{}, 2026, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancellingSource cancels the caller's context on its first fetch.
type cancellingSource struct {
	stubSource
	cancel context.CancelFunc
}

func (s *cancellingSource) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	s.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWindow_CancelledMidFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancellingSource{cancel: cancel}

	got, err := holidays.Window(ctx, src, 2026, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestWindow_FeedsBridgeDetection(t *testing.T) {
	// GIVEN: the computed calendar around 2026
	window, err := holidays.Window(context.Background(), holidays.NewComputed(), 2026, nil)
	require.NoError(t, err)

	// WHEN
	bridges := calendar.DetectBridgeDays(window, 2026)

	// THEN: New Year 2027 on a Friday suggests the last days of 2026
	set := map[string]bool{}
	for _, b := range bridges {
		set[b.Date.String()] = true
		assert.Equal(t, 2026, b.Date.Year())
	}
	for _, d := range []string{"2026-12-29", "2026-12-30", "2026-12-31"} {
		assert.True(t, set[d], d)
	}
}
