/*
Package holidays retrieves Bulgarian public and school holidays.

PURPOSE:
  The calendar package computes on holiday lists; this package produces them.
  A Source is layered: the OpenHolidays API first, a computed calendar as the
  fallback, both behind a TTL cache.

KEY CONCEPTS:
  - Source: yields the holidays and school breaks of one year
  - OpenHolidays: HTTP client with retry and exponential backoff
  - Computed: offline calendar (fixed dates, Orthodox Easter, substitute days)
  - Composite: primary then fallback, logging the failure
  - Cached: per-year TTL cache with duplicate-request suppression
  - Window: the three years around a target year, fetched concurrently

USAGE:
  src := holidays.NewCached(
      holidays.NewComposite(holidays.NewOpenHolidays(cfg, logger), holidays.NewComputed(), logger),
      24*time.Hour,
  )
  window, err := holidays.Window(ctx, src, 2026, logger)

SEE ALSO:
  - calendar/bridge.go: consumes the window
  - calendar/school.go: merges the raw school breaks
*/
package holidays

import (
	"context"
	"errors"
	"fmt"

	"github.com/pochivni/planner/calendar"
)

// Source yields the holidays of one calendar year.
type Source interface {
	Holidays(ctx context.Context, year int) ([]calendar.Holiday, error)
	SchoolHolidays(ctx context.Context, year int) ([]calendar.SchoolHoliday, error)
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoData is returned when a source has nothing for the requested year.
	ErrNoData = errors.New("no holiday data")

	// ErrUpstream marks a failed request to a remote holiday provider.
	ErrUpstream = errors.New("holiday provider failed")
)

// StatusError is a non-2xx response from a holiday provider.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d for %s", e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrUpstream }

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool { return retryableStatus(e.StatusCode) }
