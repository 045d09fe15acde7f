/*
rollover.go - Carryover of unused days with a two-year expiry

PURPOSE:
  Vacation allocated in year Y may be used until Dec 31 of Y+2. When viewing
  year V, the two prior allocation years V-1 and V-2 are the only ones that
  can still contribute.

ALGORITHM:
  1. Load V-1 and V-2 concurrently
  2. For each record with TotalDays - Used > 0, build a Bucket
       ExpiresAt = (Y+2)-12-31, IsExpired = today > ExpiresAt
  3. No bucket -> nil (nothing to show)
  4. Buckets newest first; TotalRollover sums the non-expired ones
  5. Legacy fields: RolloverDays = TotalRollover, PreviousYear* from the
     most recent bucket

FAIL CLOSED:
  Any load error aborts the whole calculation. A partial carryover would be
  wrong in one direction or the other.

SEE ALSO:
  - summary.go: effective total including carryover
*/
package vacation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pochivni/planner/calendar"
)

// LookbackYears is how many allocation years can still carry over.
const LookbackYears = 2

// =============================================================================
// TYPES
// =============================================================================

// Bucket is the unused balance of one allocation year. Derived, never persisted.
type Bucket struct {
	Year         int           `json:"year"`
	RolloverDays int           `json:"rolloverDays"`
	ExpiresAt    calendar.Date `json:"expiresAt"`
	IsExpired    bool          `json:"isExpired"`

	total int
	used  int
}

// Rollover is the carryover available when viewing a year.
type Rollover struct {
	Buckets       []Bucket `json:"buckets"`
	TotalRollover int      `json:"totalRollover"`

	RolloverDays      int `json:"rolloverDays"`
	PreviousYearTotal int `json:"previousYearTotal"`
	PreviousYearUsed  int `json:"previousYearUsed"`
}

// ExpiryFor returns the last day on which days allocated in year can be used.
func ExpiryFor(year int) calendar.Date {
	return calendar.NewDate(year+LookbackYears, time.December, 31)
}

// =============================================================================
// PURE CALCULATION
// =============================================================================

// BuildRollover computes the carryover from prior-year records keyed by year.
// Missing years may be absent or nil.
func BuildRollover(records map[int]*Data, viewYear int, today calendar.Date) *Rollover {
	var buckets []Bucket
	for year := viewYear - 1; year >= viewYear-LookbackYears; year-- {
		rec := records[year]
		if rec == nil {
			continue
		}
		d := Normalize(*rec)
		unused := d.TotalDays - d.Used()
		if unused <= 0 {
			continue
		}
		expires := ExpiryFor(year)
		buckets = append(buckets, Bucket{
			Year:         year,
			RolloverDays: unused,
			ExpiresAt:    expires,
			IsExpired:    today.After(expires),
			total:        d.TotalDays,
			used:         d.Used(),
		})
	}
	if len(buckets) == 0 {
		return nil
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Year > buckets[j].Year })

	r := &Rollover{Buckets: buckets}
	for _, b := range buckets {
		if !b.IsExpired {
			r.TotalRollover += b.RolloverDays
		}
	}
	r.RolloverDays = r.TotalRollover
	r.PreviousYearTotal = buckets[0].total
	r.PreviousYearUsed = buckets[0].used
	return r
}

// =============================================================================
// ENGINE
// =============================================================================

// RolloverEngine loads prior years from a RecordStore.
type RolloverEngine struct {
	Store  RecordStore
	Now    func() time.Time
	Logger *zap.Logger
}

func NewRolloverEngine(store RecordStore, logger *zap.Logger) *RolloverEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverEngine{Store: store, Now: time.Now, Logger: logger}
}

// Calculate returns the carryover for viewYear, nil when there is none.
// On any load error it returns nil and the error.
func (e *RolloverEngine) Calculate(ctx context.Context, userID string, viewYear int) (*Rollover, error) {
	records := make([]*Data, LookbackYears)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < LookbackYears; i++ {
		i, year := i, viewYear-1-i
		g.Go(func() error {
			rec, err := e.Store.LoadYear(gctx, userID, year)
			if err != nil {
				return fmt.Errorf("load %d: %w", year, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.Logger.Warn("rollover calculation failed",
			zap.String("user_id", userID),
			zap.Int("year", viewYear),
			zap.Error(err))
		return nil, err
	}

	byYear := make(map[int]*Data, LookbackYears)
	for i, rec := range records {
		byYear[viewYear-1-i] = rec
	}
	return BuildRollover(byYear, viewYear, calendar.TodayAt(e.now())), nil
}

func (e *RolloverEngine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
