package holidays

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
)

// Planner joins a Source with the calendar computations. Fetch failures
// degrade to empty lists and are logged; only invalid input is an error.
type Planner struct {
	source        Source
	detect        calendar.Detector
	schoolExclude []string
	logger        *zap.Logger
}

// NewPlanner creates a Planner. strategy selects the default bridge detector.
func NewPlanner(source Source, strategy string, schoolExclude []string, logger *zap.Logger) (*Planner, error) {
	detect, err := calendar.BridgeDetector(strategy)
	if err != nil {
		return nil, err
	}
	if schoolExclude == nil {
		schoolExclude = calendar.DefaultSchoolExclusions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{source: source, detect: detect, schoolExclude: schoolExclude, logger: logger}, nil
}

// Holidays returns the public holidays of year.
func (p *Planner) Holidays(ctx context.Context, year int) []calendar.Holiday {
	hs, err := p.source.Holidays(ctx, year)
	if err != nil {
		p.logger.Warn("Holidays unavailable",
			zap.Int("year", year),
			zap.Error(err))
		return []calendar.Holiday{}
	}
	return hs
}

// Bridges detects the bridge days of year. An empty strategy uses the default.
func (p *Planner) Bridges(ctx context.Context, year int, strategy string) ([]calendar.BridgeDay, error) {
	detect := p.detect
	if strategy != "" {
		d, err := calendar.BridgeDetector(strategy)
		if err != nil {
			return nil, err
		}
		detect = d
	}

	window, err := Window(ctx, p.source, year, p.logger)
	if err != nil {
		return nil, err
	}
	out := detect(window, year)
	if out == nil {
		out = []calendar.BridgeDay{}
	}
	return out, nil
}

// SchoolBreaks holds the merged breaks of a year and their highlighted weekdays.
type SchoolBreaks struct {
	Breaks   []calendar.SchoolHoliday
	Weekdays calendar.DateSet
}

// School returns the merged school breaks of year.
func (p *Planner) School(ctx context.Context, year int) SchoolBreaks {
	raw, err := p.source.SchoolHolidays(ctx, year)
	if err != nil {
		p.logger.Warn("School holidays unavailable",
			zap.Int("year", year),
			zap.Error(err))
	}
	merged := calendar.MergeSchoolHolidays(raw)
	if merged == nil {
		merged = []calendar.SchoolHoliday{}
	}
	return SchoolBreaks{Breaks: merged, Weekdays: calendar.ExpandToWeekdaySet(merged, p.schoolExclude)}
}

// MonthView is one month ready for display.
type MonthView struct {
	Grid    calendar.Grid
	Days    []calendar.DayInfo
	Bridges []calendar.BridgeDay
}

// Month builds the grid of year/month and classifies every day against the
// holidays, bridges, school breaks and the given vacation days.
func (p *Planner) Month(ctx context.Context, year int, month time.Month, vacation calendar.DateSet, today calendar.Date) (MonthView, error) {
	grid, err := calendar.GridFor(year, month)
	if err != nil {
		return MonthView{}, err
	}
	bridges, err := p.Bridges(ctx, year, "")
	if err != nil {
		return MonthView{}, err
	}

	hs := p.Holidays(ctx, year)
	school := p.School(ctx, year)
	c := calendar.NewClassifier(hs, bridges, school.Weekdays, vacation, today)

	var monthBridges []calendar.BridgeDay
	for _, b := range bridges {
		if b.Date.Month() == month {
			monthBridges = append(monthBridges, b)
		}
	}
	if monthBridges == nil {
		monthBridges = []calendar.BridgeDay{}
	}
	return MonthView{Grid: grid, Days: c.Month(grid), Bridges: monthBridges}, nil
}
