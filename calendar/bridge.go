/*
bridge.go - Bridge-day detection

PURPOSE:
  Suggests workdays that, taken as vacation, extend a public holiday into a
  longer break.

STRATEGIES:
  full-week (default):
    For every Monday-Friday holiday, suggest every other workday of that
    holiday's work week. DaysOff is always 5.

  adjacent:
    The narrower policy. A Tuesday holiday suggests the Monday before it, a
    Thursday holiday suggests the Friday after it, and the 1-2 workdays between
    two holidays 2-3 days apart are suggested as cluster connectors. DaysOff is
    the length of the resulting contiguous break.

YEAR BOUNDARIES:
  Both detectors look at holidays of year-1, year and year+1 and only emit
  suggestions dated inside year. A Friday Jan 1 therefore yields the
  preceding Monday-Thursday of December.

SEE ALSO:
  - types.go: BridgeDay, Holiday
  - classify.go: how bridge days are shown next to vacation days
*/
package calendar

import (
	"fmt"
	"sort"
)

// Detector computes bridge-day suggestions for year.
type Detector func(holidays []Holiday, year int) []BridgeDay

// Strategy names a bridge-day policy.
type Strategy string

const (
	StrategyFullWeek Strategy = "full-week"
	StrategyAdjacent Strategy = "adjacent"
)

// BridgeDetector returns the detector for name. The empty name selects full-week.
func BridgeDetector(name string) (Detector, error) {
	switch Strategy(name) {
	case "", StrategyFullWeek:
		return DetectBridgeDays, nil
	case StrategyAdjacent:
		return DetectAdjacentBridgeDays, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// windowHolidays keeps the valid holidays of year-1..year+1, in input order.
func windowHolidays(holidays []Holiday, year int) []Holiday {
	out := make([]Holiday, 0, len(holidays))
	for _, h := range holidays {
		y := h.Date.Year()
		if h.Date.IsValid() && y >= year-1 && y <= year+1 {
			out = append(out, h)
		}
	}
	return out
}

func inYear(days []BridgeDay, year int) []BridgeDay {
	out := make([]BridgeDay, 0, len(days))
	for _, b := range days {
		if b.Date.Year() == year {
			out = append(out, b)
		}
	}
	return out
}

// =============================================================================
// FULL WEEK
// =============================================================================

// DetectBridgeDays applies the full-week policy. Suggestions keep the order in
// which they were found: holidays in input order, Monday to Friday.
func DetectBridgeDays(holidays []Holiday, year int) []BridgeDay {
	relevant := windowHolidays(holidays, year)
	isHoliday := HolidaySet(relevant)
	seen := make(DateSet)
	var suggestions []BridgeDay

	for _, h := range relevant {
		if h.Date.IsWeekend() {
			continue
		}
		monday := h.Date.MondayOfWeek()
		for i := 0; i < 5; i++ {
			day := monday.AddDays(i)
			if day == h.Date || isHoliday.Has(day) || seen.Has(day) {
				continue
			}
			suggestions = append(suggestions, BridgeDay{
				Date:           day,
				Reason:         ReasonFullWeek,
				RelatedHoliday: h.Name,
				DaysOff:        5,
			})
			seen.Add(day)
		}
	}
	return inYear(suggestions, year)
}

// IsBridgeDay reports exact membership of d in days.
func IsBridgeDay(d Date, days []BridgeDay) bool {
	for _, b := range days {
		if b.Date == d {
			return true
		}
	}
	return false
}

// =============================================================================
// ADJACENT
// =============================================================================

// DetectAdjacentBridgeDays applies the adjacent policy. Output is sorted by date.
func DetectAdjacentBridgeDays(holidays []Holiday, year int) []BridgeDay {
	relevant := windowHolidays(holidays, year)
	sort.SliceStable(relevant, func(i, j int) bool { return relevant[i].Date.Before(relevant[j].Date) })
	isHoliday := HolidaySet(relevant)
	seen := make(DateSet)
	var suggestions []BridgeDay

	add := func(reason BridgeReason, related string, days ...Date) {
		taken := NewDateSet(days...)
		for _, d := range days {
			if seen.Has(d) {
				continue
			}
			suggestions = append(suggestions, BridgeDay{
				Date:           d,
				Reason:         reason,
				RelatedHoliday: related,
				DaysOff:        breakLength(d, isHoliday, taken),
			})
			seen.Add(d)
		}
	}

	for _, h := range relevant {
		switch h.Date.ISOWeekday() {
		case 2:
			if prev := h.Date.AddDays(-1); !isHoliday.Has(prev) {
				add(ReasonHolidayAfter, h.Name, prev)
			}
		case 4:
			if next := h.Date.AddDays(1); !isHoliday.Has(next) {
				add(ReasonHolidayBefore, h.Name, next)
			}
		}
	}

	for i := 0; i+1 < len(relevant); i++ {
		a, b := relevant[i], relevant[i+1]
		gap := a.Date.DaysUntil(b.Date)
		if gap < 2 || gap > 3 {
			continue
		}
		var between []Date
		for d := a.Date.AddDays(1); d.Before(b.Date); d = d.AddDays(1) {
			if d.IsWeekday() && !isHoliday.Has(d) {
				between = append(between, d)
			}
		}
		if len(between) > 0 {
			add(ReasonClusterConnector, a.Name+" + "+b.Name, between...)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Date.Before(suggestions[j].Date) })
	return inYear(suggestions, year)
}

// breakLength counts the contiguous days off around d once taken are vacation.
func breakLength(d Date, holidays, taken DateSet) int {
	off := func(x Date) bool { return x.IsWeekend() || holidays.Has(x) || taken.Has(x) }
	n := 1
	for x := d.AddDays(-1); off(x); x = x.AddDays(-1) {
		n++
	}
	for x := d.AddDays(1); off(x); x = x.AddDays(1) {
		n++
	}
	return n
}
