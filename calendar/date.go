/*
Package calendar provides the date kernel and the calendar computations of the planner.

PURPOSE:
  Everything that reasons about days lives here: strict ISO date parsing,
  Monday-first month grids, bridge-day detection, school-holiday expansion
  and the classification of a day for display.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: a civil calendar day (year, month, day) with no clock and no zone
  - Parse: strict YYYY-MM-DD parser returning an invalid sentinel on failure
  - Today: the local calendar day, truncated to midnight

TIMEZONES:
  A Date never carries a location. Arithmetic goes through UTC midnight, so
  adding days can never land on the wrong day because of a DST switch or a
  host timezone near midnight. Free-form parsers are never used.

USAGE:
  d := calendar.Parse("2026-03-03")
  if !d.IsValid() {
      // reject input
  }
  next := d.AddDays(1)
  fmt.Println(next) // 2026-03-04

SEE ALSO:
  - range.go: inclusive date intervals
  - grid.go: month grid builder
  - bridge.go: bridge-day detection
*/
package calendar

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DATE - Civil calendar day
// =============================================================================

// Date is a calendar day. The zero value is the invalid sentinel.
type Date struct {
	year  int
	month time.Month
	day   int
}

// ISOLayout is the only accepted textual form of a Date.
const ISOLayout = "2006-01-02"

// NewDate builds a Date. Out-of-range components produce an invalid Date.
func NewDate(year int, month time.Month, day int) Date {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return Date{}
	}
	if day < 1 || day > DaysIn(year, month) {
		return Date{}
	}
	return Date{year: year, month: month, day: day}
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Parse parses a strict YYYY-MM-DD string. Malformed or impossible input
// (including the empty string) yields the invalid Date; it never panics.
func Parse(s string) Date {
	d, err := ParseStrict(s)
	if err != nil {
		return Date{}
	}
	return d
}

// ParseStrict is Parse with the failure reason.
func ParseStrict(s string) (Date, error) {
	if len(s) != len(ISOLayout) || s[4] != '-' || s[7] != '-' {
		return Date{}, &ParseError{Input: s}
	}
	y, okY := atoi(s[0:4])
	m, okM := atoi(s[5:7])
	d, okD := atoi(s[8:10])
	if !okY || !okM || !okD {
		return Date{}, &ParseError{Input: s}
	}
	date := NewDate(y, time.Month(m), d)
	if !date.IsValid() {
		return Date{}, &ParseError{Input: s}
	}
	return date, nil
}

// atoi accepts ASCII digits only: no signs, no spaces.
func atoi(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Serialize formats d as YYYY-MM-DD. The invalid Date serializes to "".
func Serialize(d Date) string { return d.String() }

// Today returns the current local calendar day.
func Today() Date { return TodayAt(time.Now()) }

// TodayAt returns the calendar day of now, with every clock field dropped.
func TodayAt(now time.Time) Date { return FromTime(now) }

// Properties
func (d Date) IsValid() bool         { return d.year >= 1 }
func (d Date) Year() int             { return d.year }
func (d Date) Month() time.Month     { return d.month }
func (d Date) Day() int              { return d.day }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// ISOWeekday returns 1 for Monday through 7 for Sunday.
func (d Date) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) IsWeekend() bool { return d.ISOWeekday() >= 6 }
func (d Date) IsWeekday() bool { return d.IsValid() && !d.IsWeekend() }

// Time returns midnight UTC of d. The zero time for the invalid Date.
func (d Date) Time() time.Time {
	if !d.IsValid() {
		return time.Time{}
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

// Arithmetic
func (d Date) AddDays(n int) Date {
	if !d.IsValid() {
		return d
	}
	return FromTime(d.Time().AddDate(0, 0, n))
}

// MondayOfWeek returns the Monday of d's ISO week.
func (d Date) MondayOfWeek() Date { return d.AddDays(-(d.ISOWeekday() - 1)) }

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Comparison
func (d Date) Compare(other Date) int {
	switch {
	case d.year != other.year:
		return cmpInt(d.year, other.year)
	case d.month != other.month:
		return cmpInt(int(d.month), int(other.month))
	default:
		return cmpInt(d.day, other.day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d == other }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Date) String() string {
	if !d.IsValid() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Empty text is the invalid Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseStrict(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// GREGORIAN RULES
// =============================================================================

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	}
	return 31
}

// =============================================================================
// DATE SET
// =============================================================================

// DateSet is a set of calendar days.
type DateSet map[Date]struct{}

func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

func (s DateSet) Add(d Date) { s[d] = struct{}{} }
func (s DateSet) Len() int   { return len(s) }

func (s DateSet) Has(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in ascending order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Strings returns the members as sorted ISO strings.
func (s DateSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = d.String()
	}
	return out
}
