/*
record.go - The versioned vacation record

PURPOSE:
  Data is the one blob a user owns per year. Every edit is a pure function
  returning a new Data; inputs are never mutated.

INVARIANTS:
  - VacationDates holds canonical YYYY-MM-DD strings, sorted, no duplicates
  - TotalDays >= 1
  - TotalDays >= len(VacationDates) after SetEntitlement (other edits may
    exceed it; the summary then reports a negative remainder)

SEE ALSO:
  - store.go: where records are kept
  - migration.go: local vs cloud comparison
*/
package vacation

import "github.com/pochivni/planner/calendar"

const (
	// StorageKey is the fixed local key of the anonymous record.
	StorageKey = "pochivni-vacation-data"

	// SchemaVersion is the current record version.
	SchemaVersion = 1

	// DefaultTotalDays is the Bulgarian statutory minimum of paid leave.
	DefaultTotalDays = 20
)

// =============================================================================
// DATA
// =============================================================================

// Data is the persisted vacation record.
type Data struct {
	Version       int      `json:"version"`
	TotalDays     int      `json:"totalDays"`
	VacationDates []string `json:"vacationDates"`
}

// Default returns a fresh record.
func Default() Data {
	return Data{Version: SchemaVersion, TotalDays: DefaultTotalDays, VacationDates: []string{}}
}

// Used is the number of vacation days taken.
func (d Data) Used() int { return len(d.VacationDates) }

// Dates returns the vacation days as a set. Invalid strings are skipped.
func (d Data) Dates() calendar.DateSet {
	s := make(calendar.DateSet, len(d.VacationDates))
	for _, v := range d.VacationDates {
		if day := calendar.Parse(v); day.IsValid() {
			s.Add(day)
		}
	}
	return s
}

// Contains reports whether day is a vacation day.
func (d Data) Contains(day calendar.Date) bool {
	key := day.String()
	for _, v := range d.VacationDates {
		if v == key {
			return true
		}
	}
	return false
}

// InYear keeps the vacation days of year.
func (d Data) InYear(year int) Data {
	out := d
	out.VacationDates = []string{}
	for _, v := range d.VacationDates {
		if calendar.Parse(v).Year() == year {
			out.VacationDates = append(out.VacationDates, v)
		}
	}
	return out
}

// Normalize canonicalizes dates (dedupe, sort, drop invalid) and fills a
// missing version or entitlement with defaults.
func Normalize(d Data) Data {
	out := Data{Version: d.Version, TotalDays: d.TotalDays, VacationDates: d.Dates().Strings()}
	if out.Version <= 0 {
		out.Version = SchemaVersion
	}
	if out.TotalDays < 1 {
		out.TotalDays = DefaultTotalDays
	}
	return out
}

// Equal compares the date sets and the entitlement. Order and version are ignored.
func Equal(a, b Data) bool {
	if a.TotalDays != b.TotalDays {
		return false
	}
	as, bs := a.Dates(), b.Dates()
	if as.Len() != bs.Len() {
		return false
	}
	for day := range as {
		if !bs.Has(day) {
			return false
		}
	}
	return true
}

// MergeDates returns the sorted union of both records' days.
func MergeDates(a, b Data) []string {
	s := a.Dates()
	for day := range b.Dates() {
		s.Add(day)
	}
	return s.Strings()
}

// =============================================================================
// EDITS
// =============================================================================

// Toggle removes day if present, adds it otherwise.
func Toggle(d Data, day calendar.Date) (Data, error) {
	if !day.IsValid() {
		return d, ErrInvalidDay
	}
	set := d.Dates()
	if set.Has(day) {
		delete(set, day)
	} else {
		set.Add(day)
	}
	return withDates(d, set), nil
}

// ApplyRange adds every day between a and b inclusive, in either order.
// A single-day range leaves the record unchanged.
func ApplyRange(d Data, a, b calendar.Date) (Data, error) {
	if !a.IsValid() || !b.IsValid() {
		return d, ErrInvalidDay
	}
	r := calendar.Between(a, b)
	if r.Len() < 2 {
		return d, nil
	}
	set := d.Dates()
	for _, day := range r.Days() {
		set.Add(day)
	}
	return withDates(d, set), nil
}

// SetEntitlement changes TotalDays. It rejects totals below 1 or below the
// number of days already used, returning d unchanged.
func SetEntitlement(d Data, total int) (Data, error) {
	used := d.Dates().Len()
	switch {
	case total < 1:
		return d, &EntitlementError{Requested: total, Used: used, reason: ErrEntitlementTooLow}
	case total < used:
		return d, &EntitlementError{Requested: total, Used: used, reason: ErrEntitlementBelowUsed}
	}
	out := withDates(d, d.Dates())
	out.TotalDays = total
	return out, nil
}

func withDates(d Data, set calendar.DateSet) Data {
	out := Data{Version: d.Version, TotalDays: d.TotalDays, VacationDates: set.Strings()}
	if out.Version <= 0 {
		out.Version = SchemaVersion
	}
	return out
}
