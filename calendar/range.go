package calendar

// =============================================================================
// RANGE - Inclusive interval of days
// =============================================================================

// Range is the inclusive interval [Start, End].
type Range struct {
	Start Date
	End   Date
}

// Between returns the inclusive range spanned by a and b in either order.
func Between(a, b Date) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsValid reports whether both ends are valid and ordered.
func (r Range) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && !r.End.Before(r.Start)
}

// Contains returns true if d is within [Start, End].
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Len is the number of days in the range, 0 for an invalid range.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}
	return r.Start.DaysUntil(r.End) + 1
}

// Days returns every day in the range.
func (r Range) Days() []Date {
	if !r.IsValid() {
		return nil
	}
	// Counted, not compared: stepping past 9999-12-31 yields the invalid Date.
	n := r.Len()
	days := make([]Date, 0, n)
	for i, d := 0, r.Start; i < n; i, d = i+1, d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Weekdays returns the Monday-Friday days of the range.
func (r Range) Weekdays() []Date {
	var out []Date
	for _, d := range r.Days() {
		if !d.IsWeekend() {
			out = append(out, d)
		}
	}
	return out
}

// Overlaps reports whether r and o share at least one day.
func (r Range) Overlaps(o Range) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// Touches reports whether r and o overlap or one starts the day after the other ends.
func (r Range) Touches(o Range) bool {
	return r.Overlaps(o) || r.End.AddDays(1) == o.Start || o.End.AddDays(1) == r.Start
}

func (r Range) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}
