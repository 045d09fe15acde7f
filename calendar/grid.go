package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// GRID - Monday-first month layout
// =============================================================================

// Grid is the layout of one month. FirstDayOfWeek is 0 for Monday through 6 for Sunday.
type Grid struct {
	Year           int        `json:"year"`
	Month          time.Month `json:"month"`
	FirstDayOfWeek int        `json:"firstDayOfWeek"`
	DaysInMonth    int        `json:"daysInMonth"`
	Days           []int      `json:"days"`
}

// GridFor computes the layout of month in year.
func GridFor(year int, month time.Month) (Grid, error) {
	if month < time.January || month > time.December {
		return Grid{}, fmt.Errorf("%w: %d", ErrInvalidMonth, int(month))
	}
	first := NewDate(year, month, 1)
	if !first.IsValid() {
		return Grid{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}

	n := DaysIn(year, month)
	days := make([]int, n)
	for i := range days {
		days[i] = i + 1
	}
	return Grid{
		Year:           year,
		Month:          month,
		FirstDayOfWeek: mondayFirst(first.Weekday()),
		DaysInMonth:    n,
		Days:           days,
	}, nil
}

// mondayFirst converts Go's Sunday-first numbering to Monday=0..Sunday=6.
func mondayFirst(raw time.Weekday) int {
	if raw == time.Sunday {
		return 6
	}
	return int(raw) - 1
}

// YearGrid returns the twelve month grids of year.
func YearGrid(year int) ([12]Grid, error) {
	var out [12]Grid
	for m := time.January; m <= time.December; m++ {
		g, err := GridFor(year, m)
		if err != nil {
			return out, err
		}
		out[m-1] = g
	}
	return out, nil
}

// Date returns the date of the given day of the grid's month.
func (g Grid) Date(day int) Date { return NewDate(g.Year, g.Month, day) }

// Weeks lays the month out in rows of seven cells, Monday first.
// Padding cells before the first and after the last day are zero.
func (g Grid) Weeks() [][7]int {
	var weeks [][7]int
	var row [7]int
	col := g.FirstDayOfWeek
	for _, day := range g.Days {
		row[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, row)
			row = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, row)
	}
	return weeks
}
