package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochivni/planner/calendar"
)

// =============================================================================
// PARSE / SERIALIZE
// =============================================================================

func TestParse_RoundTrip(t *testing.T) {
	for _, s := range []string{
		"0001-01-01", "1999-12-31", "2000-02-29", "2024-02-29",
		"2026-03-03", "2026-12-31", "9999-12-31",
	} {
		t.Run(s, func(t *testing.T) {
			d := calendar.Parse(s)
			require.True(t, d.IsValid())
			assert.Equal(t, s, d.String())
			assert.Equal(t, s, calendar.Serialize(d))
		})
	}
}

func TestParse_RoundTripEveryDayOfLeapYear(t *testing.T) {
	d := calendar.NewDate(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		s := d.String()
		assert.Equal(t, s, calendar.Parse(s).String())
		d = d.AddDays(1)
	}
	assert.Equal(t, "2025-01-01", d.String())
}

func TestParse_RejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"", "2026-2-03", "2026/03/03", "2026-03-03T00:00:00Z", " 2026-03-03",
		"2026-02-30", "2025-02-29", "2026-13-01", "2026-00-10", "2026-04-31",
		"0000-01-01", "+026-01-01", "2026-03-0a", "03-03-2026",
	} {
		t.Run(s, func(t *testing.T) {
			d := calendar.Parse(s)
			assert.False(t, d.IsValid())
			assert.Equal(t, "", d.String())

			_, err := calendar.ParseStrict(s)
			assert.ErrorIs(t, err, calendar.ErrInvalidDate)
		})
	}
}

func TestTodayAt_IgnoresClockAndZone(t *testing.T) {
	// GIVEN: 00:30 in Sofia, still the previous day in UTC
	sofia := time.FixedZone("EET", 2*60*60)
	now := time.Date(2026, time.March, 29, 0, 30, 0, 0, sofia)

	// WHEN
	today := calendar.TodayAt(now)

	// THEN: the local calendar day wins
	assert.Equal(t, "2026-03-29", today.String())
	assert.Equal(t, time.Date(2026, time.March, 29, 0, 0, 0, 0, time.UTC), today.Time())
}

func TestAddDays_AcrossDSTSwitch(t *testing.T) {
	// Europe/Sofia switches to summer time on 2026-03-29.
	d := calendar.Parse("2026-03-28")
	assert.Equal(t, "2026-03-29", d.AddDays(1).String())
	assert.Equal(t, "2026-03-30", d.AddDays(2).String())
	assert.Equal(t, "2026-03-27", d.AddDays(-1).String())
}

func TestWeekdayHelpers(t *testing.T) {
	wed := calendar.Parse("2026-05-06")
	assert.Equal(t, 3, wed.ISOWeekday())
	assert.Equal(t, "2026-05-04", wed.MondayOfWeek().String())
	assert.False(t, wed.IsWeekend())

	sun := calendar.Parse("2026-05-24")
	assert.Equal(t, 7, sun.ISOWeekday())
	assert.True(t, sun.IsWeekend())
	assert.Equal(t, "2026-05-18", sun.MondayOfWeek().String())
}

func TestCompare(t *testing.T) {
	a := calendar.Parse("2026-01-31")
	b := calendar.Parse("2026-02-01")
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 1, a.DaysUntil(b))
	assert.Equal(t, -1, b.DaysUntil(a))
	assert.True(t, a.Equal(calendar.Parse("2026-01-31")))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Day calendar.Date `json:"day"`
	}

	raw, err := json.Marshal(wrapper{Day: calendar.Parse("2026-09-22")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2026-09-22"}`, string(raw))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2026-09-06"}`), &w))
	assert.Equal(t, calendar.Parse("2026-09-06"), w.Day)

	assert.Error(t, json.Unmarshal([]byte(`{"day":"2026-09-31"}`), &w))
}

// =============================================================================
// GREGORIAN RULES
// =============================================================================

func TestIsLeapYear(t *testing.T) {
	tests := map[int]bool{1900: false, 2000: true, 2024: true, 2025: false, 2100: false, 2400: true}
	for year, want := range tests {
		assert.Equal(t, want, calendar.IsLeapYear(year), "year %d", year)
	}
}

func TestDateSet_SortedStrings(t *testing.T) {
	s := calendar.NewDateSet(calendar.Parse("2026-06-01"), calendar.Parse("2026-05-01"), calendar.Parse("2026-06-01"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"2026-05-01", "2026-06-01"}, s.Strings())
}
