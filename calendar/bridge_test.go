package calendar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochivni/planner/calendar"
)

func holiday(date, name string) calendar.Holiday {
	return calendar.Holiday{Date: calendar.Parse(date), Name: name, Type: calendar.PublicHoliday}
}

func bridgeDates(days []calendar.BridgeDay) []string {
	out := make([]string, len(days))
	for i, b := range days {
		out[i] = b.Date.String()
	}
	return out
}

// =============================================================================
// FULL WEEK
// =============================================================================

func TestDetectBridgeDays_MondayHoliday(t *testing.T) {
	// GIVEN: a Monday holiday
	holidays := []calendar.Holiday{holiday("2026-06-01", "Monday off")}

	// WHEN
	got := calendar.DetectBridgeDays(holidays, 2026)

	// THEN: the other four weekdays of the week, each worth a five-day break
	assert.Equal(t, []string{"2026-06-02", "2026-06-03", "2026-06-04", "2026-06-05"}, bridgeDates(got))
	for _, b := range got {
		assert.Equal(t, calendar.ReasonFullWeek, b.Reason)
		assert.Equal(t, "Monday off", b.RelatedHoliday)
		assert.Equal(t, 5, b.DaysOff)
	}
}

func TestDetectBridgeDays_TwoHolidaysSameWeek(t *testing.T) {
	// GIVEN: Christmas Eve (Thu) and Christmas Day (Fri) in one work week
	holidays := []calendar.Holiday{
		holiday("2026-12-24", "Бъдни вечер"),
		holiday("2026-12-25", "Коледа"),
	}

	// WHEN
	got := calendar.DetectBridgeDays(holidays, 2026)

	// THEN: only the remaining workdays, no duplicates, still five days off
	assert.Equal(t, []string{"2026-12-21", "2026-12-22", "2026-12-23"}, bridgeDates(got))
	for _, b := range got {
		assert.Equal(t, 5, b.DaysOff)
		assert.Equal(t, "Бъдни вечер", b.RelatedHoliday)
	}
}

func TestDetectBridgeDays_NextYearsNewYear(t *testing.T) {
	// GIVEN: 2027-01-01 is a Friday
	holidays := []calendar.Holiday{holiday("2027-01-01", "Нова година")}

	// WHEN / THEN: the December workdays of that week belong to 2026
	assert.Equal(t,
		[]string{"2026-12-28", "2026-12-29", "2026-12-30", "2026-12-31"},
		bridgeDates(calendar.DetectBridgeDays(holidays, 2026)))

	// AND: nothing lands in 2027
	assert.Empty(t, calendar.DetectBridgeDays(holidays, 2027))
}

func TestDetectBridgeDays_WeekSpanningIntoNewYear(t *testing.T) {
	// GIVEN: 2026-01-01 is a Thursday
	holidays := []calendar.Holiday{holiday("2026-01-01", "Нова година")}

	assert.Equal(t, []string{"2025-12-29", "2025-12-30", "2025-12-31"},
		bridgeDates(calendar.DetectBridgeDays(holidays, 2025)))
	assert.Equal(t, []string{"2026-01-02"},
		bridgeDates(calendar.DetectBridgeDays(holidays, 2026)))
}

func TestDetectBridgeDays_WeekendHolidayIgnored(t *testing.T) {
	holidays := []calendar.Holiday{holiday("2026-05-24", "Ден на светите братя Кирил и Методий")}
	assert.Empty(t, calendar.DetectBridgeDays(holidays, 2026))
}

func TestDetectBridgeDays_HolidaysOutsideWindowIgnored(t *testing.T) {
	holidays := []calendar.Holiday{holiday("2029-01-01", "Нова година")}
	assert.Empty(t, calendar.DetectBridgeDays(holidays, 2026))
}

func TestDetectBridgeDays_NeverSuggestsHolidaysOrOtherYears(t *testing.T) {
	holidays := []calendar.Holiday{
		holiday("2025-12-24", "Бъдни вечер"),
		holiday("2025-12-25", "Коледа"),
		holiday("2025-12-26", "Коледа"),
		holiday("2026-01-01", "Нова година"),
		holiday("2026-03-03", "Освобождение"),
		holiday("2026-04-10", "Разпети петък"),
		holiday("2026-04-13", "Великден"),
		holiday("2026-05-01", "Ден на труда"),
		holiday("2026-05-06", "Гергьовден"),
		holiday("2026-09-22", "Независимост"),
		holiday("2026-12-24", "Бъдни вечер"),
		holiday("2026-12-25", "Коледа"),
		holiday("2027-01-01", "Нова година"),
	}
	isHoliday := calendar.HolidaySet(holidays)

	for _, detect := range []calendar.Detector{calendar.DetectBridgeDays, calendar.DetectAdjacentBridgeDays} {
		got := detect(holidays, 2026)
		require.NotEmpty(t, got)

		seen := calendar.NewDateSet()
		for _, b := range got {
			assert.Equal(t, 2026, b.Date.Year(), b.Date.String())
			assert.False(t, isHoliday.Has(b.Date), b.Date.String())
			assert.False(t, b.Date.IsWeekend(), b.Date.String())
			assert.False(t, seen.Has(b.Date), "duplicate %s", b.Date)
			seen.Add(b.Date)
		}
	}
}

func TestIsBridgeDay(t *testing.T) {
	holidays := []calendar.Holiday{holiday("2026-06-01", "Monday off")}
	days := calendar.DetectBridgeDays(holidays, 2026)

	assert.True(t, calendar.IsBridgeDay(calendar.Parse("2026-06-03"), days))
	assert.False(t, calendar.IsBridgeDay(calendar.Parse("2026-06-01"), days))
	assert.False(t, calendar.IsBridgeDay(calendar.Parse("2026-06-08"), days))
	assert.False(t, calendar.IsBridgeDay(calendar.Date{}, days))
}

// =============================================================================
// ADJACENT
// =============================================================================

func TestDetectAdjacentBridgeDays_TuesdayAndThursday(t *testing.T) {
	holidays := []calendar.Holiday{
		holiday("2026-03-03", "Освобождение"), // Tuesday
		holiday("2026-12-24", "Бъдни вечер"),  // Thursday, followed by a holiday
		holiday("2026-12-25", "Коледа"),
		holiday("2026-10-01", "Thursday off"),
	}

	got := calendar.DetectAdjacentBridgeDays(holidays, 2026)

	require.Len(t, got, 2)
	assert.Equal(t, calendar.BridgeDay{
		Date: calendar.Parse("2026-03-02"), Reason: calendar.ReasonHolidayAfter,
		RelatedHoliday: "Освобождение", DaysOff: 4,
	}, got[0])
	assert.Equal(t, calendar.BridgeDay{
		Date: calendar.Parse("2026-10-02"), Reason: calendar.ReasonHolidayBefore,
		RelatedHoliday: "Thursday off", DaysOff: 4,
	}, got[1])
}

func TestDetectAdjacentBridgeDays_ClusterConnector(t *testing.T) {
	// GIVEN: Monday and Wednesday holidays two days apart
	holidays := []calendar.Holiday{
		holiday("2026-06-01", "A"),
		holiday("2026-06-03", "B"),
	}

	got := calendar.DetectAdjacentBridgeDays(holidays, 2026)

	// THEN: the Tuesday joins Sat..Wed into one break
	require.Len(t, got, 1)
	assert.Equal(t, "2026-06-02", got[0].Date.String())
	assert.Equal(t, calendar.ReasonClusterConnector, got[0].Reason)
	assert.Equal(t, "A + B", got[0].RelatedHoliday)
	assert.Equal(t, 5, got[0].DaysOff)
}

func TestBridgeDetector(t *testing.T) {
	for _, name := range []string{"", "full-week", "adjacent"} {
		d, err := calendar.BridgeDetector(name)
		require.NoError(t, err, name)
		assert.NotNil(t, d)
	}

	_, err := calendar.BridgeDetector("greedy")
	assert.ErrorIs(t, err, calendar.ErrUnknownStrategy)
}
