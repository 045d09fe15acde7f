package vacation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pochivni/planner/calendar"
	"github.com/pochivni/planner/vacation"
)

func TestDefault(t *testing.T) {
	d := vacation.Default()
	assert.Equal(t, 1, d.Version)
	assert.Equal(t, 20, d.TotalDays)
	assert.NotNil(t, d.VacationDates)
	assert.Empty(t, d.VacationDates)
}

func TestToggle_IsItsOwnInverse(t *testing.T) {
	base := record(20, "2026-05-04", "2026-05-05")

	for _, day := range []string{"2026-05-04", "2026-07-01"} {
		t.Run(day, func(t *testing.T) {
			once, err := vacation.Toggle(base, calendar.Parse(day))
			require.NoError(t, err)
			twice, err := vacation.Toggle(once, calendar.Parse(day))
			require.NoError(t, err)

			assert.Equal(t, base, twice)
		})
	}
}

func TestToggle_NeverDuplicatesOrMutatesInput(t *testing.T) {
	base := record(20, "2026-05-04")

	got, err := vacation.Toggle(base, calendar.Parse("2026-05-01"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-05-01", "2026-05-04"}, got.VacationDates)
	assert.Equal(t, []string{"2026-05-04"}, base.VacationDates)
}

func TestToggle_InvalidDay(t *testing.T) {
	_, err := vacation.Toggle(vacation.Default(), calendar.Parse("2026-02-30"))
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
	assert.True(t, vacation.IsClientError(err))
}

func TestApplyRange_OrderIndependent(t *testing.T) {
	a, b := calendar.Parse("2026-03-10"), calendar.Parse("2026-03-12")

	forward, err := vacation.ApplyRange(vacation.Default(), a, b)
	require.NoError(t, err)
	backward, err := vacation.ApplyRange(vacation.Default(), b, a)
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12"}, forward.VacationDates)
	assert.Equal(t, forward, backward)
}

func TestApplyRange_EndOfCalendar(t *testing.T) {
	got, err := vacation.ApplyRange(vacation.Default(), calendar.Parse("9999-12-31"), calendar.Parse("9999-12-30"))

	require.NoError(t, err)
	assert.Equal(t, []string{"9999-12-30", "9999-12-31"}, got.VacationDates)
}

func TestApplyRange_UnionWithExisting(t *testing.T) {
	base := record(20, "2026-03-11", "2026-04-01")

	got, err := vacation.ApplyRange(base, calendar.Parse("2026-03-12"), calendar.Parse("2026-03-10"))
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-03-10", "2026-03-11", "2026-03-12", "2026-04-01"}, got.VacationDates)
}

func TestApplyRange_SingleDayIsNoOp(t *testing.T) {
	base := vacation.Default()
	day := calendar.Parse("2026-03-10")

	got, err := vacation.ApplyRange(base, day, day)
	require.NoError(t, err)
	assert.Empty(t, got.VacationDates)
}

func TestSetEntitlement(t *testing.T) {
	base := record(20, "2026-03-10", "2026-03-11", "2026-03-12")

	t.Run("accepts a total at or above used days", func(t *testing.T) {
		got, err := vacation.SetEntitlement(base, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, got.TotalDays)
	})

	t.Run("rejects below one", func(t *testing.T) {
		got, err := vacation.SetEntitlement(vacation.Default(), 0)
		assert.ErrorIs(t, err, vacation.ErrEntitlementTooLow)
		assert.Equal(t, 20, got.TotalDays)
	})

	t.Run("rejects below used days", func(t *testing.T) {
		got, err := vacation.SetEntitlement(base, 2)
		require.ErrorIs(t, err, vacation.ErrEntitlementBelowUsed)

		var entErr *vacation.EntitlementError
		require.ErrorAs(t, err, &entErr)
		assert.Equal(t, 2, entErr.Requested)
		assert.Equal(t, 3, entErr.Used)
		assert.Equal(t, base, got)
	})
}

func TestNormalize(t *testing.T) {
	got := vacation.Normalize(vacation.Data{VacationDates: []string{"2026-06-01", "bogus", "2026-05-01", "2026-06-01"}})

	assert.Equal(t, vacation.Data{Version: 1, TotalDays: 20, VacationDates: []string{"2026-05-01", "2026-06-01"}}, got)
}

func TestEqual_IgnoresOrder(t *testing.T) {
	a := record(20, "2026-05-01", "2026-06-01")
	b := record(20, "2026-06-01", "2026-05-01")

	assert.True(t, vacation.Equal(a, b))
	assert.False(t, vacation.Equal(a, record(21, "2026-05-01", "2026-06-01")))
	assert.False(t, vacation.Equal(a, record(20, "2026-05-01")))
}

func TestInYear(t *testing.T) {
	d := record(20, "2025-12-31", "2026-01-02")
	assert.Equal(t, []string{"2026-01-02"}, d.InYear(2026).VacationDates)
}
