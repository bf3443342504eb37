package vacation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/vacation"
)

// =============================================================================
// DATE ARITHMETIC TESTS
// =============================================================================

func TestInclusiveDays_CountsBothEndpoints(t *testing.T) {
	start := vacation.NewDate(2024, time.July, 1)
	end := vacation.NewDate(2024, time.July, 14)

	assert.Equal(t, 14, vacation.InclusiveDays(start, end))
	assert.Equal(t, 1, vacation.InclusiveDays(start, start), "single day counts as 1")
}

func TestPeriodStartingAt_OneYearMinusOneDay(t *testing.T) {
	p := vacation.PeriodStartingAt(vacation.NewDate(2022, time.January, 10))

	assert.Equal(t, "2022-01-10", p.Start.String())
	assert.Equal(t, "2023-01-09", p.End.String())
}

func TestPeriodStartingAt_LeapDayHire(t *testing.T) {
	// Feb 29 + 1 year normalizes to Mar 1, so the window ends Feb 28.
	p := vacation.PeriodStartingAt(vacation.NewDate(2024, time.February, 29))

	assert.Equal(t, "2025-02-28", p.End.String())
}

func TestDate_AddMonths_ClampsMonthEndOverflow(t *testing.T) {
	// May 31 + 11 months: April has 30 days.
	assert.Equal(t, "2025-04-30", vacation.NewDate(2024, time.May, 31).AddMonths(11).String())
	// Mar 31 + 11 months: February clamps to 28 (or 29 in a leap year).
	assert.Equal(t, "2025-02-28", vacation.NewDate(2024, time.March, 31).AddMonths(11).String())
	assert.Equal(t, "2024-02-29", vacation.NewDate(2023, time.March, 31).AddMonths(11).String())
	// No overflow, no clamp.
	assert.Equal(t, "2025-01-15", vacation.NewDate(2024, time.February, 15).AddMonths(11).String())
	// Negative direction clamps the same way.
	assert.Equal(t, "2024-02-29", vacation.NewDate(2024, time.March, 31).AddMonths(-1).String())
}

// =============================================================================
// BALANCE STATUS TESTS
// =============================================================================

func TestNewBalance_Defaults(t *testing.T) {
	asOf := vacation.NewDate(2024, time.March, 1)
	p := vacation.PeriodStartingAt(vacation.NewDate(2023, time.January, 10))

	b := vacation.NewBalance("bal-1", "emp-1", p, asOf)

	assert.Equal(t, vacation.DefaultEntitlement, b.DaysEntitled)
	assert.Equal(t, 30, b.DaysRemaining)
	assert.Equal(t, "2024-12-09", b.ExpirationDate.String(), "period end + 11 months")
	assert.Equal(t, vacation.StatusAvailable, b.Status)
}

func TestNewBalance_MonthEndExpirationClamps(t *testing.T) {
	asOf := vacation.NewDate(2024, time.June, 1)

	// Hired Jun 1: the period ends May 31 and the deadline is the last
	// day of April, not May 1.
	p := vacation.PeriodStartingAt(vacation.NewDate(2023, time.June, 1))
	require.Equal(t, "2024-05-31", p.End.String())
	b := vacation.NewBalance("bal-1", "emp-1", p, asOf)
	assert.Equal(t, "2025-04-30", b.ExpirationDate.String())

	// Hired Apr 1: the period ends Mar 31 and the deadline falls in
	// February, clamped to its last day.
	p = vacation.PeriodStartingAt(vacation.NewDate(2023, time.April, 1))
	require.Equal(t, "2024-03-31", p.End.String())
	b = vacation.NewBalance("bal-2", "emp-1", p, asOf)
	assert.Equal(t, "2025-02-28", b.ExpirationDate.String())
}

func TestBalance_Recompute_StatusTransitions(t *testing.T) {
	asOf := vacation.NewDate(2024, time.March, 1)
	p := vacation.PeriodStartingAt(vacation.NewDate(2023, time.January, 10))

	b := vacation.NewBalance("bal-1", "emp-1", p, asOf)

	// Partial consumption
	b.DaysTaken = 10
	b.Recompute(asOf)
	assert.Equal(t, 20, b.DaysRemaining)
	assert.Equal(t, vacation.StatusPartial, b.Status)

	// Fully consumed via taken + sold
	b.DaysTaken = 20
	b.DaysSold = 10
	b.Recompute(asOf)
	assert.Equal(t, 0, b.DaysRemaining)
	assert.Equal(t, vacation.StatusTaken, b.Status)
	assert.False(t, b.Bookable())
}

func TestBalance_Recompute_ExpiredPastDeadline(t *testing.T) {
	p := vacation.PeriodStartingAt(vacation.NewDate(2022, time.January, 10))
	b := vacation.NewBalance("bal-1", "emp-1", p, vacation.NewDate(2023, time.June, 1))
	require.Equal(t, "2023-12-09", b.ExpirationDate.String())

	b.Recompute(vacation.NewDate(2023, time.December, 10))

	assert.Equal(t, vacation.StatusExpired, b.Status)
	assert.False(t, b.Bookable())
	assert.Equal(t, 30, b.DaysRemaining, "expiry freezes, never zeroes, the days")
}

func TestBalance_Recompute_FullyTakenBeatsExpired(t *testing.T) {
	// A consumed balance stays "taken" even past its deadline.
	p := vacation.PeriodStartingAt(vacation.NewDate(2022, time.January, 10))
	b := vacation.NewBalance("bal-1", "emp-1", p, vacation.NewDate(2022, time.June, 1))
	b.DaysTaken = 30

	b.Recompute(vacation.NewDate(2024, time.June, 1))

	assert.Equal(t, vacation.StatusTaken, b.Status)
}

// =============================================================================
// BOOKING STATUS DERIVATION TESTS
// =============================================================================

func TestBooking_StatusAt_DerivedFromDates(t *testing.T) {
	bk := vacation.Booking{
		StartDate: vacation.NewDate(2024, time.July, 1),
		EndDate:   vacation.NewDate(2024, time.July, 14),
	}

	assert.Equal(t, vacation.BookingScheduled, bk.StatusAt(vacation.NewDate(2024, time.June, 30)))
	assert.Equal(t, vacation.BookingInProgress, bk.StatusAt(vacation.NewDate(2024, time.July, 1)))
	assert.Equal(t, vacation.BookingInProgress, bk.StatusAt(vacation.NewDate(2024, time.July, 14)))
	assert.Equal(t, vacation.BookingCompleted, bk.StatusAt(vacation.NewDate(2024, time.July, 15)))
}

func TestBooking_StatusAt_CancelledWinsOverDates(t *testing.T) {
	now := time.Now()
	bk := vacation.Booking{
		StartDate:   vacation.NewDate(2024, time.July, 1),
		EndDate:     vacation.NewDate(2024, time.July, 14),
		Cancelled:   true,
		CancelledAt: &now,
	}

	assert.Equal(t, vacation.BookingCancelled, bk.StatusAt(vacation.NewDate(2024, time.July, 5)))
}

// =============================================================================
// SCOPE FILTER TESTS
// =============================================================================

func TestScopeFilter_Matches(t *testing.T) {
	e := vacation.Employee{UnitID: "matriz", DepartmentID: "engineering"}

	assert.True(t, vacation.ScopeFilter{}.Matches(e), "empty filter matches everyone")
	assert.True(t, vacation.ScopeFilter{UnitID: "matriz"}.Matches(e))
	assert.False(t, vacation.ScopeFilter{UnitID: "filial-sp"}.Matches(e))
	assert.False(t, vacation.ScopeFilter{UnitID: "matriz", DepartmentID: "sales"}.Matches(e))
}
