package vacation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/vacation"
	"github.com/ondahr/vacation-engine/vacation/store"
)

func newTestReporter(today vacation.Date) (*vacation.Reporter, *store.Memory) {
	mem := store.NewMemory()
	rep := vacation.NewReporter(mem, mem)
	rep.Now = func() vacation.Date { return today }
	return rep, mem
}

func TestReporter_BalanceReport_JoinsAndOrders(t *testing.T) {
	// GIVEN: Two employees, Bruno listed before Ana in insert order
	// WHEN: Building the report
	// THEN: Rows come back ordered by name, then period start,
	//       enriched with employee identity and alert tier

	today := vacation.NewDate(2024, time.March, 1)
	rep, mem := newTestReporter(today)
	ctx := context.Background()

	hire := vacation.NewDate(2022, time.June, 1)
	mem.PutEmployee(vacation.Employee{ID: "emp-b", Name: "Bruno", Code: "E002", HireDate: &hire, Active: true})
	mem.PutEmployee(vacation.Employee{ID: "emp-a", Name: "Ana", Code: "E001", HireDate: &hire, Active: true})

	for _, seed := range []struct {
		id    vacation.BalanceID
		emp   vacation.EmployeeID
		start vacation.Date
	}{
		{"bal-b1", "emp-b", vacation.NewDate(2022, time.June, 1)},
		{"bal-a2", "emp-a", vacation.NewDate(2023, time.June, 1)},
		{"bal-a1", "emp-a", vacation.NewDate(2022, time.June, 1)},
	} {
		b := vacation.NewBalance(seed.id, seed.emp, vacation.PeriodStartingAt(seed.start), today)
		require.NoError(t, mem.InsertBalance(ctx, b))
	}

	rows, err := rep.BalanceReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Ana", rows[0].EmployeeName)
	assert.Equal(t, vacation.BalanceID("bal-a1"), rows[0].Balance.ID)
	assert.Equal(t, vacation.BalanceID("bal-a2"), rows[1].Balance.ID)
	assert.Equal(t, "Bruno", rows[2].EmployeeName)
	assert.Equal(t, "E002", rows[2].EmployeeCode)

	// 2022 periods ended 2023-05-31, deadline 2024-04-30: 60 days out.
	assert.Equal(t, 60, rows[0].DaysUntilExpiration)
	assert.Equal(t, vacation.AlertWarning, rows[0].Alert)
}

func TestReporter_ExpiringBalances_Buckets(t *testing.T) {
	// GIVEN: One urgent, one warning, one overdue and one safe balance
	// WHEN: Building the expiry report
	// THEN: Each lands in its bucket; the safe one in none

	today := vacation.NewDate(2024, time.March, 1)
	rep, mem := newTestReporter(today)
	ctx := context.Background()

	mem.PutEmployee(vacation.Employee{ID: "emp-1", Name: "Ana", Active: true})

	seeds := []struct {
		id    vacation.BalanceID
		start vacation.Date
	}{
		{"bal-urgent", vacation.NewDate(2022, time.April, 20)},  // deadline 2024-03-19
		{"bal-warning", vacation.NewDate(2022, time.June, 1)},   // deadline 2024-04-30
		{"bal-overdue", vacation.NewDate(2022, time.January, 1)}, // deadline 2023-11-30
		{"bal-safe", vacation.NewDate(2023, time.June, 1)},      // deadline 2025-04-30
	}
	for _, seed := range seeds {
		b := vacation.NewBalance(seed.id, "emp-1", vacation.PeriodStartingAt(seed.start), today)
		require.NoError(t, mem.InsertBalance(ctx, b))
	}

	report, err := rep.ExpiringBalances(ctx)
	require.NoError(t, err)

	require.Len(t, report.Urgent, 1)
	assert.Equal(t, vacation.BalanceID("bal-urgent"), report.Urgent[0].Balance.ID)
	require.Len(t, report.Warning, 1)
	assert.Equal(t, vacation.BalanceID("bal-warning"), report.Warning[0].Balance.ID)
	require.Len(t, report.Overdue, 1)
	assert.Equal(t, vacation.BalanceID("bal-overdue"), report.Overdue[0].Balance.ID)
}

func TestReporter_OrgTotals(t *testing.T) {
	// GIVEN: Two balances with mixed consumption and three bookings in
	//        different derived states
	// WHEN: Computing totals
	// THEN: Day sums and status counts match

	today := vacation.NewDate(2024, time.March, 1)
	rep, mem := newTestReporter(today)
	ctx := context.Background()

	hire := vacation.NewDate(2023, time.June, 1)
	mem.PutEmployee(vacation.Employee{ID: "emp-1", Name: "Ana", HireDate: &hire, Active: true})

	b1 := vacation.NewBalance("bal-1", "emp-1",
		vacation.PeriodStartingAt(vacation.NewDate(2023, time.June, 1)), today)
	b1.DaysTaken = 10
	b1.DaysSold = 5
	b1.Recompute(today)
	b2 := vacation.NewBalance("bal-2", "emp-1",
		vacation.PeriodStartingAt(vacation.NewDate(2022, time.June, 1)), today)
	require.NoError(t, mem.InsertBalance(ctx, b1))
	require.NoError(t, mem.InsertBalance(ctx, b2))

	bookings := []vacation.Booking{
		{ID: "bk-sched", EmployeeID: "emp-1", BalanceID: "bal-1",
			StartDate: vacation.NewDate(2024, time.July, 1), EndDate: vacation.NewDate(2024, time.July, 5), Days: 5},
		{ID: "bk-done", EmployeeID: "emp-1", BalanceID: "bal-1",
			StartDate: vacation.NewDate(2024, time.January, 1), EndDate: vacation.NewDate(2024, time.January, 5), Days: 5},
		{ID: "bk-cancelled", EmployeeID: "emp-1", BalanceID: "bal-1",
			StartDate: vacation.NewDate(2024, time.July, 1), EndDate: vacation.NewDate(2024, time.July, 5), Days: 5,
			Cancelled: true},
	}
	for _, bk := range bookings {
		require.NoError(t, mem.InsertBooking(ctx, bk))
	}

	totals, err := rep.OrgTotals(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, totals.Balances)
	assert.Equal(t, 15+30, totals.TotalDaysRemaining)
	assert.Equal(t, 10, totals.TotalDaysTaken)
	assert.Equal(t, 5, totals.TotalDaysSold)
	assert.Equal(t, 1, totals.ExpiringSoon, "the 2022 balance is inside the warning window")

	assert.Equal(t, 1, totals.BookingsScheduled)
	assert.Equal(t, 1, totals.BookingsCompleted)
	assert.Equal(t, 1, totals.BookingsCancelled)
	assert.Equal(t, 0, totals.BookingsInProgress)
}
