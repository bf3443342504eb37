package vacation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ondahr/vacation-engine/vacation"
	"github.com/ondahr/vacation-engine/vacation/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestGenerator(today vacation.Date) (*vacation.Generator, *store.Memory) {
	mem := store.NewMemory()
	gen := vacation.NewGenerator(mem, mem)
	gen.Now = func() vacation.Date { return today }
	return gen, mem
}

func hiredEmployee(id vacation.EmployeeID, name string, hire vacation.Date) vacation.Employee {
	return vacation.Employee{
		ID:            id,
		Name:          name,
		HireDate:      &hire,
		Active:        true,
		MonthlySalary: decimal.NewFromInt(6000),
	}
}

// =============================================================================
// PERIOD DERIVATION TESTS
// =============================================================================

func TestGenerator_ListMissingPeriods_TwoElapsedWindows(t *testing.T) {
	// GIVEN: Employee hired 2022-01-10, today is 2024-03-01
	// WHEN: Listing missing acquisition periods
	// THEN: Exactly the two fully elapsed windows are returned;
	//       the window still in progress is not

	today := vacation.NewDate(2024, time.March, 1)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2022, time.January, 10)))

	missing, err := gen.ListMissingPeriods(context.Background(), "emp-1")
	require.NoError(t, err)

	require.Len(t, missing, 2)
	assert.Equal(t, "2022-01-10", missing[0].Start.String())
	assert.Equal(t, "2023-01-09", missing[0].End.String())
	assert.Equal(t, "2023-01-10", missing[1].Start.String())
	assert.Equal(t, "2024-01-09", missing[1].End.String())
}

func TestGenerator_ListMissingPeriods_FirstAnniversaryNotReached(t *testing.T) {
	// GIVEN: Employee hired five months ago
	// WHEN: Listing missing periods
	// THEN: Nothing - the first window has not elapsed

	today := vacation.NewDate(2024, time.March, 1)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2023, time.October, 1)))

	missing, err := gen.ListMissingPeriods(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGenerator_ListMissingPeriods_WindowEndingTodayCounts(t *testing.T) {
	// The window is complete on its final day, not the day after.
	today := vacation.NewDate(2024, time.January, 9)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2023, time.January, 10)))

	missing, err := gen.ListMissingPeriods(context.Background(), "emp-1")
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "2024-01-09", missing[0].End.String())
}

func TestGenerator_ListMissingPeriods_NoHireDate(t *testing.T) {
	// An employee without a hire date is ineligible, not an error.
	gen, mem := newTestGenerator(vacation.NewDate(2024, time.March, 1))
	mem.PutEmployee(vacation.Employee{ID: "emp-1", Name: "Ana", Active: true})

	missing, err := gen.ListMissingPeriods(context.Background(), "emp-1")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestGenerator_ListMissingPeriods_UnknownEmployee(t *testing.T) {
	gen, _ := newTestGenerator(vacation.NewDate(2024, time.March, 1))

	_, err := gen.ListMissingPeriods(context.Background(), "nobody")
	assert.ErrorIs(t, err, vacation.ErrEmployeeNotFound)
}

// =============================================================================
// MATERIALIZATION TESTS
// =============================================================================

func TestGenerator_MaterializePeriods_CreatesBalances(t *testing.T) {
	// GIVEN: Employee with two elapsed windows
	// WHEN: Materializing
	// THEN: Two balances exist, each with the statutory defaults

	today := vacation.NewDate(2024, time.March, 1)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2022, time.January, 10)))
	ctx := context.Background()

	created, err := gen.MaterializePeriods(ctx, []vacation.EmployeeID{"emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	balances, err := mem.ListBalancesByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, balances, 2)

	first := balances[0]
	assert.Equal(t, vacation.DefaultEntitlement, first.DaysEntitled)
	assert.Equal(t, 30, first.DaysRemaining)
	assert.Equal(t, "2023-12-09", first.ExpirationDate.String())
	assert.Equal(t, vacation.StatusExpired, first.Status,
		"older window is already past its deadline as of 2024-03-01")

	second := balances[1]
	assert.Equal(t, "2024-12-09", second.ExpirationDate.String())
	assert.Equal(t, vacation.StatusAvailable, second.Status)
}

func TestGenerator_MaterializePeriods_Idempotent(t *testing.T) {
	// GIVEN: Periods already materialized
	// WHEN: Materializing again
	// THEN: Nothing is created and nothing fails

	today := vacation.NewDate(2024, time.March, 1)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2022, time.January, 10)))
	ctx := context.Background()

	first, err := gen.MaterializePeriods(ctx, []vacation.EmployeeID{"emp-1"})
	require.NoError(t, err)
	require.Equal(t, 2, first)

	second, err := gen.MaterializePeriods(ctx, []vacation.EmployeeID{"emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	balances, err := mem.ListBalancesByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, balances, 2, "no duplicate balances")
}

func TestGenerator_MaterializePeriods_NewWindowAfterAnniversary(t *testing.T) {
	// A later sweep picks up only the newly elapsed window.
	gen, mem := newTestGenerator(vacation.NewDate(2024, time.March, 1))
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2022, time.January, 10)))
	ctx := context.Background()

	_, err := gen.MaterializePeriods(ctx, []vacation.EmployeeID{"emp-1"})
	require.NoError(t, err)

	// Clock advances past the third anniversary.
	gen.Now = func() vacation.Date { return vacation.NewDate(2025, time.February, 1) }

	created, err := gen.MaterializePeriods(ctx, []vacation.EmployeeID{"emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

// =============================================================================
// ELIGIBILITY SWEEP TESTS
// =============================================================================

func TestGenerator_ListEligible_FiltersIneligible(t *testing.T) {
	// GIVEN: One employee with missing periods, one too recent, one
	//        without a hire date
	// WHEN: Sweeping
	// THEN: Only the first appears

	today := vacation.NewDate(2024, time.March, 1)
	gen, mem := newTestGenerator(today)
	mem.PutEmployee(hiredEmployee("emp-1", "Ana", vacation.NewDate(2022, time.January, 10)))
	mem.PutEmployee(hiredEmployee("emp-2", "Bruno", vacation.NewDate(2023, time.December, 1)))
	mem.PutEmployee(vacation.Employee{ID: "emp-3", Name: "Carla", Active: true})

	eligible, err := gen.ListEligible(context.Background())
	require.NoError(t, err)

	require.Len(t, eligible, 1)
	assert.Equal(t, vacation.EmployeeID("emp-1"), eligible[0].Employee.ID)
	assert.Len(t, eligible[0].MissingPeriods, 2)
}
