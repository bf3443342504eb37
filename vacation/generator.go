/*
generator.go - Acquisition-period derivation and materialization

PURPOSE:
  Derives the 12-month acquisition windows owed to an employee since their
  hire date, reports which windows have no balance record yet, and
  materializes missing balances on demand.

ALGORITHM:
  Starting at the hire date, advance a cursor one year at a time. Each
  window is [cursor, cursor+1y-1d]. A window is owed once its end has
  elapsed; the still-running window is never materialized.

IDEMPOTENCY:
  MaterializePeriods re-derives missing windows at execution time (a stale
  list from an earlier ListMissingPeriods is never trusted) and the store
  enforces uniqueness on (employee, periodStart), so re-running creates no
  duplicates even under concurrent generation.
*/
package vacation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Generator derives and materializes acquisition periods.
type Generator struct {
	Store     TxStore
	Directory EmployeeDirectory

	// Now is the clock used to decide which windows have elapsed.
	// Defaults to Today; tests pin it.
	Now func() Date
}

func NewGenerator(store TxStore, dir EmployeeDirectory) *Generator {
	return &Generator{Store: store, Directory: dir, Now: Today}
}

func (g *Generator) today() Date {
	if g.Now != nil {
		return g.Now()
	}
	return Today()
}

// elapsedWindows enumerates every acquisition window from the hire date
// whose end has already passed as of today. Pure function.
func elapsedWindows(hireDate, today Date) []Period {
	var windows []Period
	cursor := hireDate
	for {
		p := PeriodStartingAt(cursor)
		if p.End.After(today) {
			break
		}
		windows = append(windows, p)
		cursor = cursor.AddYears(1)
	}
	return windows
}

// ListMissingPeriods returns, in chronological order, the elapsed windows
// for which the employee has no balance record. An employee without a hire
// date is not an error: they are simply ineligible (empty result).
func (g *Generator) ListMissingPeriods(ctx context.Context, employeeID EmployeeID) ([]Period, error) {
	emp, err := g.Directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp.HireDate == nil {
		logrus.WithField("employee_id", employeeID).
			Info("skipping period generation: employee has no hire date")
		return nil, nil
	}

	balances, err := g.Store.ListBalancesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("listing balances for %s: %w", employeeID, err)
	}

	existing := make(map[string]bool, len(balances))
	for _, b := range balances {
		existing[b.PeriodStart.String()] = true
	}

	var missing []Period
	for _, w := range elapsedWindows(*emp.HireDate, g.today()) {
		if !existing[w.Start.String()] {
			missing = append(missing, w)
		}
	}
	return missing, nil
}

// EligibleEmployee pairs an employee with their missing windows.
type EligibleEmployee struct {
	Employee       Employee
	MissingPeriods []Period
}

// ListEligible sweeps all active employees and returns the ones with at
// least one missing acquisition period. Employees without a hire date or
// with nothing missing are excluded.
func (g *Generator) ListEligible(ctx context.Context) ([]EligibleEmployee, error) {
	employees, err := g.Directory.ListActiveEmployees(ctx, ScopeFilter{})
	if err != nil {
		return nil, err
	}

	var eligible []EligibleEmployee
	for _, emp := range employees {
		missing, err := g.ListMissingPeriods(ctx, emp.ID)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			eligible = append(eligible, EligibleEmployee{Employee: emp, MissingPeriods: missing})
		}
	}
	return eligible, nil
}

// MaterializePeriods creates one balance per missing window for each given
// employee and returns the number of balances created. Safe to call
// repeatedly: windows are re-derived here and the (employee, periodStart)
// uniqueness check makes duplicate inserts a no-op rather than a failure.
func (g *Generator) MaterializePeriods(ctx context.Context, employeeIDs []EmployeeID) (int, error) {
	today := g.today()
	created := 0

	for _, id := range employeeIDs {
		missing, err := g.ListMissingPeriods(ctx, id)
		if err != nil {
			return created, err
		}

		for _, w := range missing {
			b := NewBalance(BalanceID(uuid.NewString()), id, w, today)
			if err := g.Store.InsertBalance(ctx, b); err != nil {
				if errors.Is(err, ErrDuplicatePeriod) {
					// Concurrent generation won the race; nothing to do.
					continue
				}
				return created, fmt.Errorf("materializing period %s for %s: %w", w, id, err)
			}
			logrus.WithFields(logrus.Fields{
				"employee_id":  id,
				"period_start": w.Start.String(),
				"period_end":   w.End.String(),
			}).Info("acquisition period materialized")
			created++
		}
	}
	return created, nil
}
