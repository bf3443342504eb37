/*
seed.go - Demo dataset loader

PURPOSE:
  Populates the database with a small company so the API is explorable
  out of the box: employees across two units with staggered hire dates,
  materialized acquisition periods, a booked vacation, and a day sale.

USAGE:
  Invoked by `vacationd seed` (see cmd/vacationd) or programmatically
  from tests. Resets existing data first.
*/
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ondahr/vacation-engine/vacation"
)

// Seed resets the store and loads the demo dataset.
func (h *Handler) Seed(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}

	today := vacation.Today()
	hire := func(yearsAgo int) *vacation.Date {
		d := today.AddYears(-yearsAgo).AddMonths(-2)
		return &d
	}

	employees := []vacation.Employee{
		{ID: "emp-ana", Name: "Ana Souza", Code: "E001", HireDate: hire(3),
			Active: true, UnitID: "matriz", DepartmentID: "engineering",
			MonthlySalary: decimal.NewFromInt(9000)},
		{ID: "emp-bruno", Name: "Bruno Lima", Code: "E002", HireDate: hire(2),
			Active: true, UnitID: "matriz", DepartmentID: "engineering",
			MonthlySalary: decimal.NewFromInt(7500)},
		{ID: "emp-carla", Name: "Carla Mendes", Code: "E003", HireDate: hire(1),
			Active: true, UnitID: "matriz", DepartmentID: "finance",
			MonthlySalary: decimal.NewFromInt(6800)},
		{ID: "emp-diego", Name: "Diego Ferreira", Code: "E004", HireDate: hire(4),
			Active: true, UnitID: "filial-sp", DepartmentID: "sales",
			MonthlySalary: decimal.NewFromInt(5400)},
		// Hired recently: no elapsed acquisition window yet.
		{ID: "emp-elisa", Name: "Elisa Rocha", Code: "E005",
			HireDate: func() *vacation.Date { d := today.AddMonths(-5); return &d }(),
			Active:   true, UnitID: "filial-sp", DepartmentID: "sales",
			MonthlySalary: decimal.NewFromInt(4900)},
	}

	ids := make([]vacation.EmployeeID, 0, len(employees))
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return fmt.Errorf("seeding employee %s: %w", e.ID, err)
		}
		ids = append(ids, e.ID)
	}

	created, err := h.Generator.MaterializePeriods(ctx, ids)
	if err != nil {
		return fmt.Errorf("materializing periods: %w", err)
	}
	h.Log.WithField("balances", created).Info("seeded acquisition periods")

	// Ana takes a two-week vacation from her most recent balance and
	// sells five days of it.
	balances, err := h.Store.ListBalancesByEmployee(ctx, "emp-ana")
	if err != nil {
		return fmt.Errorf("listing seeded balances: %w", err)
	}
	if len(balances) > 0 {
		// Latest period: the older ones are already past their deadline.
		latest := balances[len(balances)-1]
		start := today.AddDays(30)
		_, err := h.Scheduler.BookVacation(ctx, "emp-ana", latest.ID,
			start, start.AddDays(13), vacation.BookingOptions{CashOutDays: 5})
		if err != nil {
			return fmt.Errorf("seeding booking: %w", err)
		}
	}

	h.Log.WithField("employees", len(employees)).Info("demo dataset loaded")
	return nil
}
