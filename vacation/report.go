/*
report.go - Read-side projections for dashboards and reports

PURPOSE:
  Pure read-side consumers of balances and bookings: the per-employee
  balance report (joined with employee names, kept out of the core data
  model), the expiry-risk dashboard, and org-wide totals.

  Nothing here mutates state; derived fields are recomputed on read so the
  projections never show stale status.
*/
package vacation

import (
	"context"
	"sort"
)

// Reporter builds read-side projections.
type Reporter struct {
	Store     Store
	Directory EmployeeDirectory
	Now       func() Date
}

func NewReporter(store Store, dir EmployeeDirectory) *Reporter {
	return &Reporter{Store: store, Directory: dir, Now: Today}
}

func (r *Reporter) today() Date {
	if r.Now != nil {
		return r.Now()
	}
	return Today()
}

// =============================================================================
// BALANCE REPORT - Balances enriched with employee identity
// =============================================================================

// BalanceRow is one line of the balance report: a balance joined with the
// owner's name and code. The enrichment lives here, not on Balance.
type BalanceRow struct {
	Balance      Balance
	EmployeeName string
	EmployeeCode string

	DaysUntilExpiration int
	Alert               AlertTier
}

// BalanceReport returns every balance enriched and ordered by employee
// name, then period start.
func (r *Reporter) BalanceReport(ctx context.Context) ([]BalanceRow, error) {
	balances, err := r.Store.ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	employees, err := r.Directory.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[EmployeeID]Employee, len(employees))
	for _, e := range employees {
		byID[e.ID] = e
	}

	today := r.today()
	rows := make([]BalanceRow, 0, len(balances))
	for _, b := range balances {
		b.Recompute(today)
		emp := byID[b.EmployeeID]
		rows = append(rows, BalanceRow{
			Balance:             b,
			EmployeeName:        emp.Name,
			EmployeeCode:        emp.Code,
			DaysUntilExpiration: DaysUntilExpiration(b, today),
			Alert:               AlertTierFor(b, today),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EmployeeName != rows[j].EmployeeName {
			return rows[i].EmployeeName < rows[j].EmployeeName
		}
		return rows[i].Balance.PeriodStart.Before(rows[j].Balance.PeriodStart)
	})
	return rows, nil
}

// =============================================================================
// EXPIRY-RISK DASHBOARD
// =============================================================================

// ExpiryReport buckets at-risk balances by alert tier.
type ExpiryReport struct {
	Urgent  []BalanceRow // 30 days or fewer to the deadline
	Warning []BalanceRow // 31 to 60 days
	// Overdue lists balances past the deadline with days still remaining.
	Overdue []BalanceRow
}

// ExpiringBalances classifies every balance still holding days against
// its legal deadline.
func (r *Reporter) ExpiringBalances(ctx context.Context) (*ExpiryReport, error) {
	rows, err := r.BalanceReport(ctx)
	if err != nil {
		return nil, err
	}

	report := &ExpiryReport{}
	for _, row := range rows {
		if row.Balance.Status == StatusExpired && row.Balance.DaysRemaining > 0 {
			report.Overdue = append(report.Overdue, row)
			continue
		}
		switch row.Alert {
		case AlertUrgent:
			report.Urgent = append(report.Urgent, row)
		case AlertWarning:
			report.Warning = append(report.Warning, row)
		}
	}
	return report, nil
}

// =============================================================================
// ORG-WIDE TOTALS
// =============================================================================

// Totals aggregates the whole store for the overview dashboard.
type Totals struct {
	Balances           int
	TotalDaysRemaining int
	TotalDaysTaken     int
	TotalDaysSold      int
	ExpiringSoon       int // urgent + warning

	BookingsScheduled  int
	BookingsInProgress int
	BookingsCompleted  int
	BookingsCancelled  int
}

// OrgTotals sums remaining days and booking counts across all employees.
func (r *Reporter) OrgTotals(ctx context.Context) (*Totals, error) {
	balances, err := r.Store.ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := r.Store.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	today := r.today()
	t := &Totals{Balances: len(balances)}

	for _, b := range balances {
		b.Recompute(today)
		t.TotalDaysRemaining += b.DaysRemaining
		t.TotalDaysTaken += b.DaysTaken
		t.TotalDaysSold += b.DaysSold
		if tier := AlertTierFor(b, today); tier != AlertNone {
			t.ExpiringSoon++
		}
	}

	for _, bk := range bookings {
		switch bk.StatusAt(today) {
		case BookingScheduled:
			t.BookingsScheduled++
		case BookingInProgress:
			t.BookingsInProgress++
		case BookingCompleted:
			t.BookingsCompleted++
		case BookingCancelled:
			t.BookingsCancelled++
		}
	}
	return t, nil
}
