/*
Package vacation implements the vacation-balance lifecycle engine.

PURPOSE:
  This package contains the domain types and algorithms for CLT-style
  vacation management: acquisition periods accrued from hire date, balance
  consumption via bookings and day sales, expiration windows, and the
  collective-vacation fan-out.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar-day point in time (all engine arithmetic is day-based)
  - Balance: One acquisition period's entitled/taken/sold/remaining days
  - Booking: A discrete vacation reservation drawn against one Balance
  - CollectiveVacation: A bulk scheduling action expanded into bookings

DESIGN PRINCIPLES:
  1. Derived state: DaysRemaining and Status are recomputed from the fields
     they derive from, never maintained independently
  2. Check-then-act: every validation happens before the first write
  3. Optimistic locking: Balance carries a Version checked on every update

SEE ALSO:
  - generator.go: Acquisition-period derivation and materialization
  - ledger.go: Balance mutations (sell, adjust) and expiry queries
  - scheduler.go: Booking, cancellation, collective fan-out
*/
package vacation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Calendar-day time point
// =============================================================================

// Date is a point in time at day granularity, always UTC midnight.
// All period and booking arithmetic in this engine is whole-day arithmetic.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// AddMonths clamps month-end overflow instead of normalizing: May 31 plus
// eleven months is Apr 30, not May 1, and Mar 31 plus eleven months is
// Feb 28 (or 29), not Mar 3. Statutory deadlines run to the last day of
// the target month, so time.AddDate's rollover would extend them.
func (d Date) AddMonths(n int) Date {
	year, month, day := d.Time.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysBetween returns the signed number of days from 'from' to 'to'.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// InclusiveDays returns the day count of [start, end], both ends included.
// A one-day booking (start == end) counts as 1.
func InclusiveDays(start, end Date) int {
	return DaysBetween(start, end) + 1
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type BalanceID string
type BookingID string
type CollectiveID string

// =============================================================================
// EMPLOYEE - External directory contract
// =============================================================================

// Employee is the slice of the employee directory this engine depends on.
// The directory itself is owned elsewhere; the engine only reads it.
type Employee struct {
	ID           EmployeeID
	Name         string
	Code         string
	HireDate     *Date // nil = not eligible for period generation
	Active       bool
	UnitID       string
	DepartmentID string

	// MonthlySalary feeds the cash-out valuation. Zero means unknown.
	MonthlySalary decimal.Decimal
}

// ScopeFilter narrows an employee set by unit and/or department.
// Empty fields match everything.
type ScopeFilter struct {
	UnitID       string
	DepartmentID string
}

// Matches reports whether an employee falls inside the scope.
func (f ScopeFilter) Matches(e Employee) bool {
	if f.UnitID != "" && e.UnitID != f.UnitID {
		return false
	}
	if f.DepartmentID != "" && e.DepartmentID != f.DepartmentID {
		return false
	}
	return true
}

// =============================================================================
// PERIOD - A 12-month acquisition window
// =============================================================================

// Period is one acquisition window: [Start, End] with End = Start + 1y - 1d.
type Period struct {
	Start Date
	End   Date
}

// PeriodStartingAt builds the canonical 12-month window for a start date.
func PeriodStartingAt(start Date) Period {
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

func (p Period) String() string {
	return "[" + p.Start.String() + ".." + p.End.String() + "]"
}

// =============================================================================
// BALANCE - One acquisition period's day ledger
// =============================================================================

const (
	// DefaultEntitlement is the statutory 30 days per acquisition period.
	DefaultEntitlement = 30

	// AnnualSellCap is the legal maximum of days sold per period,
	// shared between direct sales and booking cash-outs.
	AnnualSellCap = 10

	// ExpirationMonths is added to the period end to obtain the legal
	// use-it-or-lose-it deadline (the concession period).
	ExpirationMonths = 11
)

type BalanceStatus string

const (
	StatusAvailable BalanceStatus = "available"
	StatusPartial   BalanceStatus = "partial"
	StatusTaken     BalanceStatus = "taken"
	StatusExpired   BalanceStatus = "expired"
)

// Balance tracks entitled/taken/sold/remaining days for one acquisition
// period. DaysRemaining, ExpirationDate and Status are derived; call
// Recompute after any mutation of the source fields.
type Balance struct {
	ID          BalanceID
	EmployeeID  EmployeeID
	PeriodStart Date
	PeriodEnd   Date

	DaysEntitled  int
	DaysTaken     int
	DaysSold      int
	DaysRemaining int

	ExpirationDate Date
	Status         BalanceStatus

	// Version backs optimistic locking on balance updates.
	Version   int
	CreatedAt time.Time
}

// NewBalance materializes a fresh balance for an acquisition window.
func NewBalance(id BalanceID, employeeID EmployeeID, p Period, asOf Date) Balance {
	b := Balance{
		ID:           id,
		EmployeeID:   employeeID,
		PeriodStart:  p.Start,
		PeriodEnd:    p.End,
		DaysEntitled: DefaultEntitlement,
	}
	b.Recompute(asOf)
	return b
}

// Recompute refreshes all derived fields from the source fields.
// It is a pure function of the balance and the as-of date.
func (b *Balance) Recompute(asOf Date) {
	remaining := b.DaysEntitled - b.DaysTaken - b.DaysSold
	if remaining < 0 {
		remaining = 0
	}
	b.DaysRemaining = remaining
	b.ExpirationDate = b.PeriodEnd.AddMonths(ExpirationMonths)

	switch {
	case remaining == 0 && b.DaysEntitled > 0:
		b.Status = StatusTaken
	case asOf.After(b.ExpirationDate):
		b.Status = StatusExpired
	case b.DaysTaken > 0 || b.DaysSold > 0:
		b.Status = StatusPartial
	default:
		b.Status = StatusAvailable
	}
}

// Bookable reports whether new consumption may be drawn from the balance.
func (b Balance) Bookable() bool {
	return b.Status == StatusAvailable || b.Status == StatusPartial
}

// =============================================================================
// BOOKING - A discrete vacation reservation
// =============================================================================

type BookingKind string

const (
	KindIndividual BookingKind = "individual"
	KindCollective BookingKind = "collective"
)

type BookingStatus string

const (
	BookingScheduled  BookingStatus = "scheduled"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Booking is a vacation reservation against exactly one balance.
// Days is fixed at creation and never recomputed, even if the owning
// balance's entitlement is edited afterward.
type Booking struct {
	ID         BookingID
	EmployeeID EmployeeID
	BalanceID  BalanceID

	StartDate Date
	EndDate   Date
	Days      int

	Kind        BookingKind
	CashOutDays int

	// CollectiveID links bookings produced by a collective fan-out.
	CollectiveID CollectiveID

	Cancelled   bool
	CancelledAt *time.Time
	CreatedAt   time.Time
}

// StatusAt derives the booking status from its date range. The time-based
// states are never stored; only cancellation is an explicit transition.
func (bk Booking) StatusAt(today Date) BookingStatus {
	switch {
	case bk.Cancelled:
		return BookingCancelled
	case today.Before(bk.StartDate):
		return BookingScheduled
	case today.After(bk.EndDate):
		return BookingCompleted
	default:
		return BookingInProgress
	}
}

// =============================================================================
// COLLECTIVE VACATION - Bulk scheduling action
// =============================================================================

// CollectiveVacation records a single bulk scheduling action. The bookings
// it fanned out reference it via Booking.CollectiveID.
type CollectiveVacation struct {
	ID        CollectiveID
	Title     string
	StartDate Date
	EndDate   Date
	Days      int
	Scope     ScopeFilter
	CreatedAt time.Time
}
