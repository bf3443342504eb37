/*
scheduler.go - Booking, cancellation and collective fan-out

PURPOSE:
  Creates and cancels vacation bookings against balances, enforcing the
  day-range and balance-sufficiency rules, and expands a collective
  vacation into individual bookings across an employee scope.

STATE MACHINE:
  Scheduled -> InProgress -> Completed is a pure function of dates,
  recomputed on read (Booking.StatusAt). Cancellation is the only stored
  transition and is disallowed once a booking has completed.

ATOMICITY:
  Each booking create or cancel pairs a booking write with a
  version-guarded balance update inside one store transaction, so a crash
  cannot leave a booking without its balance effect (or vice versa).

PARTIAL SUCCESS:
  The collective fan-out books every employee it can and reports the rest
  as skipped. One employee without a qualifying balance never fails the
  whole batch.
*/
package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BookingOptions carries the optional parts of an individual booking.
type BookingOptions struct {
	// CashOutDays converts up to AnnualSellCap unused days into pay
	// alongside the booking (abono pecuniario). Shares the annual cap
	// with direct day sales on the same balance.
	CashOutDays int
}

// CollectiveResult reports the outcome of a collective fan-out.
// Partial success is expected: skipped employees are listed, not dropped.
type CollectiveResult struct {
	CollectiveID       CollectiveID
	BookedCount        int
	BookingIDs         []BookingID
	SkippedEmployeeIDs []EmployeeID
}

// CollectiveCancelResult reports a cascading cancellation.
type CollectiveCancelResult struct {
	CancelledCount int
	// CompletedKept counts bookings left untouched because they had
	// already completed by the time of the cascade.
	CompletedKept int
}

// Scheduler books and cancels vacations against balances.
type Scheduler struct {
	Store     TxStore
	Directory EmployeeDirectory
	Now       func() Date
}

func NewScheduler(store TxStore, dir EmployeeDirectory) *Scheduler {
	return &Scheduler{Store: store, Directory: dir, Now: Today}
}

func (s *Scheduler) today() Date {
	if s.Now != nil {
		return s.Now()
	}
	return Today()
}

// =============================================================================
// INDIVIDUAL BOOKING
// =============================================================================

// BookVacation creates a booking against the selected balance.
// All validation happens before the first write; on success the booking
// insert and the balance update are committed atomically.
func (s *Scheduler) BookVacation(ctx context.Context, employeeID EmployeeID, balanceID BalanceID, start, end Date, opts BookingOptions) (*Booking, error) {
	if balanceID == "" {
		return nil, ErrNoBalanceSelected
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if opts.CashOutDays < 0 {
		return nil, ErrInvalidQuantity
	}

	days := InclusiveDays(start, end)
	today := s.today()

	b, err := s.Store.GetBalance(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	if b.EmployeeID != employeeID {
		return nil, fmt.Errorf("balance %s does not belong to employee %s: %w",
			balanceID, employeeID, ErrBalanceNotFound)
	}

	// Refresh derived status so a balance past its deadline reads Expired.
	b.Recompute(today)

	if !b.Bookable() {
		return nil, fmt.Errorf("balance %s has status %s: %w", b.ID, b.Status, ErrBalanceNotBookable)
	}
	if days > b.DaysRemaining {
		return nil, &ExceedsAvailableDaysError{BalanceID: b.ID, Available: b.DaysRemaining, Requested: days}
	}
	if opts.CashOutDays > 0 {
		if b.DaysSold+opts.CashOutDays > AnnualSellCap {
			return nil, &AnnualCapError{
				BalanceID:   b.ID,
				AlreadySold: b.DaysSold,
				Requested:   opts.CashOutDays,
				Cap:         AnnualSellCap,
			}
		}
		if days+opts.CashOutDays > b.DaysRemaining {
			return nil, fmt.Errorf("%d booked plus %d cashed out exceed %d remaining on %s: %w",
				days, opts.CashOutDays, b.DaysRemaining, b.ID, ErrInsufficientBalance)
		}
	}

	bk := Booking{
		ID:          BookingID(uuid.NewString()),
		EmployeeID:  employeeID,
		BalanceID:   b.ID,
		StartDate:   start,
		EndDate:     end,
		Days:        days,
		Kind:        KindIndividual,
		CashOutDays: opts.CashOutDays,
		CreatedAt:   time.Now().UTC(),
	}

	b.DaysTaken += days
	b.DaysSold += opts.CashOutDays
	b.Recompute(today)

	err = s.Store.WithTx(ctx, func(tx Store) error {
		if err := tx.InsertBooking(ctx, bk); err != nil {
			return fmt.Errorf("inserting booking: %w", err)
		}
		if err := tx.UpdateBalance(ctx, *b); err != nil {
			return fmt.Errorf("updating balance %s: %w", b.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"booking_id":  bk.ID,
		"employee_id": employeeID,
		"days":        days,
		"cash_out":    opts.CashOutDays,
	}).Info("vacation booked")
	return &bk, nil
}

// CancelVacation cancels a scheduled or in-progress booking and restores
// its effect on the owning balance exactly once. Completed bookings are
// rejected, repeated cancellations are rejected without a second reversal.
func (s *Scheduler) CancelVacation(ctx context.Context, bookingID BookingID) (*Booking, error) {
	bk, err := s.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch bk.StatusAt(s.today()) {
	case BookingCompleted:
		return nil, ErrAlreadyCompleted
	case BookingCancelled:
		return nil, ErrAlreadyCancelled
	}

	if err := s.cancel(ctx, bk); err != nil {
		return nil, err
	}
	return bk, nil
}

// cancel reverses the booking's balance effect and marks it cancelled,
// atomically. The caller has already checked the derived status.
func (s *Scheduler) cancel(ctx context.Context, bk *Booking) error {
	today := s.today()

	return s.Store.WithTx(ctx, func(tx Store) error {
		b, err := tx.GetBalance(ctx, bk.BalanceID)
		if err != nil {
			return err
		}

		b.DaysTaken -= bk.Days
		b.DaysSold -= bk.CashOutDays
		if b.DaysTaken < 0 {
			b.DaysTaken = 0
		}
		if b.DaysSold < 0 {
			b.DaysSold = 0
		}
		b.Recompute(today)

		if err := tx.UpdateBalance(ctx, *b); err != nil {
			return fmt.Errorf("restoring balance %s: %w", b.ID, err)
		}

		now := time.Now().UTC()
		bk.Cancelled = true
		bk.CancelledAt = &now
		if err := tx.UpdateBooking(ctx, *bk); err != nil {
			return fmt.Errorf("marking booking %s cancelled: %w", bk.ID, err)
		}

		logrus.WithFields(logrus.Fields{
			"booking_id": bk.ID,
			"balance_id": b.ID,
			"days":       bk.Days,
		}).Info("vacation cancelled, balance restored")
		return nil
	})
}

// =============================================================================
// COLLECTIVE VACATION
// =============================================================================

// BookCollective expands a collective vacation into one booking per active
// employee in scope, each drawn against that employee's earliest balance
// with enough remaining days. Employees with no qualifying balance are
// skipped and reported.
func (s *Scheduler) BookCollective(ctx context.Context, title string, start, end Date, scope ScopeFilter) (*CollectiveResult, error) {
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	days := InclusiveDays(start, end)
	today := s.today()

	employees, err := s.Directory.ListActiveEmployees(ctx, scope)
	if err != nil {
		return nil, err
	}

	cv := CollectiveVacation{
		ID:        CollectiveID(uuid.NewString()),
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Scope:     scope,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.InsertCollective(ctx, cv); err != nil {
		return nil, fmt.Errorf("inserting collective vacation: %w", err)
	}

	result := &CollectiveResult{CollectiveID: cv.ID}

	for _, emp := range employees {
		b, err := s.pickBalance(ctx, emp.ID, days, today)
		if err != nil {
			return result, err
		}
		if b == nil {
			result.SkippedEmployeeIDs = append(result.SkippedEmployeeIDs, emp.ID)
			continue
		}

		bk := Booking{
			ID:           BookingID(uuid.NewString()),
			EmployeeID:   emp.ID,
			BalanceID:    b.ID,
			StartDate:    start,
			EndDate:      end,
			Days:         days,
			Kind:         KindCollective,
			CollectiveID: cv.ID,
			CreatedAt:    time.Now().UTC(),
		}

		b.DaysTaken += days
		b.Recompute(today)

		err = s.Store.WithTx(ctx, func(tx Store) error {
			if err := tx.InsertBooking(ctx, bk); err != nil {
				return err
			}
			return tx.UpdateBalance(ctx, *b)
		})
		if err != nil {
			return result, fmt.Errorf("booking collective vacation for %s: %w", emp.ID, err)
		}

		result.BookedCount++
		result.BookingIDs = append(result.BookingIDs, bk.ID)
	}

	logrus.WithFields(logrus.Fields{
		"collective_id": cv.ID,
		"booked":        result.BookedCount,
		"skipped":       len(result.SkippedEmployeeIDs),
	}).Info("collective vacation booked")
	return result, nil
}

// pickBalance selects the earliest bookable balance with enough remaining
// days, or nil when the employee has none.
func (s *Scheduler) pickBalance(ctx context.Context, employeeID EmployeeID, days int, today Date) (*Balance, error) {
	balances, err := s.Store.ListBalancesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	for i := range balances {
		b := balances[i]
		b.Recompute(today)
		if b.Bookable() && b.DaysRemaining >= days {
			return &b, nil
		}
	}
	return nil, nil
}

// CancelCollective deletes a collective vacation, cancelling every booking
// it generated and restoring each balance. Bookings that have already
// completed are left untouched and counted.
func (s *Scheduler) CancelCollective(ctx context.Context, id CollectiveID) (*CollectiveCancelResult, error) {
	if _, err := s.Store.GetCollective(ctx, id); err != nil {
		return nil, err
	}

	bookings, err := s.Store.ListBookingsByCollective(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.today()
	result := &CollectiveCancelResult{}

	for i := range bookings {
		bk := bookings[i]
		switch bk.StatusAt(today) {
		case BookingCancelled:
			continue
		case BookingCompleted:
			result.CompletedKept++
			continue
		}
		if err := s.cancel(ctx, &bk); err != nil {
			return result, err
		}
		result.CancelledCount++
	}

	if err := s.Store.DeleteCollective(ctx, id); err != nil {
		return result, fmt.Errorf("deleting collective vacation %s: %w", id, err)
	}
	return result, nil
}
