/*
errors.go - Centralized error types for the vacation engine

PURPOSE:
  All engine errors in one place. Validation and business-rule rejections
  happen before any write (check-then-act), so a returned error always
  means the stored state is unchanged.

ERROR CATEGORIES:
  1. Validation errors  - malformed input, rejected before any read
  2. Business rules     - balance sufficiency, annual cap, state machine
  3. Conflict errors    - optimistic-lock failures, duplicate periods
  4. Not-found errors   - missing referenced records

USAGE:
  Structured errors wrap sentinels, so callers can branch with errors.Is
  and still render a specific message:

    var capErr *vacation.AnnualCapError
    if errors.As(err, &capErr) {
        // capErr.AlreadySold, capErr.Requested available for the message
    }
*/
package vacation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when a range ends before it starts.
	ErrInvalidDateRange = errors.New("invalid date range: end before start")

	// ErrInvalidQuantity is returned for non-positive day counts.
	ErrInvalidQuantity = errors.New("invalid quantity: days must be positive")

	// ErrNoBalanceSelected is returned when a booking names no balance.
	ErrNoBalanceSelected = errors.New("no balance selected")

	// ErrExceedsAvailableDays is returned when a booking asks for more days
	// than the balance has remaining.
	ErrExceedsAvailableDays = errors.New("requested days exceed remaining balance")

	// ErrInsufficientBalance is returned when a mutation would drive
	// taken + sold above the entitlement.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrExceedsAnnualCap is returned when a sale or cash-out would push
	// the period's sold days past the legal cap.
	ErrExceedsAnnualCap = errors.New("exceeds annual sell cap")

	// ErrWouldUnderflow is returned when an entitlement edit would fall
	// below what is already taken plus sold.
	ErrWouldUnderflow = errors.New("entitlement below days already consumed")

	// ErrBalanceNotBookable is returned when the selected balance is
	// already taken or expired.
	ErrBalanceNotBookable = errors.New("balance not available for booking")

	// ErrAlreadyCompleted is returned when cancelling a finished booking.
	ErrAlreadyCompleted = errors.New("booking already completed")

	// ErrAlreadyCancelled is returned on a repeated cancellation attempt.
	// The first cancellation's reversal is never applied twice.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrDuplicatePeriod is returned by stores when a balance already
	// exists for (employee, periodStart). Materialization treats it as
	// "someone got there first", not as a failure.
	ErrDuplicatePeriod = errors.New("acquisition period already exists")

	// ErrConcurrentModification is returned when an optimistic version
	// check fails on a balance update.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrBalanceNotFound    = errors.New("balance not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrCollectiveNotFound = errors.New("collective vacation not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the context a caller needs for a message
// =============================================================================

// ExceedsAvailableDaysError reports a booking rejected for lack of days.
type ExceedsAvailableDaysError struct {
	BalanceID BalanceID
	Available int
	Requested int
}

func (e *ExceedsAvailableDaysError) Error() string {
	return fmt.Sprintf("requested %d days but balance %s has %d remaining",
		e.Requested, e.BalanceID, e.Available)
}

func (e *ExceedsAvailableDaysError) Unwrap() error { return ErrExceedsAvailableDays }

// AnnualCapError reports a sale or cash-out rejected by the legal cap.
type AnnualCapError struct {
	BalanceID   BalanceID
	AlreadySold int
	Requested   int
	Cap         int
}

func (e *AnnualCapError) Error() string {
	return fmt.Sprintf("selling %d days would reach %d, above the cap of %d (already sold: %d)",
		e.Requested, e.AlreadySold+e.Requested, e.Cap, e.AlreadySold)
}

func (e *AnnualCapError) Unwrap() error { return ErrExceedsAnnualCap }

// UnderflowError reports an entitlement edit below consumed days.
type UnderflowError struct {
	BalanceID    BalanceID
	NewEntitled  int
	DaysConsumed int // taken + sold
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("entitlement %d is below the %d days already taken or sold",
		e.NewEntitled, e.DaysConsumed)
}

func (e *UnderflowError) Unwrap() error { return ErrWouldUnderflow }

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// IsValidation reports whether the error is a rejected input or business
// rule, i.e. the caller can correct and retry.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrNoBalanceSelected) ||
		errors.Is(err, ErrExceedsAvailableDays) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrExceedsAnnualCap) ||
		errors.Is(err, ErrWouldUnderflow) ||
		errors.Is(err, ErrBalanceNotBookable) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrAlreadyCancelled)
}

// IsConflict reports whether the error is a lost race; a re-read and
// re-invoke may succeed.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrDuplicatePeriod)
}

// IsNotFound reports whether the error names a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrBalanceNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrCollectiveNotFound)
}
