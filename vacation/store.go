/*
store.go - Persistence interfaces for balances, bookings and collectives

PURPOSE:
  Defines the contract between the engine and the external store. Each
  entity maps to one durable record type; single-record writes are atomic
  and balance updates are version-guarded.

OPTIMISTIC LOCKING:
  UpdateBalance must apply the write only if the stored Version equals the
  Version carried by the given balance, bumping it by one on success, and
  return ErrConcurrentModification otherwise. This turns the engine's
  check-then-act validations into compare-and-swap updates.

TRANSACTIONS:
  TxStore.WithTx runs a function against a transactional store view. The
  scheduler uses it to make the booking-create + balance-update pair
  atomic, so a failure cannot leave a booking without its balance effect.

IMPLEMENTATIONS:
  - store/sqlite:       production SQLite store
  - vacation/store:     in-memory store for tests and demos
*/
package vacation

import "context"

// EmployeeDirectory is the read-only view of the externally owned
// employee records the engine depends on.
type EmployeeDirectory interface {
	// GetEmployee returns ErrEmployeeNotFound for unknown IDs.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployees returns all employees, active or not.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// ListActiveEmployees returns active employees within the scope.
	ListActiveEmployees(ctx context.Context, scope ScopeFilter) ([]Employee, error)
}

// Store persists balances, bookings and collective vacations.
type Store interface {
	// InsertBalance persists a new balance. Returns ErrDuplicatePeriod if
	// a balance already exists for (EmployeeID, PeriodStart).
	InsertBalance(ctx context.Context, b Balance) error

	// UpdateBalance applies a version-guarded update (see package doc).
	UpdateBalance(ctx context.Context, b Balance) error

	GetBalance(ctx context.Context, id BalanceID) (*Balance, error)

	// ListBalancesByEmployee returns balances ordered by PeriodStart.
	ListBalancesByEmployee(ctx context.Context, employeeID EmployeeID) ([]Balance, error)

	ListBalances(ctx context.Context) ([]Balance, error)

	InsertBooking(ctx context.Context, bk Booking) error

	// UpdateBooking persists cancellation state. Bookings have no version:
	// the only mutation path is cancellation, which is guarded by the
	// owning balance's version inside the same transaction.
	UpdateBooking(ctx context.Context, bk Booking) error

	GetBooking(ctx context.Context, id BookingID) (*Booking, error)

	ListBookingsByEmployee(ctx context.Context, employeeID EmployeeID) ([]Booking, error)

	ListBookingsByCollective(ctx context.Context, id CollectiveID) ([]Booking, error)

	ListBookings(ctx context.Context) ([]Booking, error)

	InsertCollective(ctx context.Context, cv CollectiveVacation) error

	GetCollective(ctx context.Context, id CollectiveID) (*CollectiveVacation, error)

	ListCollectives(ctx context.Context) ([]CollectiveVacation, error)

	// DeleteCollective removes the collective record. The scheduler cancels
	// the generated bookings first; their CollectiveID link is kept for
	// history.
	DeleteCollective(ctx context.Context, id CollectiveID) error
}

// TxStore extends Store with a transaction boundary.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional store view. If fn returns
	// an error the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
