/*
Package sqlite provides the SQLite-backed implementation of the vacation
persistence interfaces.

PURPOSE:
  Implements vacation.TxStore and vacation.EmployeeDirectory over a single
  SQLite database. The same patterns apply to PostgreSQL with minor
  dialect differences.

KEY TABLES:
  employees:            Directory records (externally owned in production)
  balances:             Acquisition-period balance rows (versioned)
  bookings:             Vacation bookings
  collective_vacations: Bulk scheduling actions

CONCURRENCY:
  Balance updates are compare-and-swap on the version column:
    UPDATE balances SET ... , version = version + 1
    WHERE id = ? AND version = ?
  Zero rows affected with an existing row means a lost race and surfaces
  vacation.ErrConcurrentModification.

  A sync.RWMutex serializes access on top of SQLite; WAL mode keeps
  readers from blocking the single writer.

IDEMPOTENCY:
  The UNIQUE(employee_id, period_start) index backs the generator's
  existence check at the database level: a duplicate materialization
  surfaces vacation.ErrDuplicatePeriod instead of a second row.

USAGE:
  store, err := sqlite.New("./data/vacation.db")   // ":memory:" for tests
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ondahr/vacation-engine/vacation"
)

// Store implements the persistence interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ vacation.TxStore           = (*Store)(nil)
	_ vacation.EmployeeDirectory = (*Store)(nil)
)

// New opens (or creates) the database at the given path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL DEFAULT '',
		hire_date TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		unit_id TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		monthly_salary TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_scope
		ON employees(active, unit_id, department_id);

	CREATE TABLE IF NOT EXISTS balances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		days_entitled INTEGER NOT NULL,
		days_taken INTEGER NOT NULL DEFAULT 0,
		days_sold INTEGER NOT NULL DEFAULT 0,
		days_remaining INTEGER NOT NULL,
		expiration_date TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_balances_employee_period
		ON balances(employee_id, period_start);
	CREATE INDEX IF NOT EXISTS idx_balances_expiration
		ON balances(expiration_date);

	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		balance_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		kind TEXT NOT NULL,
		cash_out_days INTEGER NOT NULL DEFAULT 0,
		collective_id TEXT NOT NULL DEFAULT '',
		cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		cancelled_at TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_employee
		ON bookings(employee_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_bookings_balance
		ON bookings(balance_id);
	CREATE INDEX IF NOT EXISTS idx_bookings_collective
		ON bookings(collective_id) WHERE collective_id != '';

	CREATE TABLE IF NOT EXISTS collective_vacations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		unit_id TEXT NOT NULL DEFAULT '',
		department_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryable abstracts *sql.DB and *sql.Tx so the same helpers serve both
// direct calls and transactional views.
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// SaveEmployee upserts a directory record. Used by seeding and admin
// tooling; in production the directory is maintained externally.
func (s *Store) SaveEmployee(ctx context.Context, e vacation.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hireDate *string
	if e.HireDate != nil {
		d := e.HireDate.String()
		hireDate = &d
	}

	query := `
		INSERT INTO employees (id, name, code, hire_date, active, unit_id, department_id, monthly_salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			hire_date = excluded.hire_date,
			active = excluded.active,
			unit_id = excluded.unit_id,
			department_id = excluded.department_id,
			monthly_salary = excluded.monthly_salary
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Code, hireDate, e.Active, e.UnitID, e.DepartmentID,
		e.MonthlySalary.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, code, hire_date, active, unit_id, department_id, monthly_salary
		 FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		`SELECT id, name, code, hire_date, active, unit_id, department_id, monthly_salary
		 FROM employees ORDER BY name, id`)
}

func (s *Store) ListActiveEmployees(ctx context.Context, scope vacation.ScopeFilter) ([]vacation.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, code, hire_date, active, unit_id, department_id, monthly_salary
		 FROM employees WHERE active = TRUE`
	var args []any
	if scope.UnitID != "" {
		query += " AND unit_id = ?"
		args = append(args, scope.UnitID)
	}
	if scope.DepartmentID != "" {
		query += " AND department_id = ?"
		args = append(args, scope.DepartmentID)
	}
	query += " ORDER BY name, id"

	return s.queryEmployees(ctx, query, args...)
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]vacation.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []vacation.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (*vacation.Employee, error) {
	var (
		e        vacation.Employee
		hireDate sql.NullString
		salary   string
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Code, &hireDate, &e.Active,
		&e.UnitID, &e.DepartmentID, &salary); err != nil {
		return nil, err
	}
	if hireDate.Valid {
		d, err := vacation.ParseDate(hireDate.String)
		if err != nil {
			return nil, fmt.Errorf("invalid hire_date %q: %w", hireDate.String, err)
		}
		e.HireDate = &d
	}
	e.MonthlySalary, _ = decimal.NewFromString(salary)
	return &e, nil
}

// =============================================================================
// BALANCES
// =============================================================================

const balanceColumns = `id, employee_id, period_start, period_end, days_entitled,
	days_taken, days_sold, days_remaining, expiration_date, status, version, created_at`

func (s *Store) InsertBalance(ctx context.Context, b vacation.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertBalance(ctx, s.db, b)
}

func insertBalance(ctx context.Context, q queryable, b vacation.Balance) error {
	query := `
		INSERT INTO balances
		(id, employee_id, period_start, period_end, days_entitled, days_taken, days_sold,
		 days_remaining, expiration_date, status, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		b.ID, b.EmployeeID,
		b.PeriodStart.String(), b.PeriodEnd.String(),
		b.DaysEntitled, b.DaysTaken, b.DaysSold, b.DaysRemaining,
		b.ExpirationDate.String(), b.Status, b.Version,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return vacation.ErrDuplicatePeriod
		}
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

func (s *Store) UpdateBalance(ctx context.Context, b vacation.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBalance(ctx, s.db, b)
}

func updateBalance(ctx context.Context, q queryable, b vacation.Balance) error {
	query := `
		UPDATE balances SET
			days_entitled = ?, days_taken = ?, days_sold = ?, days_remaining = ?,
			expiration_date = ?, status = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	res, err := q.ExecContext(ctx, query,
		b.DaysEntitled, b.DaysTaken, b.DaysSold, b.DaysRemaining,
		b.ExpirationDate.String(), b.Status,
		b.ID, b.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var count int
		if err := q.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM balances WHERE id = ?", b.ID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return vacation.ErrBalanceNotFound
		}
		return vacation.ErrConcurrentModification
	}
	return nil
}

func (s *Store) GetBalance(ctx context.Context, id vacation.BalanceID) (*vacation.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBalance(ctx, s.db, id)
}

func getBalance(ctx context.Context, q queryable, id vacation.BalanceID) (*vacation.Balance, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+balanceColumns+" FROM balances WHERE id = ?", id)

	b, err := scanBalance(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBalancesByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBalancesByEmployee(ctx, s.db, employeeID)
}

func listBalancesByEmployee(ctx context.Context, q queryable, employeeID vacation.EmployeeID) ([]vacation.Balance, error) {
	return queryBalances(ctx, q,
		"SELECT "+balanceColumns+" FROM balances WHERE employee_id = ? ORDER BY period_start ASC",
		employeeID)
}

func (s *Store) ListBalances(ctx context.Context) ([]vacation.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBalances(ctx, s.db,
		"SELECT "+balanceColumns+" FROM balances ORDER BY employee_id, period_start ASC")
}

func queryBalances(ctx context.Context, q queryable, query string, args ...any) ([]vacation.Balance, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var balances []vacation.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, *b)
	}
	return balances, rows.Err()
}

func scanBalance(row rowScanner) (*vacation.Balance, error) {
	var (
		b                                           vacation.Balance
		periodStart, periodEnd, expiration, created string
	)
	if err := row.Scan(&b.ID, &b.EmployeeID, &periodStart, &periodEnd,
		&b.DaysEntitled, &b.DaysTaken, &b.DaysSold, &b.DaysRemaining,
		&expiration, &b.Status, &b.Version, &created); err != nil {
		return nil, err
	}

	var err error
	if b.PeriodStart, err = vacation.ParseDate(periodStart); err != nil {
		return nil, err
	}
	if b.PeriodEnd, err = vacation.ParseDate(periodEnd); err != nil {
		return nil, err
	}
	if b.ExpirationDate, err = vacation.ParseDate(expiration); err != nil {
		return nil, err
	}
	b.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &b, nil
}

// =============================================================================
// BOOKINGS
// =============================================================================

const bookingColumns = `id, employee_id, balance_id, start_date, end_date, days,
	kind, cash_out_days, collective_id, cancelled, cancelled_at, created_at`

func (s *Store) InsertBooking(ctx context.Context, bk vacation.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertBooking(ctx, s.db, bk)
}

func insertBooking(ctx context.Context, q queryable, bk vacation.Booking) error {
	query := `
		INSERT INTO bookings
		(id, employee_id, balance_id, start_date, end_date, days, kind,
		 cash_out_days, collective_id, cancelled, cancelled_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		bk.ID, bk.EmployeeID, bk.BalanceID,
		bk.StartDate.String(), bk.EndDate.String(), bk.Days,
		bk.Kind, bk.CashOutDays, bk.CollectiveID,
		bk.Cancelled, nullTime(bk.CancelledAt),
		bk.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, bk vacation.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBooking(ctx, s.db, bk)
}

func updateBooking(ctx context.Context, q queryable, bk vacation.Booking) error {
	res, err := q.ExecContext(ctx,
		"UPDATE bookings SET cancelled = ?, cancelled_at = ? WHERE id = ?",
		bk.Cancelled, nullTime(bk.CancelledAt), bk.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return vacation.ErrBookingNotFound
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id vacation.BookingID) (*vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBooking(ctx, s.db, id)
}

func getBooking(ctx context.Context, q queryable, id vacation.BookingID) (*vacation.Booking, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)

	bk, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return bk, nil
}

func (s *Store) ListBookingsByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBookings(ctx, s.db,
		"SELECT "+bookingColumns+" FROM bookings WHERE employee_id = ? ORDER BY start_date ASC, id ASC",
		employeeID)
}

func (s *Store) ListBookingsByCollective(ctx context.Context, id vacation.CollectiveID) ([]vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBookingsByCollective(ctx, s.db, id)
}

func listBookingsByCollective(ctx context.Context, q queryable, id vacation.CollectiveID) ([]vacation.Booking, error) {
	return queryBookings(ctx, q,
		"SELECT "+bookingColumns+" FROM bookings WHERE collective_id = ? ORDER BY start_date ASC, id ASC",
		id)
}

func (s *Store) ListBookings(ctx context.Context) ([]vacation.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryBookings(ctx, s.db,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY start_date ASC, id ASC")
}

func queryBookings(ctx context.Context, q queryable, query string, args ...any) ([]vacation.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []vacation.Booking
	for rows.Next() {
		bk, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *bk)
	}
	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*vacation.Booking, error) {
	var (
		bk                 vacation.Booking
		startDate, endDate string
		cancelledAt        sql.NullString
		created            string
	)
	if err := row.Scan(&bk.ID, &bk.EmployeeID, &bk.BalanceID,
		&startDate, &endDate, &bk.Days, &bk.Kind, &bk.CashOutDays,
		&bk.CollectiveID, &bk.Cancelled, &cancelledAt, &created); err != nil {
		return nil, err
	}

	var err error
	if bk.StartDate, err = vacation.ParseDate(startDate); err != nil {
		return nil, err
	}
	if bk.EndDate, err = vacation.ParseDate(endDate); err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		t, _ := time.Parse(time.RFC3339, cancelledAt.String)
		bk.CancelledAt = &t
	}
	bk.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &bk, nil
}

// =============================================================================
// COLLECTIVE VACATIONS
// =============================================================================

const collectiveColumns = `id, title, start_date, end_date, days, unit_id, department_id, created_at`

func (s *Store) InsertCollective(ctx context.Context, cv vacation.CollectiveVacation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertCollective(ctx, s.db, cv)
}

func insertCollective(ctx context.Context, q queryable, cv vacation.CollectiveVacation) error {
	query := `
		INSERT INTO collective_vacations
		(id, title, start_date, end_date, days, unit_id, department_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := q.ExecContext(ctx, query,
		cv.ID, cv.Title, cv.StartDate.String(), cv.EndDate.String(), cv.Days,
		cv.Scope.UnitID, cv.Scope.DepartmentID,
		cv.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert collective vacation: %w", err)
	}
	return nil
}

func (s *Store) GetCollective(ctx context.Context, id vacation.CollectiveID) (*vacation.CollectiveVacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCollective(ctx, s.db, id)
}

func getCollective(ctx context.Context, q queryable, id vacation.CollectiveID) (*vacation.CollectiveVacation, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+collectiveColumns+" FROM collective_vacations WHERE id = ?", id)

	cv, err := scanCollective(row)
	if err == sql.ErrNoRows {
		return nil, vacation.ErrCollectiveNotFound
	}
	if err != nil {
		return nil, err
	}
	return cv, nil
}

func (s *Store) ListCollectives(ctx context.Context) ([]vacation.CollectiveVacation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCollectives(ctx, s.db)
}

func listCollectives(ctx context.Context, q queryable) ([]vacation.CollectiveVacation, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+collectiveColumns+" FROM collective_vacations ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query collective vacations: %w", err)
	}
	defer rows.Close()

	var collectives []vacation.CollectiveVacation
	for rows.Next() {
		cv, err := scanCollective(rows)
		if err != nil {
			return nil, err
		}
		collectives = append(collectives, *cv)
	}
	return collectives, rows.Err()
}

func (s *Store) DeleteCollective(ctx context.Context, id vacation.CollectiveID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteCollective(ctx, s.db, id)
}

func deleteCollective(ctx context.Context, q queryable, id vacation.CollectiveID) error {
	res, err := q.ExecContext(ctx,
		"DELETE FROM collective_vacations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collective vacation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return vacation.ErrCollectiveNotFound
	}
	return nil
}

func scanCollective(row rowScanner) (*vacation.CollectiveVacation, error) {
	var (
		cv                 vacation.CollectiveVacation
		startDate, endDate string
		created            string
	)
	if err := row.Scan(&cv.ID, &cv.Title, &startDate, &endDate, &cv.Days,
		&cv.Scope.UnitID, &cv.Scope.DepartmentID, &created); err != nil {
		return nil, err
	}

	var err error
	if cv.StartDate, err = vacation.ParseDate(startDate); err != nil {
		return nil, err
	}
	if cv.EndDate, err = vacation.ParseDate(endDate); err != nil {
		return nil, err
	}
	cv.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &cv, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. The transactional
// view reads and writes through the sql.Tx so mid-transaction reads see
// uncommitted writes.
func (s *Store) WithTx(ctx context.Context, fn func(vacation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore routes Store calls through an open transaction. Locking is
// handled by WithTx; the methods must not touch the parent mutex.
type txStore struct {
	tx *sql.Tx
}

var _ vacation.Store = (*txStore)(nil)

func (ts *txStore) InsertBalance(ctx context.Context, b vacation.Balance) error {
	return insertBalance(ctx, ts.tx, b)
}

func (ts *txStore) UpdateBalance(ctx context.Context, b vacation.Balance) error {
	return updateBalance(ctx, ts.tx, b)
}

func (ts *txStore) GetBalance(ctx context.Context, id vacation.BalanceID) (*vacation.Balance, error) {
	return getBalance(ctx, ts.tx, id)
}

func (ts *txStore) ListBalancesByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.Balance, error) {
	return listBalancesByEmployee(ctx, ts.tx, employeeID)
}

func (ts *txStore) ListBalances(ctx context.Context) ([]vacation.Balance, error) {
	return queryBalances(ctx, ts.tx,
		"SELECT "+balanceColumns+" FROM balances ORDER BY employee_id, period_start ASC")
}

func (ts *txStore) InsertBooking(ctx context.Context, bk vacation.Booking) error {
	return insertBooking(ctx, ts.tx, bk)
}

func (ts *txStore) UpdateBooking(ctx context.Context, bk vacation.Booking) error {
	return updateBooking(ctx, ts.tx, bk)
}

func (ts *txStore) GetBooking(ctx context.Context, id vacation.BookingID) (*vacation.Booking, error) {
	return getBooking(ctx, ts.tx, id)
}

func (ts *txStore) ListBookingsByEmployee(ctx context.Context, employeeID vacation.EmployeeID) ([]vacation.Booking, error) {
	return queryBookings(ctx, ts.tx,
		"SELECT "+bookingColumns+" FROM bookings WHERE employee_id = ? ORDER BY start_date ASC, id ASC",
		employeeID)
}

func (ts *txStore) ListBookingsByCollective(ctx context.Context, id vacation.CollectiveID) ([]vacation.Booking, error) {
	return listBookingsByCollective(ctx, ts.tx, id)
}

func (ts *txStore) ListBookings(ctx context.Context) ([]vacation.Booking, error) {
	return queryBookings(ctx, ts.tx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY start_date ASC, id ASC")
}

func (ts *txStore) InsertCollective(ctx context.Context, cv vacation.CollectiveVacation) error {
	return insertCollective(ctx, ts.tx, cv)
}

func (ts *txStore) GetCollective(ctx context.Context, id vacation.CollectiveID) (*vacation.CollectiveVacation, error) {
	return getCollective(ctx, ts.tx, id)
}

func (ts *txStore) ListCollectives(ctx context.Context) ([]vacation.CollectiveVacation, error) {
	return listCollectives(ctx, ts.tx)
}

func (ts *txStore) DeleteCollective(ctx context.Context, id vacation.CollectiveID) error {
	return deleteCollective(ctx, ts.tx, id)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data. Intended for tests and demo seeding.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"bookings", "collective_vacations", "balances", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
