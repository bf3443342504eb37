// Package store provides an in-memory implementation of the vacation
// persistence interfaces, used by tests and demos. WithTx is simulated
// with a snapshot restored on error, matching the SQLite store's
// rollback semantics closely enough for the engine's tests.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ondahr/vacation-engine/vacation"
)

type Memory struct {
	mu          sync.RWMutex
	employees   map[vacation.EmployeeID]vacation.Employee
	balances    map[vacation.BalanceID]vacation.Balance
	bookings    map[vacation.BookingID]vacation.Booking
	collectives map[vacation.CollectiveID]vacation.CollectiveVacation
}

func NewMemory() *Memory {
	return &Memory{
		employees:   make(map[vacation.EmployeeID]vacation.Employee),
		balances:    make(map[vacation.BalanceID]vacation.Balance),
		bookings:    make(map[vacation.BookingID]vacation.Booking),
		collectives: make(map[vacation.CollectiveID]vacation.CollectiveVacation),
	}
}

var (
	_ vacation.TxStore           = (*Memory)(nil)
	_ vacation.EmployeeDirectory = (*Memory)(nil)
)

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

// PutEmployee seeds the directory. Not part of the engine contract; the
// directory is externally owned in production.
func (m *Memory) PutEmployee(e vacation.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) GetEmployee(_ context.Context, id vacation.EmployeeID) (*vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, vacation.ErrEmployeeNotFound
	}
	return &e, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vacation.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListActiveEmployees(_ context.Context, scope vacation.ScopeFilter) ([]vacation.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Employee
	for _, e := range m.employees {
		if e.Active && scope.Matches(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// BALANCES
// =============================================================================

func (m *Memory) InsertBalance(_ context.Context, b vacation.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertBalanceLocked(b)
}

func (m *Memory) insertBalanceLocked(b vacation.Balance) error {
	for _, existing := range m.balances {
		if existing.EmployeeID == b.EmployeeID && existing.PeriodStart.Equal(b.PeriodStart) {
			return vacation.ErrDuplicatePeriod
		}
	}
	m.balances[b.ID] = b
	return nil
}

func (m *Memory) UpdateBalance(_ context.Context, b vacation.Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateBalanceLocked(b)
}

func (m *Memory) updateBalanceLocked(b vacation.Balance) error {
	existing, ok := m.balances[b.ID]
	if !ok {
		return vacation.ErrBalanceNotFound
	}
	if existing.Version != b.Version {
		return vacation.ErrConcurrentModification
	}
	b.Version++
	m.balances[b.ID] = b
	return nil
}

func (m *Memory) GetBalance(_ context.Context, id vacation.BalanceID) (*vacation.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.balances[id]
	if !ok {
		return nil, vacation.ErrBalanceNotFound
	}
	return &b, nil
}

func (m *Memory) ListBalancesByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Balance
	for _, b := range m.balances {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sortBalances(out)
	return out, nil
}

func (m *Memory) ListBalances(_ context.Context) ([]vacation.Balance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vacation.Balance, 0, len(m.balances))
	for _, b := range m.balances {
		out = append(out, b)
	}
	sortBalances(out)
	return out, nil
}

func sortBalances(balances []vacation.Balance) {
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].EmployeeID != balances[j].EmployeeID {
			return balances[i].EmployeeID < balances[j].EmployeeID
		}
		return balances[i].PeriodStart.Before(balances[j].PeriodStart)
	})
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (m *Memory) InsertBooking(_ context.Context, bk vacation.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[bk.ID] = bk
	return nil
}

func (m *Memory) UpdateBooking(_ context.Context, bk vacation.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[bk.ID]; !ok {
		return vacation.ErrBookingNotFound
	}
	m.bookings[bk.ID] = bk
	return nil
}

func (m *Memory) GetBooking(_ context.Context, id vacation.BookingID) (*vacation.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bk, ok := m.bookings[id]
	if !ok {
		return nil, vacation.ErrBookingNotFound
	}
	return &bk, nil
}

func (m *Memory) ListBookingsByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Booking
	for _, bk := range m.bookings {
		if bk.EmployeeID == employeeID {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *Memory) ListBookingsByCollective(_ context.Context, id vacation.CollectiveID) ([]vacation.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vacation.Booking
	for _, bk := range m.bookings {
		if bk.CollectiveID == id {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *Memory) ListBookings(_ context.Context) ([]vacation.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vacation.Booking, 0, len(m.bookings))
	for _, bk := range m.bookings {
		out = append(out, bk)
	}
	sortBookings(out)
	return out, nil
}

func sortBookings(bookings []vacation.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].StartDate.Equal(bookings[j].StartDate) {
			return bookings[i].StartDate.Before(bookings[j].StartDate)
		}
		return bookings[i].ID < bookings[j].ID
	})
}

// =============================================================================
// COLLECTIVE VACATIONS
// =============================================================================

func (m *Memory) InsertCollective(_ context.Context, cv vacation.CollectiveVacation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectives[cv.ID] = cv
	return nil
}

func (m *Memory) GetCollective(_ context.Context, id vacation.CollectiveID) (*vacation.CollectiveVacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cv, ok := m.collectives[id]
	if !ok {
		return nil, vacation.ErrCollectiveNotFound
	}
	return &cv, nil
}

func (m *Memory) ListCollectives(_ context.Context) ([]vacation.CollectiveVacation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vacation.CollectiveVacation, 0, len(m.collectives))
	for _, cv := range m.collectives {
		out = append(out, cv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteCollective(_ context.Context, id vacation.CollectiveID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collectives[id]; !ok {
		return vacation.ErrCollectiveNotFound
	}
	delete(m.collectives, id)
	return nil
}

// =============================================================================
// TRANSACTIONS - Snapshot with rollback on error
// =============================================================================

func (m *Memory) WithTx(_ context.Context, fn func(vacation.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	balances    map[vacation.BalanceID]vacation.Balance
	bookings    map[vacation.BookingID]vacation.Booking
	collectives map[vacation.CollectiveID]vacation.CollectiveVacation
}

func (m *Memory) snapshot() memorySnapshot {
	snap := memorySnapshot{
		balances:    make(map[vacation.BalanceID]vacation.Balance, len(m.balances)),
		bookings:    make(map[vacation.BookingID]vacation.Booking, len(m.bookings)),
		collectives: make(map[vacation.CollectiveID]vacation.CollectiveVacation, len(m.collectives)),
	}
	for k, v := range m.balances {
		snap.balances[k] = v
	}
	for k, v := range m.bookings {
		snap.bookings[k] = v
	}
	for k, v := range m.collectives {
		snap.collectives[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.balances = snap.balances
	m.bookings = snap.bookings
	m.collectives = snap.collectives
}

// txView routes writes to the parent without re-locking (the parent holds
// the lock for the duration of WithTx).
type txView struct {
	parent *Memory
}

func (tv *txView) InsertBalance(_ context.Context, b vacation.Balance) error {
	return tv.parent.insertBalanceLocked(b)
}

func (tv *txView) UpdateBalance(_ context.Context, b vacation.Balance) error {
	return tv.parent.updateBalanceLocked(b)
}

func (tv *txView) GetBalance(_ context.Context, id vacation.BalanceID) (*vacation.Balance, error) {
	b, ok := tv.parent.balances[id]
	if !ok {
		return nil, vacation.ErrBalanceNotFound
	}
	return &b, nil
}

func (tv *txView) ListBalancesByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.Balance, error) {
	var out []vacation.Balance
	for _, b := range tv.parent.balances {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sortBalances(out)
	return out, nil
}

func (tv *txView) ListBalances(_ context.Context) ([]vacation.Balance, error) {
	out := make([]vacation.Balance, 0, len(tv.parent.balances))
	for _, b := range tv.parent.balances {
		out = append(out, b)
	}
	sortBalances(out)
	return out, nil
}

func (tv *txView) InsertBooking(_ context.Context, bk vacation.Booking) error {
	tv.parent.bookings[bk.ID] = bk
	return nil
}

func (tv *txView) UpdateBooking(_ context.Context, bk vacation.Booking) error {
	if _, ok := tv.parent.bookings[bk.ID]; !ok {
		return vacation.ErrBookingNotFound
	}
	tv.parent.bookings[bk.ID] = bk
	return nil
}

func (tv *txView) GetBooking(_ context.Context, id vacation.BookingID) (*vacation.Booking, error) {
	bk, ok := tv.parent.bookings[id]
	if !ok {
		return nil, vacation.ErrBookingNotFound
	}
	return &bk, nil
}

func (tv *txView) ListBookingsByEmployee(_ context.Context, employeeID vacation.EmployeeID) ([]vacation.Booking, error) {
	var out []vacation.Booking
	for _, bk := range tv.parent.bookings {
		if bk.EmployeeID == employeeID {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, nil
}

func (tv *txView) ListBookingsByCollective(_ context.Context, id vacation.CollectiveID) ([]vacation.Booking, error) {
	var out []vacation.Booking
	for _, bk := range tv.parent.bookings {
		if bk.CollectiveID == id {
			out = append(out, bk)
		}
	}
	sortBookings(out)
	return out, nil
}

func (tv *txView) ListBookings(_ context.Context) ([]vacation.Booking, error) {
	out := make([]vacation.Booking, 0, len(tv.parent.bookings))
	for _, bk := range tv.parent.bookings {
		out = append(out, bk)
	}
	sortBookings(out)
	return out, nil
}

func (tv *txView) InsertCollective(_ context.Context, cv vacation.CollectiveVacation) error {
	tv.parent.collectives[cv.ID] = cv
	return nil
}

func (tv *txView) GetCollective(_ context.Context, id vacation.CollectiveID) (*vacation.CollectiveVacation, error) {
	cv, ok := tv.parent.collectives[id]
	if !ok {
		return nil, vacation.ErrCollectiveNotFound
	}
	return &cv, nil
}

func (tv *txView) ListCollectives(_ context.Context) ([]vacation.CollectiveVacation, error) {
	out := make([]vacation.CollectiveVacation, 0, len(tv.parent.collectives))
	for _, cv := range tv.parent.collectives {
		out = append(out, cv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (tv *txView) DeleteCollective(_ context.Context, id vacation.CollectiveID) error {
	if _, ok := tv.parent.collectives[id]; !ok {
		return vacation.ErrCollectiveNotFound
	}
	delete(tv.parent.collectives, id)
	return nil
}
