// Package store provides in-memory Store implementations for tests and
// development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/island/booking-engine/booking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	reservations map[booking.ReservationID]booking.Reservation
	days         map[booking.Day]bool
}

func NewMemory() *Memory {
	return &Memory{
		reservations: make(map[booking.ReservationID]booking.Reservation),
		days:         make(map[booking.Day]bool),
	}
}

func (m *Memory) InsertReservation(_ context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertReservationLocked(r)
}

func (m *Memory) FindReservation(_ context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findReservationLocked(id)
}

func (m *Memory) UpdateReservation(_ context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateReservationLocked(r)
}

func (m *Memory) InsertDays(_ context.Context, days []booking.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertDaysLocked(days)
}

func (m *Memory) DeleteDays(_ context.Context, days []booking.Day) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteDaysLocked(days)
	return nil
}

func (m *Memory) DaysInRange(_ context.Context, from, to booking.Day) ([]booking.Day, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.daysInRangeLocked(from, to), nil
}

// =============================================================================
// LOCKED INTERNALS (shared with the transactional view)
// =============================================================================

func (m *Memory) insertReservationLocked(r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.ID = booking.ReservationID(uuid.NewString())
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.reservations[stored.ID] = stored
	return &stored, nil
}

func (m *Memory) findReservationLocked(id booking.ReservationID) (*booking.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, nil
	}
	out := r
	return &out, nil
}

func (m *Memory) updateReservationLocked(r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.UpdatedAt = time.Now().UTC()
	m.reservations[stored.ID] = stored
	return &stored, nil
}

func (m *Memory) insertDaysLocked(days []booking.Day) error {
	// All-or-nothing: check the full set before inserting anything.
	for _, d := range days {
		if m.days[d] {
			return booking.ErrDayTaken
		}
	}
	for _, d := range days {
		m.days[d] = true
	}
	return nil
}

func (m *Memory) deleteDaysLocked(days []booking.Day) {
	for _, d := range days {
		delete(m.days, d)
	}
}

func (m *Memory) daysInRangeLocked(from, to booking.Day) []booking.Day {
	var result []booking.Day
	for d := range m.days {
		if !d.Before(from) && !d.After(to) {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
// Transactions are simulated with a snapshot + rollback on error; the
// store lock is held for the whole transaction, so concurrent WithTx
// callers serialize the way SQL writers would.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(booking.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()

	if err := fn(&txMemoryView{parent: tm.Memory}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	reservations map[booking.ReservationID]booking.Reservation
	days         map[booking.Day]bool
}

func (tm *TxMemory) snapshot() memorySnapshot {
	reservations := make(map[booking.ReservationID]booking.Reservation, len(tm.reservations))
	for k, v := range tm.reservations {
		reservations[k] = v
	}
	days := make(map[booking.Day]bool, len(tm.days))
	for k, v := range tm.days {
		days[k] = v
	}
	return memorySnapshot{reservations: reservations, days: days}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.reservations = s.reservations
	tm.days = s.days
}

// txMemoryView routes calls to the locked internals; the lock is already
// held by WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) InsertReservation(_ context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return tv.parent.insertReservationLocked(r)
}

func (tv *txMemoryView) FindReservation(_ context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return tv.parent.findReservationLocked(id)
}

func (tv *txMemoryView) UpdateReservation(_ context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return tv.parent.updateReservationLocked(r)
}

func (tv *txMemoryView) InsertDays(_ context.Context, days []booking.Day) error {
	return tv.parent.insertDaysLocked(days)
}

func (tv *txMemoryView) DeleteDays(_ context.Context, days []booking.Day) error {
	tv.parent.deleteDaysLocked(days)
	return nil
}

func (tv *txMemoryView) DaysInRange(_ context.Context, from, to booking.Day) ([]booking.Day, error) {
	return tv.parent.daysInRangeLocked(from, to), nil
}
