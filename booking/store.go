/*
store.go - Persistence interface for reservations and the calendar ledger

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage.

KEY INTERFACES:
  ReservationStore: Reservation persistence (insert, find, update)
  CalendarStore:    Occupied-day persistence (insert, delete, range query)
  Store:            Both halves together
  TxStore:          Store plus single-transaction execution

UNIQUENESS CONTRACT:
  CalendarStore implementations MUST enforce a per-date uniqueness
  invariant (unique column/key on the day) and return ErrDayTaken when an
  insert violates it. The engine's pre-check gives fast, descriptive
  conflicts; the store invariant is the actual mutual-exclusion mechanism
  under concurrent writers. An implementation without it is not safe.

ATOMICITY:
  Create/update/cancel each run wholly inside WithTx. Every ledger
  mutation and the reservation row write commit together or not at all -
  no partial ledger/reservation divergence is ever observable.

IMPLEMENTATIONS:
  - store/sqlite:       Production SQLite
  - store/postgres:     Production PostgreSQL (sqlx + lib/pq)
  - booking/store:      In-memory for testing

SEE ALSO:
  - ledger.go: CalendarLedger built on CalendarStore
  - service.go: Runs lifecycle transitions inside WithTx
*/
package booking

import "context"

// =============================================================================
// RESERVATION STORE
// =============================================================================

// ReservationStore persists Reservation records. Reservations are never
// physically deleted; cancellation is a status update.
type ReservationStore interface {
	// InsertReservation persists a new reservation, assigning its ID and
	// CreatedAt/UpdatedAt timestamps. Returns the stored record.
	InsertReservation(ctx context.Context, r *Reservation) (*Reservation, error)

	// FindReservation returns the reservation with the given id, or
	// (nil, nil) if it does not exist.
	FindReservation(ctx context.Context, id ReservationID) (*Reservation, error)

	// UpdateReservation overwrites an existing reservation's mutable
	// fields and bumps UpdatedAt. Returns the stored record.
	UpdateReservation(ctx context.Context, r *Reservation) (*Reservation, error)
}

// =============================================================================
// CALENDAR STORE - The occupancy set
// =============================================================================

// CalendarStore persists the set of occupied calendar days. The day is the
// only attribute; existence of an entry means "occupied".
type CalendarStore interface {
	// InsertDays inserts one entry per day, all-or-nothing. Returns an
	// error wrapping ErrDayTaken if any day already has an entry.
	InsertDays(ctx context.Context, days []Day) error

	// DeleteDays removes the given entries. Deleting an absent day is not
	// an error.
	DeleteDays(ctx context.Context, days []Day) error

	// DaysInRange returns all occupied days in the inclusive window
	// [from, to], ascending.
	DaysInRange(ctx context.Context, from, to Day) ([]Day, error)
}

// =============================================================================
// COMBINED + TRANSACTIONAL STORE
// =============================================================================

// Store combines reservation and calendar persistence.
type Store interface {
	ReservationStore
	CalendarStore
}

// TxStore wraps Store with transaction support.
// Use this for lifecycle transitions that must be atomic.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
