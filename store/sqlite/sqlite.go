/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements booking.Store and booking.TxStore using SQLite. In production
  the same patterns apply to PostgreSQL (see store/postgres) - only minor
  SQL dialect differences.

KEY TABLES:
  reservations:  Reservation records. Never deleted; cancellation is a
                 status update.
  calendar_days: The occupancy ledger. One row per occupied day. The
                 primary key on the day column IS the exclusivity
                 invariant: a second insert of the same day fails, and
                 that failure surfaces as booking.ErrDayTaken.

CONCURRENCY:
  Uses sync.RWMutex so that WithTx callers serialize; SQLite allows a
  single writer at a time anyway. The pool is pinned to one connection -
  a ":memory:" database lives on a single connection, and the mutex
  already serializes access.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/bookings.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := booking.NewService(store)

SEE ALSO:
  - booking/store.go: Interface definitions
  - store/postgres: PostgreSQL implementation
  - booking/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/island/booking-engine/booking"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements booking.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A :memory: database exists per connection; one pooled connection
	// keeps it stable.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Reservations (never deleted; cancellation is a status update)
	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		arrival TEXT NOT NULL,
		departure TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_status
		ON reservations(status);

	-- CRITICAL: the calendar ledger. The primary key on day enforces
	-- at-most-one entry per date; this is the exclusivity contract, the
	-- final arbiter when concurrent writers race past the pre-check.
	CREATE TABLE IF NOT EXISTS calendar_days (
		day TEXT PRIMARY KEY
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same statement
// helpers serve direct calls and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// RESERVATION STORE (booking.ReservationStore interface)
// =============================================================================

// InsertReservation persists a new reservation, assigning id + timestamps.
func (s *Store) InsertReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertReservation(ctx, s.db, r)
}

// FindReservation returns the reservation or (nil, nil) when absent.
func (s *Store) FindReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findReservation(ctx, s.db, id)
}

// UpdateReservation overwrites mutable fields and bumps updated_at.
func (s *Store) UpdateReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateReservation(ctx, s.db, r)
}

func (s *Store) insertReservation(ctx context.Context, db dbtx, r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.ID = booking.ReservationID(uuid.NewString())
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	query := `
		INSERT INTO reservations
		(id, guest_name, guest_email, arrival, departure, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		string(stored.ID),
		stored.GuestName,
		stored.GuestEmail,
		stored.Arrival.String(),
		stored.Departure.String(),
		stored.Status.Code(),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reservation: %w", err)
	}
	return &stored, nil
}

func (s *Store) findReservation(ctx context.Context, db dbtx, id booking.ReservationID) (*booking.Reservation, error) {
	query := `
		SELECT id, guest_name, guest_email, arrival, departure, status, created_at, updated_at
		FROM reservations
		WHERE id = ?
	`

	var (
		r                    booking.Reservation
		idStr                string
		arrival, departure   string
		statusCode           int
		createdAt, updatedAt string
	)

	err := db.QueryRowContext(ctx, query, string(id)).Scan(
		&idStr, &r.GuestName, &r.GuestEmail,
		&arrival, &departure, &statusCode, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}

	r.ID = booking.ReservationID(idStr)
	if r.Arrival, err = booking.ParseDay(arrival); err != nil {
		return nil, err
	}
	if r.Departure, err = booking.ParseDay(departure); err != nil {
		return nil, err
	}
	if r.Status, err = booking.StatusFromCode(statusCode); err != nil {
		return nil, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &r, nil
}

func (s *Store) updateReservation(ctx context.Context, db dbtx, r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reservations
		SET guest_name = ?, guest_email = ?, arrival = ?, departure = ?,
		    status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := db.ExecContext(ctx, query,
		stored.GuestName,
		stored.GuestEmail,
		stored.Arrival.String(),
		stored.Departure.String(),
		stored.Status.Code(),
		stored.UpdatedAt.Format(time.RFC3339Nano),
		string(stored.ID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, booking.ErrReservationNotFound
	}
	return &stored, nil
}

// =============================================================================
// CALENDAR STORE (booking.CalendarStore interface)
// =============================================================================

// InsertDays inserts one ledger row per day, all-or-nothing.
func (s *Store) InsertDays(ctx context.Context, days []booking.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertDays(ctx, tx, days); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteDays removes ledger rows; absent days are not an error.
func (s *Store) DeleteDays(ctx context.Context, days []booking.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteDays(ctx, s.db, days)
}

// DaysInRange returns occupied days in [from, to] inclusive, ascending.
func (s *Store) DaysInRange(ctx context.Context, from, to booking.Day) ([]booking.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.daysInRange(ctx, s.db, from, to)
}

func (s *Store) insertDays(ctx context.Context, db dbtx, days []booking.Day) error {
	for _, d := range days {
		_, err := db.ExecContext(ctx, "INSERT INTO calendar_days (day) VALUES (?)", d.String())
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%s: %w", d, booking.ErrDayTaken)
			}
			return fmt.Errorf("failed to insert calendar day: %w", err)
		}
	}
	return nil
}

func (s *Store) deleteDays(ctx context.Context, db dbtx, days []booking.Day) error {
	for _, d := range days {
		if _, err := db.ExecContext(ctx, "DELETE FROM calendar_days WHERE day = ?", d.String()); err != nil {
			return fmt.Errorf("failed to delete calendar day: %w", err)
		}
	}
	return nil
}

func (s *Store) daysInRange(ctx context.Context, db dbtx, from, to booking.Day) ([]booking.Day, error) {
	// ISO dates sort lexicographically, so text comparison is date order.
	query := `
		SELECT day FROM calendar_days
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC
	`

	rows, err := db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar days: %w", err)
	}
	defer rows.Close()

	var days []booking.Day
	for rows.Next() {
		var dayStr string
		if err := rows.Scan(&dayStr); err != nil {
			return nil, err
		}
		day, err := booking.ParseDay(dayStr)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (booking.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store booking.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore routes every call through the open transaction, so the ledger
// pre-check, ledger mutations and reservation writes share one commit.
type txStore struct {
	tx     *sql.Tx
	parent *Store
}

func (ts *txStore) InsertReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return ts.parent.insertReservation(ctx, ts.tx, r)
}

func (ts *txStore) FindReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return ts.parent.findReservation(ctx, ts.tx, id)
}

func (ts *txStore) UpdateReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return ts.parent.updateReservation(ctx, ts.tx, r)
}

func (ts *txStore) InsertDays(ctx context.Context, days []booking.Day) error {
	return ts.parent.insertDays(ctx, ts.tx, days)
}

func (ts *txStore) DeleteDays(ctx context.Context, days []booking.Day) error {
	return ts.parent.deleteDays(ctx, ts.tx, days)
}

func (ts *txStore) DaysInRange(ctx context.Context, from, to booking.Day) ([]booking.Day, error) {
	return ts.parent.daysInRange(ctx, ts.tx, from, to)
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
