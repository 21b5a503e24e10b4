/*
Package postgres provides a PostgreSQL-backed implementation of the
storage interfaces, built on sqlx and lib/pq.

The schema mirrors store/sqlite: a reservations table and a calendar_days
table whose primary key on the day column is the exclusivity invariant.
Unique violations are recognized by pq error class 23505 and surfaced as
booking.ErrDayTaken, so a race that slips past the engine's pre-check
still resolves to a conflict outcome with a full rollback.

Unlike the SQLite store there is no process-level mutex: PostgreSQL's own
concurrency control arbitrates between writers, including writers in
other processes.
*/
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/island/booking-engine/booking"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store implements booking.TxStore using PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// New connects to PostgreSQL and ensures the schema exists.
// databaseURL is a lib/pq connection string or URL.
func New(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		guest_name TEXT NOT NULL,
		guest_email TEXT NOT NULL,
		arrival DATE NOT NULL,
		departure DATE NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reservations_status
		ON reservations(status);

	-- The occupancy ledger; the primary key on day is the exclusivity
	-- invariant arbitrating between concurrent writers.
	CREATE TABLE IF NOT EXISTS calendar_days (
		day DATE PRIMARY KEY
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// reservationRow is the sqlx scan target for the reservations table.
type reservationRow struct {
	ID         string    `db:"id"`
	GuestName  string    `db:"guest_name"`
	GuestEmail string    `db:"guest_email"`
	Arrival    time.Time `db:"arrival"`
	Departure  time.Time `db:"departure"`
	Status     int       `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row reservationRow) toDomain() (*booking.Reservation, error) {
	status, err := booking.StatusFromCode(row.Status)
	if err != nil {
		return nil, err
	}
	return &booking.Reservation{
		ID:         booking.ReservationID(row.ID),
		GuestName:  row.GuestName,
		GuestEmail: row.GuestEmail,
		Arrival:    booking.DayOf(row.Arrival),
		Departure:  booking.DayOf(row.Departure),
		Status:     status,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// =============================================================================
// RESERVATION STORE
// =============================================================================

func (s *Store) InsertReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return insertReservation(ctx, s.db, r)
}

func (s *Store) FindReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return findReservation(ctx, s.db, id)
}

func (s *Store) UpdateReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return updateReservation(ctx, s.db, r)
}

func insertReservation(ctx context.Context, db dbtx, r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.ID = booking.ReservationID(uuid.NewString())
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	query := `
		INSERT INTO reservations
		(id, guest_name, guest_email, arrival, departure, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := db.ExecContext(ctx, query,
		string(stored.ID),
		stored.GuestName,
		stored.GuestEmail,
		stored.Arrival.Time,
		stored.Departure.Time,
		stored.Status.Code(),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reservation: %w", err)
	}
	return &stored, nil
}

func findReservation(ctx context.Context, db dbtx, id booking.ReservationID) (*booking.Reservation, error) {
	query := `
		SELECT id, guest_name, guest_email, arrival, departure, status, created_at, updated_at
		FROM reservations
		WHERE id = $1
	`

	var row reservationRow
	err := db.GetContext(ctx, &row, query, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}
	return row.toDomain()
}

func updateReservation(ctx context.Context, db dbtx, r *booking.Reservation) (*booking.Reservation, error) {
	stored := *r
	stored.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reservations
		SET guest_name = $1, guest_email = $2, arrival = $3, departure = $4,
		    status = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := db.ExecContext(ctx, query,
		stored.GuestName,
		stored.GuestEmail,
		stored.Arrival.Time,
		stored.Departure.Time,
		stored.Status.Code(),
		stored.UpdatedAt,
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
// CALENDAR STORE
// =============================================================================

func (s *Store) InsertDays(ctx context.Context, days []booking.Day) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertDays(ctx, tx, days); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) DeleteDays(ctx context.Context, days []booking.Day) error {
	return deleteDays(ctx, s.db, days)
}

func (s *Store) DaysInRange(ctx context.Context, from, to booking.Day) ([]booking.Day, error) {
	return daysInRange(ctx, s.db, from, to)
}

func insertDays(ctx context.Context, db dbtx, days []booking.Day) error {
	for _, d := range days {
		_, err := db.ExecContext(ctx, "INSERT INTO calendar_days (day) VALUES ($1)", d.Time)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", d, booking.ErrDayTaken)
			}
			return fmt.Errorf("failed to insert calendar day: %w", err)
		}
	}
	return nil
}

func deleteDays(ctx context.Context, db dbtx, days []booking.Day) error {
	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = d.Time
	}
	_, err := db.ExecContext(ctx, "DELETE FROM calendar_days WHERE day = ANY($1)", pq.Array(dates))
	if err != nil {
		return fmt.Errorf("failed to delete calendar days: %w", err)
	}
	return nil
}

func daysInRange(ctx context.Context, db dbtx, from, to booking.Day) ([]booking.Day, error) {
	query := `
		SELECT day FROM calendar_days
		WHERE day >= $1 AND day <= $2
		ORDER BY day ASC
	`

	var dates []time.Time
	if err := db.SelectContext(ctx, &dates, query, from.Time, to.Time); err != nil {
		return nil, fmt.Errorf("failed to query calendar days: %w", err)
	}

	days := make([]booking.Day, len(dates))
	for i, t := range dates {
		days[i] = booking.DayOf(t)
	}
	return days, nil
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store booking.Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type txStore struct {
	tx *sqlx.Tx
}

func (ts *txStore) InsertReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return insertReservation(ctx, ts.tx, r)
}

func (ts *txStore) FindReservation(ctx context.Context, id booking.ReservationID) (*booking.Reservation, error) {
	return findReservation(ctx, ts.tx, id)
}

func (ts *txStore) UpdateReservation(ctx context.Context, r *booking.Reservation) (*booking.Reservation, error) {
	return updateReservation(ctx, ts.tx, r)
}

func (ts *txStore) InsertDays(ctx context.Context, days []booking.Day) error {
	return insertDays(ctx, ts.tx, days)
}

func (ts *txStore) DeleteDays(ctx context.Context, days []booking.Day) error {
	return deleteDays(ctx, ts.tx, days)
}

func (ts *txStore) DaysInRange(ctx context.Context, from, to booking.Day) ([]booking.Day, error) {
	return daysInRange(ctx, ts.tx, from, to)
}

// =============================================================================
// HELPERS
// =============================================================================

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
