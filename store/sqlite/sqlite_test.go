package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/island/booking-engine/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDay(d int) booking.Day {
	return booking.NewDay(2026, time.June, d)
}

// =============================================================================
// RESERVATIONS
// =============================================================================

func TestStore_InsertAndFindReservation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.InsertReservation(ctx, &booking.Reservation{
		GuestName:  "Alice",
		GuestEmail: "a@x.com",
		Arrival:    testDay(10),
		Departure:  testDay(12),
		Status:     booking.StatusActive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, saved.CreatedAt, saved.UpdatedAt)

	found, err := store.FindReservation(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Alice", found.GuestName)
	assert.Equal(t, "a@x.com", found.GuestEmail)
	assert.True(t, found.Arrival.Equal(testDay(10)))
	assert.True(t, found.Departure.Equal(testDay(12)))
	assert.Equal(t, booking.StatusActive, found.Status)
}

func TestStore_FindReservation_AbsentIsNilNil(t *testing.T) {
	store := newTestStore(t)

	found, err := store.FindReservation(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, found, "absence is (nil, nil), not an error")
}

func TestStore_UpdateReservation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saved, err := store.InsertReservation(ctx, &booking.Reservation{
		GuestName:  "Alice",
		GuestEmail: "a@x.com",
		Arrival:    testDay(10),
		Departure:  testDay(12),
	})
	require.NoError(t, err)

	saved.GuestName = "Alicia"
	saved.Status = booking.StatusCancelled
	updated, err := store.UpdateReservation(ctx, saved)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(saved.CreatedAt))

	found, err := store.FindReservation(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", found.GuestName)
	assert.Equal(t, booking.StatusCancelled, found.Status)
}

func TestStore_UpdateReservation_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateReservation(context.Background(), &booking.Reservation{
		ID:        "missing",
		Arrival:   testDay(10),
		Departure: testDay(12),
	})
	assert.ErrorIs(t, err, booking.ErrReservationNotFound)
}

// =============================================================================
// CALENDAR LEDGER
// =============================================================================

func TestStore_InsertDays_DuplicateIsErrDayTaken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(10)}))

	err := store.InsertDays(ctx, []booking.Day{testDay(10)})
	assert.True(t, errors.Is(err, booking.ErrDayTaken),
		"primary key violation must map to ErrDayTaken, got %v", err)
}

func TestStore_InsertDays_AllOrNothing(t *testing.T) {
	// GIVEN: Day 11 occupied
	// WHEN: Inserting {10, 11, 12} in one call
	// THEN: The call fails and day 10 was not inserted either

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(11)}))

	err := store.InsertDays(ctx, []booking.Day{testDay(10), testDay(11), testDay(12)})
	require.ErrorIs(t, err, booking.ErrDayTaken)

	days, err := store.DaysInRange(ctx, testDay(1), testDay(30))
	require.NoError(t, err)
	assert.Equal(t, []booking.Day{testDay(11)}, days, "partial insert must roll back")
}

func TestStore_DeleteDays_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(10)}))
	require.NoError(t, store.DeleteDays(ctx, []booking.Day{testDay(10)}))
	assert.NoError(t, store.DeleteDays(ctx, []booking.Day{testDay(10)}),
		"deleting an absent day is not an error")
}

func TestStore_DaysInRange_InclusiveBoundsAscending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(10)}))
	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(15)}))
	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(12)}))

	days, err := store.DaysInRange(ctx, testDay(10), testDay(15))
	require.NoError(t, err)
	assert.Equal(t, []booking.Day{testDay(10), testDay(12), testDay(15)}, days)

	days, err = store.DaysInRange(ctx, testDay(11), testDay(14))
	require.NoError(t, err)
	assert.Equal(t, []booking.Day{testDay(12)}, days)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestStore_WithTx_CommitsAllWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var id booking.ReservationID
	err := store.WithTx(ctx, func(tx booking.Store) error {
		saved, err := tx.InsertReservation(ctx, &booking.Reservation{
			GuestName:  "Alice",
			GuestEmail: "a@x.com",
			Arrival:    testDay(10),
			Departure:  testDay(12),
		})
		if err != nil {
			return err
		}
		id = saved.ID
		return tx.InsertDays(ctx, []booking.Day{testDay(10), testDay(11)})
	})
	require.NoError(t, err)

	found, err := store.FindReservation(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, found)

	days, err := store.DaysInRange(ctx, testDay(10), testDay(11))
	require.NoError(t, err)
	assert.Len(t, days, 2)
}

func TestStore_WithTx_RollsBackEverythingOnError(t *testing.T) {
	// A failure late in the transaction must leave no trace of the
	// earlier writes.

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertDays(ctx, []booking.Day{testDay(11)}))

	err := store.WithTx(ctx, func(tx booking.Store) error {
		if _, err := tx.InsertReservation(ctx, &booking.Reservation{
			GuestName:  "Bob",
			GuestEmail: "b@x.com",
			Arrival:    testDay(10),
			Departure:  testDay(12),
		}); err != nil {
			return err
		}
		return tx.InsertDays(ctx, []booking.Day{testDay(10), testDay(11)})
	})
	require.ErrorIs(t, err, booking.ErrDayTaken)

	days, err := store.DaysInRange(ctx, testDay(1), testDay(30))
	require.NoError(t, err)
	assert.Equal(t, []booking.Day{testDay(11)}, days)

	// The reservation row rolled back with the ledger write.
	row := store.db.QueryRow("SELECT COUNT(*) FROM reservations")
	var count int
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}

func TestStore_WithTx_ReadsSeeUncommittedWrites(t *testing.T) {
	// The pre-check inside a lifecycle transaction must observe the
	// transaction's own earlier writes.

	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx booking.Store) error {
		if err := tx.InsertDays(ctx, []booking.Day{testDay(10)}); err != nil {
			return err
		}
		days, err := tx.DaysInRange(ctx, testDay(10), testDay(10))
		if err != nil {
			return err
		}
		assert.Len(t, days, 1, "own writes visible within the transaction")
		return nil
	})
	require.NoError(t, err)
}
