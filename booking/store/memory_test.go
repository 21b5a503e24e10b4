package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/island/booking-engine/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDay(d int) booking.Day {
	return booking.NewDay(2026, time.June, d)
}

func TestMemory_InsertDays_AllOrNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.InsertDays(ctx, []booking.Day{testDay(11)}))

	err := m.InsertDays(ctx, []booking.Day{testDay(10), testDay(11)})
	require.ErrorIs(t, err, booking.ErrDayTaken)

	days, err := m.DaysInRange(ctx, testDay(1), testDay(30))
	require.NoError(t, err)
	assert.Equal(t, []booking.Day{testDay(11)}, days, "nothing from the failed call persists")
}

func TestMemory_FindReservation_ReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	saved, err := m.InsertReservation(ctx, &booking.Reservation{GuestName: "Alice"})
	require.NoError(t, err)

	found, err := m.FindReservation(ctx, saved.ID)
	require.NoError(t, err)
	found.GuestName = "mutated"

	again, err := m.FindReservation(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.GuestName, "callers must not alias stored state")
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	tm := NewTxMemory()
	ctx := context.Background()

	boom := errors.New("boom")
	err := tm.WithTx(ctx, func(tx booking.Store) error {
		if _, err := tx.InsertReservation(ctx, &booking.Reservation{GuestName: "Alice"}); err != nil {
			return err
		}
		if err := tx.InsertDays(ctx, []booking.Day{testDay(10)}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	days, err := tm.DaysInRange(ctx, testDay(1), testDay(30))
	require.NoError(t, err)
	assert.Empty(t, days)
	assert.Empty(t, tm.reservations)
}

func TestTxMemory_CommitOnSuccess(t *testing.T) {
	tm := NewTxMemory()
	ctx := context.Background()

	var id booking.ReservationID
	err := tm.WithTx(ctx, func(tx booking.Store) error {
		saved, err := tx.InsertReservation(ctx, &booking.Reservation{GuestName: "Alice"})
		if err != nil {
			return err
		}
		id = saved.ID
		return tx.InsertDays(ctx, []booking.Day{testDay(10)})
	})
	require.NoError(t, err)

	found, err := tm.FindReservation(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)

	days, err := tm.DaysInRange(ctx, testDay(10), testDay(10))
	require.NoError(t, err)
	assert.Len(t, days, 1)
}
