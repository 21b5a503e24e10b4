package booking_test

import (
	"context"
	"testing"

	"github.com/island/booking-engine/booking"
	memstore "github.com/island/booking-engine/booking/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailability_EmptyCalendar(t *testing.T) {
	availability := booking.NewAvailability(memstore.NewMemory())

	free, err := availability.AvailableDays(context.Background(), day(10), day(14))
	require.NoError(t, err)
	assert.Equal(t, days(10, 11, 12, 13, 14), free, "inclusive at both ends")
}

func TestAvailability_ExcludesOccupiedDays(t *testing.T) {
	store := memstore.NewMemory()
	ctx := context.Background()

	ledger := booking.NewCalendarLedger(store)
	require.NoError(t, ledger.Claim(ctx, days(11, 12)))

	availability := booking.NewAvailability(store)
	free, err := availability.AvailableDays(ctx, day(10), day(14))
	require.NoError(t, err)
	assert.Equal(t, days(10, 13, 14), free)
}

func TestAvailability_PartitionsTheWindow(t *testing.T) {
	// free and occupied are disjoint and together cover the whole window.
	store := memstore.NewMemory()
	ctx := context.Background()

	ledger := booking.NewCalendarLedger(store)
	require.NoError(t, ledger.Claim(ctx, days(10, 13, 17)))

	availability := booking.NewAvailability(store)
	free, err := availability.AvailableDays(ctx, day(10), day(20))
	require.NoError(t, err)
	occupied, err := ledger.OccupiedDays(ctx, day(10), day(20))
	require.NoError(t, err)

	window := booking.DaysInclusive(day(10), day(20))
	assert.Len(t, free, len(window)-len(occupied))
	seen := make(map[booking.Day]bool)
	for _, d := range free {
		assert.False(t, seen[d])
		seen[d] = true
	}
	for _, d := range occupied {
		assert.False(t, seen[d], "occupied day reported free: %s", d)
		seen[d] = true
	}
	assert.Len(t, seen, len(window))
}

func TestAvailability_SingleDayWindow(t *testing.T) {
	availability := booking.NewAvailability(memstore.NewMemory())

	free, err := availability.AvailableDays(context.Background(), day(10), day(10))
	require.NoError(t, err)
	assert.Equal(t, days(10), free)
}

func TestAvailability_InvalidWindow(t *testing.T) {
	availability := booking.NewAvailability(memstore.NewMemory())

	_, err := availability.AvailableDays(context.Background(), day(12), day(10))
	assert.ErrorIs(t, err, booking.ErrInvalidWindow)
}

func TestAvailability_FullyBookedWindow(t *testing.T) {
	store := memstore.NewMemory()
	ctx := context.Background()

	ledger := booking.NewCalendarLedger(store)
	require.NoError(t, ledger.Claim(ctx, days(10, 11, 12)))

	availability := booking.NewAvailability(store)
	free, err := availability.AvailableDays(ctx, day(10), day(12))
	require.NoError(t, err)
	assert.Empty(t, free)
}
