package booking_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/island/booking-engine/booking"
	"github.com/stretchr/testify/assert"
)

func TestUnavailableDaysError(t *testing.T) {
	err := &booking.UnavailableDaysError{Days: days(10, 11)}

	assert.Equal(t, "days not available: 2026-06-10, 2026-06-11", err.Error())
	assert.ErrorIs(t, err, booking.ErrDaysUnavailable, "unwraps to the sentinel")

	var target *booking.UnavailableDaysError
	assert.ErrorAs(t, fmt.Errorf("create: %w", err), &target)
	assert.Equal(t, days(10, 11), target.Days)
}

func TestErrorClassification(t *testing.T) {
	conflict := &booking.UnavailableDaysError{Days: days(10)}

	assert.True(t, booking.IsClientError(booking.ErrInvalidStay))
	assert.True(t, booking.IsClientError(booking.ErrInvalidWindow))
	assert.True(t, booking.IsClientError(conflict))
	assert.True(t, booking.IsClientError(booking.ErrReservationCancelled))
	assert.False(t, booking.IsClientError(errors.New("disk on fire")))

	assert.True(t, booking.IsNotFound(booking.ErrReservationNotFound))
	assert.False(t, booking.IsNotFound(conflict))

	assert.True(t, booking.IsConflict(conflict))
	assert.True(t, booking.IsConflict(booking.ErrDayTaken))
	assert.False(t, booking.IsConflict(booking.ErrReservationNotFound))
}
