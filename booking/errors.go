/*
errors.go - Centralized error types for the booking engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Every operation surfaces its failure modes as typed outcomes the caller
  must handle explicitly; only store/transaction failures propagate as
  opaque wrapped errors.

ERROR CATEGORIES:
  1. Validation errors - domain invariant violations (ErrInvalidStay)
  2. Conflict errors   - requested days already occupied
  3. Lookup errors     - missing or terminal reservations
  4. Store errors      - database-level failures (wrapped, opaque)

USAGE:
  Callers classify with errors.Is / errors.As:

    var unavailable *booking.UnavailableDaysError
    if errors.As(err, &unavailable) {
        // unavailable.Days is the exact conflicting set
    }

SEE ALSO:
  - ledger.go: Produces UnavailableDaysError
  - service.go: Produces the lookup and validation errors
*/
package booking

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidStay is returned when arrival does not strictly precede
	// departure.
	ErrInvalidStay = errors.New("invalid stay: arrival must be before departure")

	// ErrInvalidWindow is returned when an availability window ends before
	// it starts.
	ErrInvalidWindow = errors.New("invalid window: to before from")

	// ErrDaysUnavailable is the sentinel behind UnavailableDaysError.
	ErrDaysUnavailable = errors.New("days not available")

	// ErrReservationNotFound is returned when the referenced reservation
	// id does not exist.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrReservationCancelled is returned on any mutation attempt against
	// a cancelled (terminal) reservation.
	ErrReservationCancelled = errors.New("reservation is cancelled")

	// ErrDayTaken is returned by stores when inserting a calendar day that
	// already exists. It is the store-level uniqueness invariant firing -
	// the final arbiter of exclusivity under concurrent writers.
	ErrDayTaken = errors.New("calendar day already taken")

	// ErrInvalidStatus is returned when decoding an unknown status code.
	ErrInvalidStatus = errors.New("invalid status code")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnavailableDaysError reports a booking conflict with the exact set of
// requested days that are already occupied, ascending.
type UnavailableDaysError struct {
	Days []Day
}

func (e *UnavailableDaysError) Error() string {
	days := make([]string, len(e.Days))
	for i, d := range e.Days {
		days[i] = d.String()
	}
	return fmt.Sprintf("days not available: %s", strings.Join(days, ", "))
}

func (e *UnavailableDaysError) Unwrap() error {
	return ErrDaysUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a booking conflict, rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidStay) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrDaysUnavailable) ||
		errors.Is(err, ErrReservationCancelled)
}

// IsNotFound returns true if the error indicates a missing reservation.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReservationNotFound)
}

// IsConflict returns true if the error indicates occupied days, whether
// detected by the pre-check or by the store's uniqueness invariant.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDaysUnavailable) || errors.Is(err, ErrDayTaken)
}
