/*
types.go - Core domain types for the booking engine

PURPOSE:
  Defines the fundamental value types the engine operates on:

  Day:         A calendar day (UTC midnight). The unit of occupancy.
  Reservation: A guest's claim on a contiguous range of days.
  Status:      The closed reservation state enumeration.

RANGE CONVENTIONS (applied consistently everywhere):
  Occupancy is HALF-OPEN: a reservation for [arrival, departure) occupies
  the nights arrival .. departure-1. The departure day itself is free.

  Availability display is INCLUSIVE: a window [from, to] enumerates every
  day from 'from' through 'to'. This asymmetry between "nights occupied"
  and "days displayable as available" is deliberate.

  Nights() produces the half-open set; DaysInclusive() the inclusive one.
  Never mix them up at a call site.

SEE ALSO:
  - ledger.go: Claims/releases Day sets
  - service.go: Owns the Reservation lifecycle
*/
package booking

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar-day value type
// =============================================================================

// Day is a single calendar day, normalized to UTC midnight.
// Day values built through the constructors here are comparable with ==
// and usable as map keys.
type Day struct {
	Time time.Time
}

// NewDay builds a Day for a specific calendar date.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary instant to its UTC calendar day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// ParseDay parses an ISO date (YYYY-MM-DD).
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{Time: t}, nil
}

// Today returns the current UTC calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// Comparison
func (d Day) Before(other Day) bool { return d.Time.Before(other.Time) }
func (d Day) After(other Day) bool  { return d.Time.After(other.Time) }
func (d Day) Equal(other Day) bool  { return d.Time.Equal(other.Time) }
func (d Day) IsZero() bool          { return d.Time.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.Time.AddDate(0, 0, n)} }

func (d Day) String() string { return d.Time.Format("2006-01-02") }

// Nights returns the half-open range [arrival, departure): the days a stay
// actually occupies. Empty when arrival is not strictly before departure.
func Nights(arrival, departure Day) []Day {
	var days []Day
	for d := arrival; d.Before(departure); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// DaysInclusive returns every day in the inclusive window [from, to],
// ascending. Empty when to precedes from.
func DaysInclusive(from, to Day) []Day {
	var days []Day
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// =============================================================================
// STATUS - Closed reservation state enumeration
// =============================================================================

// Status is the reservation lifecycle state. Cancelled is terminal.
type Status int

const (
	StatusActive    Status = 0
	StatusCancelled Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Code returns the persisted integer code.
func (s Status) Code() int { return int(s) }

// StatusFromCode decodes a persisted status code. Unknown codes are a
// decode error, never a silent zero value.
func StatusFromCode(code int) (Status, error) {
	switch Status(code) {
	case StatusActive, StatusCancelled:
		return Status(code), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidStatus, code)
	}
}

// =============================================================================
// RESERVATION - The bookable entity
// =============================================================================

// ReservationID is an opaque, store-assigned identifier.
type ReservationID string

// Reservation is a guest's exclusive claim on the nights
// [Arrival, Departure). Arrival strictly precedes Departure.
// ID and the timestamps are assigned by the store on first persistence.
type Reservation struct {
	ID         ReservationID
	GuestName  string
	GuestEmail string
	Arrival    Day
	Departure  Day
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Nights returns the days this reservation currently occupies.
func (r *Reservation) Nights() []Day {
	return Nights(r.Arrival, r.Departure)
}
