/*
service.go - Reservation lifecycle orchestration

PURPOSE:
  Drives a reservation through its state machine against the calendar
  ledger, each transition executed as one atomic store transaction.

STATE MACHINE:
  NEW -> ACTIVE -> CANCELLED
  ACTIVE -> ACTIVE (update: new range and/or guest fields)

  CANCELLED is terminal. Any further mutation attempt fails with
  ErrReservationCancelled. Reservations are never physically deleted.

TRANSACTION DISCIPLINE:
  Create, Update and Cancel each run wholly inside TxStore.WithTx: the
  ledger pre-check, the ledger mutations and the reservation row write
  commit together or roll back together. A conflict (including a store
  uniqueness violation that the pre-check missed) aborts the transaction
  with no visible state change. Get runs no transaction.

UPDATE SEMANTICS:
  The conflict check runs against the NEW range but exempts days held by
  this reservation's own CURRENT range - shrinking or extending over your
  own span must succeed, only third-party days conflict. The current
  entries are then released and the new set claimed, all in the same
  transaction, so the release is never visible if the claim fails.

  Guest fields use the optional-field pattern: a nil pointer means
  "leave unchanged", never "clear". Arrival/departure are always
  overwritten.

SEE ALSO:
  - ledger.go: Claim/Release primitives
  - availability.go: Read-only free-day computation
*/
package booking

import (
	"context"
	"fmt"
)

// =============================================================================
// SERVICE - Reservation lifecycle
// =============================================================================

// Service orchestrates reservation state transitions. The engine performs
// no retries: on conflict the caller decides whether to re-check
// availability and resubmit.
type Service struct {
	store TxStore
}

func NewService(store TxStore) *Service {
	return &Service{store: store}
}

// UpdateParams carries the fields of an update. Nil guest pointers leave
// the stored value unchanged; Arrival/Departure always overwrite.
type UpdateParams struct {
	GuestName  *string
	GuestEmail *string
	Arrival    Day
	Departure  Day
}

// Create books the nights [arrival, departure) for a guest.
// Returns UnavailableDaysError with the exact occupied intersection when
// any requested night is taken.
func (s *Service) Create(ctx context.Context, guestName, guestEmail string, arrival, departure Day) (*Reservation, error) {
	if !arrival.Before(departure) {
		return nil, ErrInvalidStay
	}

	var created *Reservation
	err := s.store.WithTx(ctx, func(tx Store) error {
		ledger := NewCalendarLedger(tx)
		if err := ledger.Claim(ctx, Nights(arrival, departure)); err != nil {
			return err
		}

		r := &Reservation{
			GuestName:  guestName,
			GuestEmail: guestEmail,
			Arrival:    arrival,
			Departure:  departure,
			Status:     StatusActive,
		}
		saved, err := tx.InsertReservation(ctx, r)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update moves an active reservation to a new range and optionally new
// guest fields. A day only conflicts if occupied by some OTHER
// reservation; the reservation's own current nights are exempt.
func (s *Service) Update(ctx context.Context, id ReservationID, params UpdateParams) (*Reservation, error) {
	if !params.Arrival.Before(params.Departure) {
		return nil, ErrInvalidStay
	}

	var updated *Reservation
	err := s.store.WithTx(ctx, func(tx Store) error {
		r, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status == StatusCancelled {
			return ErrReservationCancelled
		}

		ledger := NewCalendarLedger(tx)

		// Conflict check over the new half-open range, minus our own
		// currently held nights.
		newNights := Nights(params.Arrival, params.Departure)
		occupied, err := ledger.OccupiedDays(ctx, newNights[0], newNights[len(newNights)-1])
		if err != nil {
			return err
		}
		if taken := subtract(intersect(newNights, occupied), r.Nights()); len(taken) > 0 {
			return &UnavailableDaysError{Days: taken}
		}

		// Release-then-claim inside this transaction: the release is
		// rolled back, never observed, if the claim fails.
		if err := ledger.Release(ctx, r.Nights()); err != nil {
			return err
		}
		if err := ledger.Claim(ctx, newNights); err != nil {
			return err
		}

		if params.GuestName != nil {
			r.GuestName = *params.GuestName
		}
		if params.GuestEmail != nil {
			r.GuestEmail = *params.GuestEmail
		}
		r.Arrival = params.Arrival
		r.Departure = params.Departure

		saved, err := tx.UpdateReservation(ctx, r)
		if err != nil {
			return fmt.Errorf("update reservation: %w", err)
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel releases all of the reservation's nights and marks it cancelled.
// A second cancel on the same id fails with ErrReservationCancelled.
func (s *Service) Cancel(ctx context.Context, id ReservationID) (*Reservation, error) {
	var cancelled *Reservation
	err := s.store.WithTx(ctx, func(tx Store) error {
		r, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status == StatusCancelled {
			return ErrReservationCancelled
		}

		ledger := NewCalendarLedger(tx)
		if err := ledger.Release(ctx, r.Nights()); err != nil {
			return err
		}

		r.Status = StatusCancelled
		saved, err := tx.UpdateReservation(ctx, r)
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		cancelled = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Get returns a reservation by id. Pure read, no transaction.
func (s *Service) Get(ctx context.Context, id ReservationID) (*Reservation, error) {
	return s.load(ctx, s.store, id)
}

func (s *Service) load(ctx context.Context, store Store, id ReservationID) (*Reservation, error) {
	r, err := store.FindReservation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}
	return r, nil
}

// subtract removes the members of exempt from days, preserving order.
func subtract(days, exempt []Day) []Day {
	set := make(map[Day]bool, len(exempt))
	for _, d := range exempt {
		set[d] = true
	}
	var rest []Day
	for _, d := range days {
		if !set[d] {
			rest = append(rest, d)
		}
	}
	return rest
}
