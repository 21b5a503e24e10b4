/*
ledger.go - The calendar ledger: single source of truth for occupied days

PURPOSE:
  The ledger is the exclusivity primitive. A calendar day is occupied if
  and only if it has a ledger entry, and the store enforces at most one
  entry per day. Claiming a set of days means inserting their entries;
  exclusion falls out of the uniqueness invariant.

INVARIANT:
  At most one ledger entry exists per date.

  An in-process lock cannot provide this guarantee: the store is the only
  thing shared across concurrent request handlers (and across processes
  in a multi-instance deployment). The per-date uniqueness invariant in
  the store is therefore the actual mutual-exclusion mechanism.

TWO LINES OF DEFENSE:
  1. Claim pre-checks the range and reports the exact conflicting day set.
     This is a latency/UX optimization: a visible conflict fails fast and
     descriptively, without paying for a doomed write.
  2. The store's uniqueness invariant catches the race the pre-check
     cannot close (check-then-act window between concurrent writers).
     An insert that trips it surfaces as the same conflict outcome.

  The pre-check alone is NOT safe under concurrency. Both are required.

OWNERSHIP:
  Ledger entries carry no reservation reference. Consistency with the
  owning reservation is maintained solely by mutating both inside one
  transaction - callers pass the transactional Store they received from
  TxStore.WithTx.

SEE ALSO:
  - store.go: CalendarStore contract (ErrDayTaken)
  - service.go: Wraps claim/release in lifecycle transactions
*/
package booking

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// CALENDAR LEDGER
// =============================================================================

// CalendarLedger exposes the occupancy set and the atomic exclusion
// primitive over a CalendarStore. When used inside a lifecycle transition,
// construct it over the transactional store so its mutations join the
// caller's transaction.
type CalendarLedger struct {
	store CalendarStore
}

func NewCalendarLedger(store CalendarStore) *CalendarLedger {
	return &CalendarLedger{store: store}
}

// OccupiedDays returns all occupied days in the inclusive window
// [from, to], ascending. Read-only.
func (l *CalendarLedger) OccupiedDays(ctx context.Context, from, to Day) ([]Day, error) {
	days, err := l.store.DaysInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("occupied days: %w", err)
	}
	return days, nil
}

// Claim atomically marks the given days occupied. All-or-nothing: if any
// day is already taken, nothing from this call persists and the error
// reports the conflicting set.
//
// The days must be ascending (Nights produces them that way).
func (l *CalendarLedger) Claim(ctx context.Context, days []Day) error {
	if len(days) == 0 {
		return nil
	}

	// Fast path: report exactly which requested days are occupied.
	occupied, err := l.store.DaysInRange(ctx, days[0], days[len(days)-1])
	if err != nil {
		return fmt.Errorf("claim pre-check: %w", err)
	}
	if taken := intersect(days, occupied); len(taken) > 0 {
		return &UnavailableDaysError{Days: taken}
	}

	// The store's per-date uniqueness invariant is the final arbiter: a
	// concurrent writer may win between the check and this insert.
	if err := l.store.InsertDays(ctx, days); err != nil {
		if errors.Is(err, ErrDayTaken) {
			return &UnavailableDaysError{Days: days}
		}
		return fmt.Errorf("claim days: %w", err)
	}
	return nil
}

// Release deletes the given ledger entries. Idempotent: releasing a day
// that is not occupied is not an error.
func (l *CalendarLedger) Release(ctx context.Context, days []Day) error {
	if len(days) == 0 {
		return nil
	}
	if err := l.store.DeleteDays(ctx, days); err != nil {
		return fmt.Errorf("release days: %w", err)
	}
	return nil
}

// intersect returns the members of requested that appear in occupied,
// preserving requested's ascending order.
func intersect(requested, occupied []Day) []Day {
	set := make(map[Day]bool, len(occupied))
	for _, d := range occupied {
		set[d] = true
	}
	var taken []Day
	for _, d := range requested {
		if set[d] {
			taken = append(taken, d)
		}
	}
	return taken
}
