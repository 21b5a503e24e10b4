package booking

import "context"

// =============================================================================
// AVAILABILITY - Read-only free-day computation
// =============================================================================

// Availability computes which days in an inclusive window are free.
// It is a pure function of ledger state at call time: no transaction or
// lock is held across the read, so the view may be stale under concurrent
// writers. That is accepted - this is a best-effort display, not a
// reservation.
type Availability struct {
	ledger *CalendarLedger
}

func NewAvailability(store CalendarStore) *Availability {
	return &Availability{ledger: NewCalendarLedger(store)}
}

// AvailableDays returns every day in the inclusive window [from, to] that
// has no ledger entry, ascending.
func (a *Availability) AvailableDays(ctx context.Context, from, to Day) ([]Day, error) {
	if to.Before(from) {
		return nil, ErrInvalidWindow
	}

	occupied, err := a.ledger.OccupiedDays(ctx, from, to)
	if err != nil {
		return nil, err
	}

	taken := make(map[Day]bool, len(occupied))
	for _, d := range occupied {
		taken[d] = true
	}

	var free []Day
	for _, d := range DaysInclusive(from, to) {
		if !taken[d] {
			free = append(free, d)
		}
	}
	return free, nil
}
