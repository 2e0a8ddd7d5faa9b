package interval

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTable is returned by Validate for an unusable interval table.
var ErrInvalidTable = errors.New("interval: invalid table")

// Table is the ordered sequence of day counts between successive reviews
// of a batch. Entry r is the gap scheduled after completing round r.
type Table []int

// DefaultTable provides the interval table new profiles start with.
func DefaultTable() Table {
	return Table{0, 1, 2, 3, 2, 1, 4}
}

// Validate checks that the table has at least one entry and no negative gaps.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no intervals", ErrInvalidTable)
	}
	for i, days := range t {
		if days < 0 {
			return fmt.Errorf("%w: interval %d is negative (%d)", ErrInvalidTable, i, days)
		}
	}
	return nil
}

// MaxRound is the round at which a completed batch is retired instead of
// being rescheduled.
func (t Table) MaxRound() int {
	return len(t) - 1
}

// Days returns the gap scheduled after completing the given round.
// Rounds past the end of the table reuse the last entry.
func (t Table) Days(round int) int {
	if round < 0 {
		round = 0
	}
	if round >= len(t) {
		round = len(t) - 1
	}
	return t[round]
}

// NextDueDate calculates the next review day after completing round on today.
func (t Table) NextDueDate(today time.Time, round int) time.Time {
	return today.AddDate(0, 0, t.Days(round))
}

// Day truncates a timestamp to local midnight so dates compare by calendar day.
func Day(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}
