package timeclock

import (
	"time"
)

// HoursWorked returns the elapsed worked hours of an entry as of the given
// instant: clock-in to asOf (or clock-out if the entry is closed), minus the
// sum of closed non-waived break durations, minus the elapsed portion of any
// break still open. Breaks reduce worked time even while in progress, since
// the worker is not working during them. Never negative.
func HoursWorked(entry TimeEntry, breaks []Break, asOf time.Time) float64 {
	end := asOf
	if entry.ClockOut != nil {
		end = *entry.ClockOut
	}

	worked := end.Sub(entry.ClockIn)
	for _, b := range breaks {
		if b.Waived {
			continue
		}
		if b.BreakEnd != nil {
			worked -= b.BreakEnd.Sub(b.BreakStart)
			continue
		}
		if end.After(b.BreakStart) {
			worked -= end.Sub(b.BreakStart)
		}
	}

	if worked < 0 {
		return 0
	}
	return worked.Hours()
}

// IsOnBreak reports whether any break is open and not waived. Derived from
// the append-only break history so no in-memory session state is needed.
func IsOnBreak(breaks []Break) bool {
	for _, b := range breaks {
		if b.Open() {
			return true
		}
	}
	return false
}
