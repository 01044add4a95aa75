package timeclock

import (
	"context"
)

// TimeClockService defines the time entry state machine: clock events enter
// here, mutate the clock model, and trigger compliance re-evaluation.
type TimeClockService interface {
	// ClockIn opens a new active time entry for the authenticated worker.
	ClockIn(ctx context.Context, req ClockInRequest) (TimeEntryResponse, error)

	// ClockOut finalizes the active entry. Requires a completed attestation
	// payload and no open break.
	ClockOut(ctx context.Context, req ClockOutRequest) (TimeEntryResponse, error)

	// StartBreak opens a meal or rest break on the active entry.
	StartBreak(ctx context.Context, req StartBreakRequest) (TimeEntryResponse, error)

	// EndBreak closes the break currently in progress.
	EndBreak(ctx context.Context) (TimeEntryResponse, error)

	// WaiveMealBreak records a voluntary first-meal-break waiver, allowed
	// only between hour 4 and hour 6 of the shift.
	WaiveMealBreak(ctx context.Context) (TimeEntryResponse, error)

	// GetStatus reports the worker's current clock state.
	GetStatus(ctx context.Context) (EntryStatusResponse, error)

	// ListMyEntries retrieves the worker's entries with filters.
	ListMyEntries(ctx context.Context, filter EntryFilter) (ListEntriesResponse, error)
}
