package timeclock

import (
	"context"
	"time"
)

// TimeEntryRepository defines data access for time entries. All methods take
// companyID to prevent cross-company data access.
type TimeEntryRepository interface {
	// Create inserts a new entry. The storage layer carries a partial unique
	// index on (company_id, worker_id) WHERE status = 'active' as a backstop
	// for the one-active-entry invariant; Create returns ErrAlreadyClockedIn
	// when that constraint rejects the row.
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// GetActiveEntry returns the worker's active entry, or ErrEntryNotFound.
	GetActiveEntry(ctx context.Context, companyID, workerID string) (TimeEntry, error)

	// GetByID retrieves an entry by ID with company isolation.
	GetByID(ctx context.Context, id, companyID string) (TimeEntry, error)

	// Update persists mutated entry fields.
	Update(ctx context.Context, entry TimeEntry) error

	// ListByWorker retrieves a worker's entries with filters and pagination.
	ListByWorker(ctx context.Context, companyID, workerID string, filter EntryFilter) ([]TimeEntry, int64, error)

	// WeekWorkedMinutes sums worked minutes (clocked spans minus accrued
	// break minutes) for entries starting in [weekStart, weekStart+7d).
	// An entry still open counts up to now, so the weekly overtime rule
	// sees hours as they accumulate rather than only after clock-out.
	WeekWorkedMinutes(ctx context.Context, companyID, workerID string, weekStart time.Time) (int, error)

	// ListActive returns every active entry across all companies, used by the
	// periodic sweep that re-evaluates open shifts between clock events.
	ListActive(ctx context.Context) ([]TimeEntry, error)
}

// BreakRepository defines data access for break records. Breaks are
// append-only: rows are created and closed, never deleted, so the full break
// history of a shift stays queryable for attestation and reporting.
type BreakRepository interface {
	// Append inserts a new break record (open or waived).
	Append(ctx context.Context, brk Break) (Break, error)

	// Close sets break_end on an open break.
	Close(ctx context.Context, id string, end time.Time) error

	// ListByEntry returns all breaks of an entry ordered by break_start.
	ListByEntry(ctx context.Context, entryID string) ([]Break, error)
}
