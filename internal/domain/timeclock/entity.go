package timeclock

import (
	"time"
)

// EntryStatus is the lifecycle state of a TimeEntry.
type EntryStatus string

const (
	StatusActive    EntryStatus = "active"
	StatusCompleted EntryStatus = "completed"
	// StatusEdited marks a completed entry later corrected by an admin.
	// It is a terminal state reached outside the clock engine.
	StatusEdited EntryStatus = "edited"
)

// BreakType distinguishes meal breaks (unpaid, legally mandated windows)
// from rest breaks (short paid pauses).
type BreakType string

const (
	BreakTypeMeal BreakType = "meal"
	BreakTypeRest BreakType = "rest"
)

// Location is an opaque geolocation snapshot supplied by the caller at
// clock-in or clock-out. The engine never computes or verifies it.
type Location struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters *float64
	CapturedAt     time.Time
}

// TimeEntry is one working shift for one worker at one company.
type TimeEntry struct {
	ID        string
	CompanyID string
	WorkerID  string
	JobID     *string

	ClockIn          time.Time
	ClockOut         *time.Time
	ClockInLocation  *Location
	ClockOutLocation *Location
	ClockInPhotoRef  *string
	ClockOutPhotoRef *string

	// BreakMinutesAccrued is the unpaid break time subtracted from worked
	// time, accumulated as breaks are closed.
	BreakMinutesAccrued int

	Status EntryStatus

	AttestationCompleted bool
	AttestationAt        *time.Time
	AttestationSignature *string
	MissedMealBreak      bool
	MissedMealReason     *string
	MissedRestBreak      bool
	MissedRestReason     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Break is one meal or rest interval inside a TimeEntry. Rows are append-only:
// a break is created when it starts (or when a waiver is recorded) and closed
// by setting BreakEnd, never deleted.
type Break struct {
	ID          string
	TimeEntryID string
	// WorkerID is denormalized from the owning entry for query convenience.
	WorkerID string

	BreakType  BreakType
	BreakStart time.Time
	BreakEnd   *time.Time

	// Waived is true only for the first meal break of a short shift that the
	// worker voluntarily skipped. A waived break has no BreakEnd and does not
	// subtract from worked time.
	Waived bool

	CreatedAt time.Time
}

// Closed reports whether the break has ended. Waived breaks never close.
func (b Break) Closed() bool {
	return b.BreakEnd != nil
}

// Open reports whether the worker is currently inside this break.
func (b Break) Open() bool {
	return b.BreakEnd == nil && !b.Waived
}

// Duration returns the closed break's length, or zero for open and waived
// breaks.
func (b Break) Duration() time.Duration {
	if b.BreakEnd == nil {
		return 0
	}
	return b.BreakEnd.Sub(b.BreakStart)
}
