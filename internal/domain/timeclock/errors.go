package timeclock

import "errors"

// Time clock domain errors. Each is a precondition violation detected by the
// component that owns the invariant; they are returned to the caller and
// never retried inside the engine.
var (
	// Clock-in/out errors
	ErrAlreadyClockedIn    = errors.New("you already have an active time entry")
	ErrEntryNotActive      = errors.New("time entry is not active")
	ErrOnBreak             = errors.New("you are on a break; end it before clocking out")
	ErrAttestationRequired = errors.New("a completed attestation is required to clock out")

	// Break errors
	ErrAlreadyOnBreak   = errors.New("you are already on a break")
	ErrNoActiveBreak    = errors.New("no break is currently in progress")
	ErrWaiverNotAllowed = errors.New("meal break waiver is not available for this shift")

	// General errors
	ErrEntryNotFound = errors.New("time entry not found")
	ErrUnauthorized  = errors.New("unauthorized to access this time entry")
)
