package response

import (
	"errors"
	"net/http"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/attestation"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/auth"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/worker"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, worker.ErrWorkerInactive):
		Forbidden(w, "Worker account is inactive")
	case errors.Is(err, worker.ErrWorkerNotFound):
		NotFound(w, "Worker not found")

	// Time clock domain errors
	case errors.Is(err, timeclock.ErrAlreadyClockedIn):
		Conflict(w, "Worker is already clocked in")
	case errors.Is(err, timeclock.ErrEntryNotActive):
		Conflict(w, "Worker has no active time entry")
	case errors.Is(err, timeclock.ErrAlreadyOnBreak):
		Conflict(w, "A break is already in progress")
	case errors.Is(err, timeclock.ErrNoActiveBreak):
		Conflict(w, "No break is in progress")
	case errors.Is(err, timeclock.ErrOnBreak):
		Conflict(w, "End the current break before clocking out")
	case errors.Is(err, timeclock.ErrWaiverNotAllowed):
		Conflict(w, "Meal break waiver conditions are not met")
	case errors.Is(err, timeclock.ErrAttestationRequired):
		BadRequest(w, "A completed attestation is required to clock out", nil)
	case errors.Is(err, timeclock.ErrEntryNotFound):
		NotFound(w, "Time entry not found")
	case errors.Is(err, timeclock.ErrUnauthorized):
		Forbidden(w, "Not allowed for this time entry")

	// Attestation errors
	case errors.Is(err, attestation.ErrMissingReason):
		BadRequest(w, "A reason is required for each reported missed break", nil)
	case errors.Is(err, attestation.ErrMissingSignature):
		BadRequest(w, "A signature is required to complete the attestation", nil)

	// Compliance domain errors
	case errors.Is(err, compliance.ErrAlertNotFound):
		NotFound(w, "Compliance alert not found")
	case errors.Is(err, compliance.ErrAlreadyAcknowledged):
		Conflict(w, "Compliance alert has already been acknowledged")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
