// Package attestation assembles and validates the legally required
// self-report a worker submits at clock-out. The workflow does not decide
// whether breaks were actually missed; it only requires the worker to state
// so affirmatively, with a reason, before the shift can be finalized.
package attestation

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingReason    = errors.New("a reason is required when a missed break is reported")
	ErrMissingSignature = errors.New("a signature is required to complete the attestation")
)

// Payload is the raw attestation submitted with a clock-out request.
type Payload struct {
	MissedMealBreak  bool   `json:"missed_meal_break"`
	MissedMealReason string `json:"missed_meal_reason,omitempty"`
	MissedRestBreak  bool   `json:"missed_rest_break"`
	MissedRestReason string `json:"missed_rest_reason,omitempty"`
	// Signature is an opaque artifact (e.g. a base64 stroke capture). The
	// engine only requires it to be non-empty.
	Signature string `json:"signature"`
}

// Attestation is the normalized record the state machine attaches to a
// completed time entry.
type Attestation struct {
	MissedMealBreak  bool
	MissedMealReason *string
	MissedRestBreak  bool
	MissedRestReason *string
	Signature        string
	CompletedAt      time.Time
}

// Validate checks the payload and returns the normalized attestation.
// A missed-break flag without a reason fails with ErrMissingReason; an empty
// signature fails with ErrMissingSignature.
func Validate(p Payload, now time.Time) (Attestation, error) {
	mealReason := strings.TrimSpace(p.MissedMealReason)
	restReason := strings.TrimSpace(p.MissedRestReason)

	if p.MissedMealBreak && mealReason == "" {
		return Attestation{}, ErrMissingReason
	}
	if p.MissedRestBreak && restReason == "" {
		return Attestation{}, ErrMissingReason
	}
	if strings.TrimSpace(p.Signature) == "" {
		return Attestation{}, ErrMissingSignature
	}

	att := Attestation{
		MissedMealBreak: p.MissedMealBreak,
		MissedRestBreak: p.MissedRestBreak,
		Signature:       p.Signature,
		CompletedAt:     now,
	}
	if p.MissedMealBreak {
		att.MissedMealReason = &mealReason
	}
	if p.MissedRestBreak {
		att.MissedRestReason = &restReason
	}
	return att, nil
}
