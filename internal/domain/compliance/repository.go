package compliance

import (
	"context"
)

// AlertRepository is the external alert store. Deduplication of
// still-relevant alerts is this layer's responsibility, not the rule
// engine's: Raise upserts by (time_entry_id, alert_type) so idempotent
// re-evaluation of the same history never duplicates or disturbs
// previously acknowledged alerts.
type AlertRepository interface {
	// Raise persists an alert emitted by the rule engine. Returns the stored
	// row and whether it was newly created (false when an unacknowledged
	// alert for the same entry and type already existed and was refreshed).
	Raise(ctx context.Context, alert Alert) (Alert, bool, error)

	// ListByEntry returns all alerts for one time entry.
	ListByEntry(ctx context.Context, entryID, companyID string) ([]Alert, error)

	// ListOpenByCompany returns unacknowledged alerts across a company for
	// dashboard triage, ordered by severity then recency.
	ListOpenByCompany(ctx context.Context, companyID string, filter AlertFilter) ([]Alert, int64, error)

	// Acknowledge marks an alert acknowledged by a user. Fails with
	// ErrAlertNotFound or ErrAlreadyAcknowledged.
	Acknowledge(ctx context.Context, id, companyID, userID string) error
}
