package compliance

import (
	"context"
)

// ComplianceService exposes rule evaluation and alert triage to dashboards
// and worker clients.
type ComplianceService interface {
	// EvaluateEntry recomputes the current alert set for one time entry from
	// its persisted history and persists any newly crossed thresholds.
	EvaluateEntry(ctx context.Context, entryID string) ([]AlertResponse, error)

	// EvaluateWeek applies the weekly overtime rule to the authenticated
	// worker's current pay week.
	EvaluateWeek(ctx context.Context) (WeeklyComplianceResponse, error)

	// ListAlerts returns open alerts across the company.
	ListAlerts(ctx context.Context, filter AlertFilter) (ListAlertsResponse, error)

	// AcknowledgeAlert marks an alert acknowledged by the calling user.
	AcknowledgeAlert(ctx context.Context, alertID string) error
}
