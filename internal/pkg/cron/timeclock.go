package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	compliancedomain "github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	compliancesvc "github.com/fieldtrack/timeclock-backend-go/internal/service/compliance"
)

// ComplianceJobs periodically re-evaluates open shifts. Rule thresholds are
// crossed by the passage of time alone, so waiting for the next clock event
// would surface a missed meal break or double time hours late.
type ComplianceJobs struct {
	entryRepo timeclock.TimeEntryRepository
	breakRepo timeclock.BreakRepository
	alertRepo compliancedomain.AlertRepository
	hub       *sse.Hub
}

func NewComplianceJobs(
	entryRepo timeclock.TimeEntryRepository,
	breakRepo timeclock.BreakRepository,
	alertRepo compliancedomain.AlertRepository,
	hub *sse.Hub,
) *ComplianceJobs {
	return &ComplianceJobs{
		entryRepo: entryRepo,
		breakRepo: breakRepo,
		alertRepo: alertRepo,
		hub:       hub,
	}
}

func (j *ComplianceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("reevaluate_open_entries", 15*time.Minute, j.ReevaluateOpenEntries)
}

func (j *ComplianceJobs) ReevaluateOpenEntries(ctx context.Context) error {
	now := time.Now().UTC()

	entries, err := j.entryRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	raisedCount := 0
	worst := compliancedomain.SeverityInfo
	for _, entry := range entries {
		breaks, err := j.breakRepo.ListByEntry(ctx, entry.ID)
		if err != nil {
			slog.Error("Sweep failed to list breaks",
				"time_entry_id", entry.ID,
				"worker_id", entry.WorkerID,
				"error", err)
			continue
		}

		for _, alert := range compliancesvc.Evaluate(entry, breaks, now) {
			stored, created, err := j.alertRepo.Raise(ctx, alert)
			if err != nil {
				slog.Error("Sweep failed to raise alert",
					"time_entry_id", entry.ID,
					"alert_type", alert.AlertType,
					"error", err)
				continue
			}
			if !created {
				continue
			}

			raisedCount++
			if stored.Severity.WorseThan(worst) {
				worst = stored.Severity
			}
			if j.hub != nil {
				j.hub.Publish(stored.CompanyID, sse.Event{
					CompanyID: stored.CompanyID,
					Event:     "compliance_alert",
					Data:      stored,
				})
			}
		}
	}

	if raisedCount > 0 {
		slog.Info("Sweep raised compliance alerts for open shifts",
			"entries", len(entries), "raised", raisedCount, "worst_severity", worst)
	}
	return nil
}
