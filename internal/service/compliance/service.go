package compliance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
)

type ComplianceServiceImpl struct {
	alertRepo compliance.AlertRepository
	entryRepo timeclock.TimeEntryRepository
	breakRepo timeclock.BreakRepository
	hub       *sse.Hub
}

func NewComplianceService(
	alertRepo compliance.AlertRepository,
	entryRepo timeclock.TimeEntryRepository,
	breakRepo timeclock.BreakRepository,
	hub *sse.Hub,
) compliance.ComplianceService {
	return &ComplianceServiceImpl{
		alertRepo: alertRepo,
		entryRepo: entryRepo,
		breakRepo: breakRepo,
		hub:       hub,
	}
}

func claimsFromContext(ctx context.Context) (companyID string, workerID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	workerID, ok = claims["worker_id"].(string)
	if !ok || workerID == "" {
		return "", "", fmt.Errorf("worker_id claim is missing or invalid")
	}

	return companyID, workerID, nil
}

// EvaluateEntry implements compliance.ComplianceService.
func (s *ComplianceServiceImpl) EvaluateEntry(ctx context.Context, entryID string) ([]compliance.AlertResponse, error) {
	companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	entry, err := s.entryRepo.GetByID(ctx, entryID, companyID)
	if err != nil {
		return nil, err
	}

	breaks, err := s.breakRepo.ListByEntry(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}

	for _, alert := range Evaluate(entry, breaks, now) {
		stored, created, err := s.alertRepo.Raise(ctx, alert)
		if err != nil {
			return nil, fmt.Errorf("failed to raise compliance alert: %w", err)
		}
		if created && s.hub != nil {
			s.hub.Publish(stored.CompanyID, sse.Event{
				CompanyID: stored.CompanyID,
				Event:     "compliance_alert",
				Data:      stored,
			})
		}
	}

	alerts, err := s.alertRepo.ListByEntry(ctx, entry.ID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	responses := make([]compliance.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, mapAlertToResponse(alert))
	}
	return responses, nil
}

// EvaluateWeek implements compliance.ComplianceService.
//
// The weekly overtime check is computed on demand from stored entries rather
// than persisted: a weekly alert is not tied to one time entry, so the
// per-entry dedup upsert cannot address it.
func (s *ComplianceServiceImpl) EvaluateWeek(ctx context.Context) (compliance.WeeklyComplianceResponse, error) {
	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return compliance.WeeklyComplianceResponse{}, err
	}
	now := time.Now().UTC()

	weekStart := PayWeekStart(now)

	minutes, err := s.entryRepo.WeekWorkedMinutes(ctx, companyID, workerID, weekStart)
	if err != nil {
		return compliance.WeeklyComplianceResponse{}, fmt.Errorf("failed to sum weekly worked minutes: %w", err)
	}
	hours := float64(minutes) / 60

	resp := compliance.WeeklyComplianceResponse{
		WeekStart:   weekStart.Format("2006-01-02"),
		HoursWorked: math.Round(hours*100) / 100,
		Alerts:      []compliance.AlertResponse{},
	}

	if alert := WeeklyOvertime(companyID, workerID, hours); alert != nil {
		alert.CreatedAt = now
		resp.Alerts = append(resp.Alerts, mapAlertToResponse(*alert))
	}

	return resp, nil
}

// ListAlerts implements compliance.ComplianceService.
func (s *ComplianceServiceImpl) ListAlerts(ctx context.Context, filter compliance.AlertFilter) (compliance.ListAlertsResponse, error) {
	if err := filter.Validate(); err != nil {
		return compliance.ListAlertsResponse{}, err
	}

	companyID, _, err := claimsFromContext(ctx)
	if err != nil {
		return compliance.ListAlertsResponse{}, err
	}

	alerts, total, err := s.alertRepo.ListOpenByCompany(ctx, companyID, filter)
	if err != nil {
		return compliance.ListAlertsResponse{}, fmt.Errorf("failed to list alerts: %w", err)
	}

	responses := make([]compliance.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, mapAlertToResponse(alert))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return compliance.ListAlertsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Alerts:     responses,
	}, nil
}

// AcknowledgeAlert implements compliance.ComplianceService.
func (s *ComplianceServiceImpl) AcknowledgeAlert(ctx context.Context, alertID string) error {
	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.alertRepo.Acknowledge(ctx, alertID, companyID, workerID); err != nil {
		return err
	}
	return nil
}

// PayWeekStart returns the start of the pay week containing t: Monday 00:00
// UTC.
func PayWeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -daysSinceMonday)
}

func mapAlertToResponse(alert compliance.Alert) compliance.AlertResponse {
	var acknowledgedAt *string
	if alert.AcknowledgedAt != nil {
		formatted := alert.AcknowledgedAt.UTC().Format(time.RFC3339)
		acknowledgedAt = &formatted
	}

	return compliance.AlertResponse{
		ID:             alert.ID,
		WorkerID:       alert.WorkerID,
		TimeEntryID:    alert.TimeEntryID,
		AlertType:      string(alert.AlertType),
		Severity:       string(alert.Severity),
		Title:          alert.Title,
		Description:    alert.Description,
		HoursWorked:    alert.HoursWorked,
		Acknowledged:   alert.Acknowledged,
		AcknowledgedAt: acknowledgedAt,
		AcknowledgedBy: alert.AcknowledgedBy,
		CreatedAt:      alert.CreatedAt.UTC().Format(time.RFC3339),
	}
}
