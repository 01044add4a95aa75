package compliance

import (
	"strings"

	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/validator"
)

type AlertResponse struct {
	ID             string  `json:"id"`
	WorkerID       string  `json:"worker_id"`
	TimeEntryID    *string `json:"time_entry_id,omitempty"`
	AlertType      string  `json:"alert_type"`
	Severity       string  `json:"severity"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	HoursWorked    float64 `json:"hours_worked"`
	Acknowledged   bool    `json:"acknowledged"`
	AcknowledgedAt *string `json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string `json:"acknowledged_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

type AlertFilter struct {
	WorkerID *string `json:"worker_id,omitempty"`
	Severity *string `json:"severity,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AlertFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Severity != nil {
		validSeverities := []string{string(SeverityInfo), string(SeverityWarning), string(SeverityViolation)}
		if !validator.IsInSlice(strings.ToLower(*f.Severity), validSeverities) {
			errs = append(errs, validator.ValidationError{
				Field:   "severity",
				Message: "severity must be one of: info, warning, violation",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListAlertsResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Alerts     []AlertResponse `json:"alerts"`
}

// WeeklyComplianceResponse reports the weekly overtime evaluation for a
// worker's current pay week.
type WeeklyComplianceResponse struct {
	WeekStart   string          `json:"week_start"`
	HoursWorked float64         `json:"hours_worked"`
	Alerts      []AlertResponse `json:"alerts"`
}
