package compliance

import (
	"time"
)

// AlertType identifies the rule that produced an alert.
type AlertType string

const (
	AlertMealBreakDue      AlertType = "meal_break_due"
	AlertMealBreakMissed   AlertType = "meal_break_missed"
	AlertRestBreakDue      AlertType = "rest_break_due"
	AlertOvertimeWarning   AlertType = "overtime_warning"
	AlertDoubleTimeWarning AlertType = "double_time_warning"
)

// Severity orders alerts for dashboard triage. violation > warning > info.
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityViolation Severity = "violation"
)

var severityRank = map[Severity]int{
	SeverityInfo:      0,
	SeverityWarning:   1,
	SeverityViolation: 2,
}

// WorseThan reports whether s is strictly more severe than other.
func (s Severity) WorseThan(other Severity) bool {
	return severityRank[s] > severityRank[other]
}

// Alert is a derived, addressable fact about a worker's current shift: a rule
// threshold was crossed. The rule engine emits alerts; it never deletes or
// acknowledges them.
type Alert struct {
	ID          string
	CompanyID   string
	WorkerID    string
	TimeEntryID *string

	AlertType   AlertType
	Severity    Severity
	Title       string
	Description string

	// HoursWorked is the elapsed worked-hours value that triggered the
	// alert, kept for audit.
	HoursWorked float64

	Acknowledged   bool
	AcknowledgedAt *time.Time
	AcknowledgedBy *string

	CreatedAt time.Time
}
