package compliance

import (
	"fmt"
	"math"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
)

// California-style thresholds, in worked hours.
const (
	firstMealDueHours    = 5.0
	firstMealMissedHours = 6.0
	secondMealHours      = 10.0
	restBreakEveryHours  = 4.0
	dailyOvertimeHours   = 8.0
	dailyDoubleTimeHours = 12.0
	weeklyOvertimeHours  = 40.0

	mealWaiverMinHours = 4.0
	mealWaiverMaxHours = 6.0
)

// Evaluate is the compliance rule engine: given an entry, its break history
// and an evaluation instant it returns the set of alerts that should
// currently be active. It is pure and deterministic: the same history always
// yields the same alert set. It never fails; ambiguous break history
// skips only the break-derived rules, and non-positive worked time yields an
// empty set.
func Evaluate(entry timeclock.TimeEntry, breaks []timeclock.Break, asOf time.Time) []compliance.Alert {
	hours := timeclock.HoursWorked(entry, breaks, asOf)
	if hours <= 0 {
		return nil
	}

	var alerts []compliance.Alert
	if breaksConsistent(breaks) {
		alerts = append(alerts, mealBreakAlerts(entry, breaks, hours)...)
		if a := restBreakAlert(entry, breaks, hours); a != nil {
			alerts = append(alerts, *a)
		}
	}
	if a := dailyOvertimeAlert(entry, hours); a != nil {
		alerts = append(alerts, *a)
	}
	return alerts
}

// MealWaiverAllowed reports whether the first-meal-break waiver is legally
// available: the shift so far is at least 4 but under 6 hours and no meal
// break record of any kind (taken, open, or already waived) exists.
func MealWaiverAllowed(hoursWorked float64, breaks []timeclock.Break) bool {
	if hoursWorked < mealWaiverMinHours || hoursWorked >= mealWaiverMaxHours {
		return false
	}
	for _, b := range breaks {
		if b.BreakType == timeclock.BreakTypeMeal {
			return false
		}
	}
	return true
}

// WeeklyOvertime applies the overtime threshold at the pay-week granularity.
// Returns nil when the week is under 40 worked hours.
func WeeklyOvertime(companyID, workerID string, hoursThisWeek float64) *compliance.Alert {
	if hoursThisWeek <= weeklyOvertimeHours {
		return nil
	}
	return &compliance.Alert{
		CompanyID:   companyID,
		WorkerID:    workerID,
		AlertType:   compliance.AlertOvertimeWarning,
		Severity:    compliance.SeverityInfo,
		Title:       "Weekly overtime",
		Description: fmt.Sprintf("%.2f hours worked this pay week; hours beyond 40 are payable at the 1.5x overtime rate.", hoursThisWeek),
		HoursWorked: hoursThisWeek,
	}
}

// breaksConsistent reports whether the break history is usable by the
// break-derived rules. Two simultaneously open breaks cannot happen through
// the break tracker; if history arrives in that state the meal and rest rules
// are skipped rather than guessed at.
func breaksConsistent(breaks []timeclock.Break) bool {
	open := 0
	for _, b := range breaks {
		if b.Open() {
			open++
		}
	}
	return open <= 1
}

func mealBreakAlerts(entry timeclock.TimeEntry, breaks []timeclock.Break, hours float64) []compliance.Alert {
	mealsTaken := 0
	for _, b := range breaks {
		if b.BreakType == timeclock.BreakTypeMeal && !b.Waived {
			mealsTaken++
		}
	}

	var alerts []compliance.Alert

	// First meal break. A recorded waiver satisfies the obligation only
	// while the shift stays under six hours; past that the waiver is no
	// longer legally valid and the break counts as missed.
	if mealsTaken == 0 {
		switch {
		case hours >= firstMealMissedHours:
			alerts = append(alerts, newAlert(entry, hours,
				compliance.AlertMealBreakMissed, compliance.SeverityViolation,
				"Meal break missed",
				fmt.Sprintf("%.2f hours worked with no meal break taken; the break window has elapsed and a waiver is no longer available.", hours),
			))
		case hours >= firstMealDueHours && !hasMealWaiver(breaks):
			alerts = append(alerts, newAlert(entry, hours,
				compliance.AlertMealBreakDue, compliance.SeverityWarning,
				"Meal break due",
				fmt.Sprintf("%.2f hours worked with no meal break; a meal break must start before the sixth hour.", hours),
			))
		}
	}

	// Second meal break: owed at ten hours and, unlike the first, never
	// waivable.
	if hours >= secondMealHours && mealsTaken < 2 {
		alerts = append(alerts, newAlert(entry, hours,
			compliance.AlertMealBreakMissed, compliance.SeverityViolation,
			"Second meal break missed",
			fmt.Sprintf("%.2f hours worked with no second meal break; the second meal break cannot be waived.", hours),
		))
	}

	return alerts
}

func hasMealWaiver(breaks []timeclock.Break) bool {
	for _, b := range breaks {
		if b.BreakType == timeclock.BreakTypeMeal && b.Waived {
			return true
		}
	}
	return false
}

// restBreakAlert reports the rest-break shortfall as a single alert; the
// count in the description communicates the magnitude.
func restBreakAlert(entry timeclock.TimeEntry, breaks []timeclock.Break, hours float64) *compliance.Alert {
	required := int(math.Floor(hours / restBreakEveryHours))
	if required == 0 {
		return nil
	}

	taken := 0
	for _, b := range breaks {
		if b.BreakType == timeclock.BreakTypeRest && b.Closed() {
			taken++
		}
	}
	if taken >= required {
		return nil
	}

	a := newAlert(entry, hours,
		compliance.AlertRestBreakDue, compliance.SeverityWarning,
		"Rest break due",
		fmt.Sprintf("%d rest break(s) required for %.2f hours worked, %d taken.", required, hours, taken),
	)
	return &a
}

// dailyOvertimeAlert raises the double-time alert instead of, not in addition
// to, the standard overtime alert: double time supersedes 1.5x beyond twelve
// hours.
func dailyOvertimeAlert(entry timeclock.TimeEntry, hours float64) *compliance.Alert {
	switch {
	case hours > dailyDoubleTimeHours:
		a := newAlert(entry, hours,
			compliance.AlertDoubleTimeWarning, compliance.SeverityViolation,
			"Daily double time",
			fmt.Sprintf("%.2f hours worked; hours beyond 12 are payable at the 2x double-time rate.", hours),
		)
		return &a
	case hours > dailyOvertimeHours:
		a := newAlert(entry, hours,
			compliance.AlertOvertimeWarning, compliance.SeverityInfo,
			"Daily overtime",
			fmt.Sprintf("%.2f hours worked; hours beyond 8 are payable at the 1.5x overtime rate.", hours),
		)
		return &a
	}
	return nil
}

func newAlert(entry timeclock.TimeEntry, hours float64, alertType compliance.AlertType, severity compliance.Severity, title, description string) compliance.Alert {
	entryID := entry.ID
	return compliance.Alert{
		CompanyID:   entry.CompanyID,
		WorkerID:    entry.WorkerID,
		TimeEntryID: &entryID,
		AlertType:   alertType,
		Severity:    severity,
		Title:       title,
		Description: description,
		HoursWorked: hours,
	}
}
