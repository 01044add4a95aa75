package compliance

import (
	"testing"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engineTestStart = time.Date(2026, 8, 24, 7, 0, 0, 0, time.UTC)

func engineTestEntry(clockIn time.Time) timeclock.TimeEntry {
	return timeclock.TimeEntry{
		ID:        "entry-1",
		CompanyID: "company-1",
		WorkerID:  "worker-1",
		ClockIn:   clockIn,
		Status:    timeclock.StatusActive,
	}
}

func closedBreak(breakType timeclock.BreakType, start time.Time, duration time.Duration) timeclock.Break {
	end := start.Add(duration)
	return timeclock.Break{
		TimeEntryID: "entry-1",
		WorkerID:    "worker-1",
		BreakType:   breakType,
		BreakStart:  start,
		BreakEnd:    &end,
	}
}

func openBreak(breakType timeclock.BreakType, start time.Time) timeclock.Break {
	return timeclock.Break{
		TimeEntryID: "entry-1",
		WorkerID:    "worker-1",
		BreakType:   breakType,
		BreakStart:  start,
	}
}

func waivedMeal(at time.Time) timeclock.Break {
	return timeclock.Break{
		TimeEntryID: "entry-1",
		WorkerID:    "worker-1",
		BreakType:   timeclock.BreakTypeMeal,
		BreakStart:  at,
		Waived:      true,
	}
}

func alertTypes(alerts []compliance.Alert) []compliance.AlertType {
	types := make([]compliance.AlertType, 0, len(alerts))
	for _, a := range alerts {
		types = append(types, a.AlertType)
	}
	return types
}

func findAlert(alerts []compliance.Alert, alertType compliance.AlertType) *compliance.Alert {
	for i := range alerts {
		if alerts[i].AlertType == alertType {
			return &alerts[i]
		}
	}
	return nil
}

func TestEvaluate_NoAlertsOnShortShift(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	asOf := engineTestStart.Add(3 * time.Hour)

	alerts := Evaluate(entry, nil, asOf)

	assert.Empty(t, alerts)
}

func TestEvaluate_ZeroWorkedHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)

	alerts := Evaluate(entry, nil, engineTestStart)

	assert.Nil(t, alerts)
}

func TestEvaluate_MealBreakDueAtFiveHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	asOf := engineTestStart.Add(5*time.Hour + 5*time.Minute)

	alerts := Evaluate(entry, nil, asOf)

	due := findAlert(alerts, compliance.AlertMealBreakDue)
	require.NotNil(t, due, "expected meal_break_due, got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityWarning, due.Severity)
	assert.InDelta(t, 5.08, due.HoursWorked, 0.01)
	require.NotNil(t, due.TimeEntryID)
	assert.Equal(t, "entry-1", *due.TimeEntryID)

	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakMissed))
}

func TestEvaluate_MealBreakMissedAtSixHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	asOf := engineTestStart.Add(6*time.Hour + 5*time.Minute)

	alerts := Evaluate(entry, nil, asOf)

	missed := findAlert(alerts, compliance.AlertMealBreakMissed)
	require.NotNil(t, missed, "expected meal_break_missed, got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityViolation, missed.Severity)

	// The warning escalates into the violation, it does not accompany it.
	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakDue))
}

func TestEvaluate_MealBoundaryJustUnderSixHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	asOf := engineTestStart.Add(6*time.Hour - time.Minute)

	alerts := Evaluate(entry, nil, asOf)

	assert.NotNil(t, findAlert(alerts, compliance.AlertMealBreakDue))
	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakMissed))
}

func TestEvaluate_TakenMealBreakSatisfiesRule(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
	}
	asOf := engineTestStart.Add(7 * time.Hour)

	alerts := Evaluate(entry, breaks, asOf)

	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakDue))
	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakMissed))
}

func TestEvaluate_OpenMealBreakCountsAsTaken(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		openBreak(timeclock.BreakTypeMeal, engineTestStart.Add(5*time.Hour)),
	}
	asOf := engineTestStart.Add(5*time.Hour + 20*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakDue))
}

func TestEvaluate_CompliantLongShift(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(7*time.Hour), 10*time.Minute),
	}
	// 10h45m elapsed minus 50m of breaks is just under ten worked hours.
	asOf := engineTestStart.Add(10*time.Hour + 45*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	require.Len(t, alerts, 1, "expected only the overtime alert, got %v", alertTypes(alerts))
	assert.Equal(t, compliance.AlertOvertimeWarning, alerts[0].AlertType)
	assert.Equal(t, compliance.SeverityInfo, alerts[0].Severity)
}

func TestEvaluate_WaiverShieldsUnderSixHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		waivedMeal(engineTestStart.Add(4*time.Hour + 30*time.Minute)),
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
	}
	asOf := engineTestStart.Add(5*time.Hour + 40*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	assert.Empty(t, alerts, "waived meal under six hours should be clean, got %v", alertTypes(alerts))
}

func TestEvaluate_WaiverInvalidPastSixHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		waivedMeal(engineTestStart.Add(4*time.Hour + 30*time.Minute)),
	}
	asOf := engineTestStart.Add(6*time.Hour + 30*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	missed := findAlert(alerts, compliance.AlertMealBreakMissed)
	require.NotNil(t, missed, "waiver must not shield past six hours, got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityViolation, missed.Severity)
}

func TestEvaluate_SecondMealBreakMissedAtTenHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
	}
	asOf := engineTestStart.Add(11 * time.Hour)

	alerts := Evaluate(entry, breaks, asOf)

	missed := findAlert(alerts, compliance.AlertMealBreakMissed)
	require.NotNil(t, missed, "expected second meal violation, got %v", alertTypes(alerts))
	assert.Equal(t, "Second meal break missed", missed.Title)
	assert.Equal(t, compliance.SeverityViolation, missed.Severity)
}

func TestEvaluate_SecondMealSatisfiedByTwoMeals(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(9*time.Hour), 30*time.Minute),
	}
	asOf := engineTestStart.Add(11*time.Hour + 30*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakMissed), "got %v", alertTypes(alerts))
}

func TestEvaluate_RestBreakShortfall(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
	}
	// Just over eight worked hours requires two rest breaks.
	asOf := engineTestStart.Add(8*time.Hour + 30*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	rest := findAlert(alerts, compliance.AlertRestBreakDue)
	require.NotNil(t, rest, "got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityWarning, rest.Severity)
	assert.Contains(t, rest.Description, "2 rest break(s) required")
	assert.Contains(t, rest.Description, "1 taken")
}

func TestEvaluate_RestBreaksSatisfied(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
	}
	asOf := engineTestStart.Add(6 * time.Hour)

	alerts := Evaluate(entry, breaks, asOf)

	assert.Nil(t, findAlert(alerts, compliance.AlertRestBreakDue), "got %v", alertTypes(alerts))
}

func TestEvaluate_DailyOvertimeOverEightHours(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour), 30*time.Minute),
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(6*time.Hour), 10*time.Minute),
	}
	asOf := engineTestStart.Add(9*time.Hour + 20*time.Minute)

	alerts := Evaluate(entry, breaks, asOf)

	overtime := findAlert(alerts, compliance.AlertOvertimeWarning)
	require.NotNil(t, overtime, "got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityInfo, overtime.Severity)
	assert.Nil(t, findAlert(alerts, compliance.AlertDoubleTimeWarning))
}

func TestEvaluate_DoubleTimeSupersedesOvertime(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	asOf := engineTestStart.Add(12*time.Hour + 30*time.Minute)

	alerts := Evaluate(entry, nil, asOf)

	double := findAlert(alerts, compliance.AlertDoubleTimeWarning)
	require.NotNil(t, double, "got %v", alertTypes(alerts))
	assert.Equal(t, compliance.SeverityViolation, double.Severity)
	assert.Nil(t, findAlert(alerts, compliance.AlertOvertimeWarning),
		"double time replaces the 1.5x overtime alert")
}

func TestEvaluate_InconsistentHistorySkipsBreakRules(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		openBreak(timeclock.BreakTypeMeal, engineTestStart.Add(2*time.Hour)),
		openBreak(timeclock.BreakTypeRest, engineTestStart.Add(3*time.Hour)),
	}
	asOf := engineTestStart.Add(7 * time.Hour)

	alerts := Evaluate(entry, breaks, asOf)

	// Meal and rest rules are skipped rather than guessed at.
	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakDue), "got %v", alertTypes(alerts))
	assert.Nil(t, findAlert(alerts, compliance.AlertMealBreakMissed), "got %v", alertTypes(alerts))
	assert.Nil(t, findAlert(alerts, compliance.AlertRestBreakDue), "got %v", alertTypes(alerts))
}

func TestEvaluate_Idempotent(t *testing.T) {
	entry := engineTestEntry(engineTestStart)
	breaks := []timeclock.Break{
		closedBreak(timeclock.BreakTypeRest, engineTestStart.Add(2*time.Hour), 10*time.Minute),
	}
	asOf := engineTestStart.Add(9 * time.Hour)

	first := Evaluate(entry, breaks, asOf)
	second := Evaluate(entry, breaks, asOf)

	assert.Equal(t, first, second)
}

func TestMealWaiverAllowed(t *testing.T) {
	tests := []struct {
		name   string
		hours  float64
		breaks []timeclock.Break
		want   bool
	}{
		{"under four hours", 3.9, nil, false},
		{"at four hours", 4.0, nil, true},
		{"just under six hours", 5.99, nil, true},
		{"at six hours", 6.0, nil, false},
		{"meal already taken", 5.0, []timeclock.Break{
			closedBreak(timeclock.BreakTypeMeal, engineTestStart, 30*time.Minute),
		}, false},
		{"meal in progress", 5.0, []timeclock.Break{
			openBreak(timeclock.BreakTypeMeal, engineTestStart.Add(4*time.Hour)),
		}, false},
		{"already waived", 5.0, []timeclock.Break{
			waivedMeal(engineTestStart.Add(4*time.Hour)),
		}, false},
		{"rest break does not block", 5.0, []timeclock.Break{
			closedBreak(timeclock.BreakTypeRest, engineTestStart, 10*time.Minute),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MealWaiverAllowed(tt.hours, tt.breaks))
		})
	}
}

func TestWeeklyOvertime(t *testing.T) {
	assert.Nil(t, WeeklyOvertime("company-1", "worker-1", 39.5))
	assert.Nil(t, WeeklyOvertime("company-1", "worker-1", 40.0))

	alert := WeeklyOvertime("company-1", "worker-1", 41.25)
	require.NotNil(t, alert)
	assert.Equal(t, compliance.AlertOvertimeWarning, alert.AlertType)
	assert.Equal(t, compliance.SeverityInfo, alert.Severity)
	assert.Equal(t, 41.25, alert.HoursWorked)
	assert.Nil(t, alert.TimeEntryID)
}

func TestPayWeekStart(t *testing.T) {
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	// Wednesday mid-week
	assert.Equal(t, monday, PayWeekStart(time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC)))
	// Sunday still belongs to the week that started the previous Monday
	assert.Equal(t, monday, PayWeekStart(time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)))
	// Monday itself
	assert.Equal(t, monday, PayWeekStart(time.Date(2026, 8, 24, 0, 0, 1, 0, time.UTC)))
}
