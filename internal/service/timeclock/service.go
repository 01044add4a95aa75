package timeclock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/attestation"
	compliancedomain "github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	"github.com/fieldtrack/timeclock-backend-go/internal/repository/postgresql"
	compliancesvc "github.com/fieldtrack/timeclock-backend-go/internal/service/compliance"
	"github.com/go-chi/jwtauth/v5"
)

// TimeClockServiceImpl is the time entry state machine. Every mutating
// operation re-evaluates compliance against the updated history and hands the
// resulting alert set to the alert store; the store deduplicates against
// previously raised, unacknowledged alerts.
type TimeClockServiceImpl struct {
	db *database.DB
	timeclock.TimeEntryRepository
	timeclock.BreakRepository
	alertRepo compliancedomain.AlertRepository
	hub       *sse.Hub
}

func NewTimeClockService(
	db *database.DB,
	entryRepo timeclock.TimeEntryRepository,
	breakRepo timeclock.BreakRepository,
	alertRepo compliancedomain.AlertRepository,
	hub *sse.Hub,
) timeclock.TimeClockService {
	return &TimeClockServiceImpl{
		db:                  db,
		TimeEntryRepository: entryRepo,
		BreakRepository:     breakRepo,
		alertRepo:           alertRepo,
		hub:                 hub,
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

// ClockIn implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) ClockIn(ctx context.Context, req timeclock.ClockInRequest) (timeclock.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	now := time.Now().UTC()

	_, err = s.TimeEntryRepository.GetActiveEntry(ctx, companyID, workerID)
	if err == nil {
		return timeclock.TimeEntryResponse{}, timeclock.ErrAlreadyClockedIn
	}
	if !errors.Is(err, timeclock.ErrEntryNotFound) {
		return timeclock.TimeEntryResponse{}, fmt.Errorf("failed to check for active entry: %w", err)
	}

	entry := timeclock.TimeEntry{
		CompanyID:       companyID,
		WorkerID:        workerID,
		JobID:           req.JobID,
		ClockIn:         now,
		ClockInPhotoRef: req.PhotoRef,
		Status:          timeclock.StatusActive,
	}
	if req.Location != nil {
		entry.ClockInLocation = req.Location.ToLocation()
	}

	// The repository's partial unique index on active entries is the
	// backstop for concurrent clock-in attempts racing past the check above.
	created, err := s.TimeEntryRepository.Create(ctx, entry)
	if err != nil {
		if errors.Is(err, timeclock.ErrAlreadyClockedIn) {
			return timeclock.TimeEntryResponse{}, timeclock.ErrAlreadyClockedIn
		}
		return timeclock.TimeEntryResponse{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return mapEntryToResponse(created, nil, now), nil
}

// StartBreak implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) StartBreak(ctx context.Context, req timeclock.StartBreakRequest) (timeclock.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	now := time.Now().UTC()

	entry, breaks, err := s.activeEntryWithBreaks(ctx, companyID, workerID)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	if timeclock.IsOnBreak(breaks) {
		return timeclock.TimeEntryResponse{}, timeclock.ErrAlreadyOnBreak
	}

	brk := timeclock.Break{
		TimeEntryID: entry.ID,
		WorkerID:    workerID,
		BreakType:   timeclock.BreakType(strings.ToLower(req.BreakType)),
		BreakStart:  now,
	}

	var raised []compliancedomain.Alert
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		created, err := s.BreakRepository.Append(txCtx, brk)
		if err != nil {
			return fmt.Errorf("failed to append break: %w", err)
		}
		breaks = append(breaks, created)

		raised, err = s.raiseAlerts(txCtx, entry, breaks, now)
		return err
	})
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	s.publishAlerts(raised)

	return mapEntryToResponse(entry, breaks, now), nil
}

// EndBreak implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) EndBreak(ctx context.Context) (timeclock.TimeEntryResponse, error) {
	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	now := time.Now().UTC()

	entry, breaks, err := s.activeEntryWithBreaks(ctx, companyID, workerID)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	open := latestOpenBreak(breaks)
	if open == nil {
		return timeclock.TimeEntryResponse{}, timeclock.ErrNoActiveBreak
	}

	entry.BreakMinutesAccrued += int(now.Sub(open.BreakStart).Minutes())

	var raised []compliancedomain.Alert
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.BreakRepository.Close(txCtx, open.ID, now); err != nil {
			return fmt.Errorf("failed to close break: %w", err)
		}
		end := now
		open.BreakEnd = &end

		if err := s.TimeEntryRepository.Update(txCtx, entry); err != nil {
			return fmt.Errorf("failed to update time entry: %w", err)
		}

		raised, err = s.raiseAlerts(txCtx, entry, breaks, now)
		return err
	})
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	s.publishAlerts(raised)

	return mapEntryToResponse(entry, breaks, now), nil
}

// WaiveMealBreak implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) WaiveMealBreak(ctx context.Context) (timeclock.TimeEntryResponse, error) {
	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	now := time.Now().UTC()

	entry, breaks, err := s.activeEntryWithBreaks(ctx, companyID, workerID)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	hours := timeclock.HoursWorked(entry, breaks, now)
	if !compliancesvc.MealWaiverAllowed(hours, breaks) {
		return timeclock.TimeEntryResponse{}, timeclock.ErrWaiverNotAllowed
	}

	waiver := timeclock.Break{
		TimeEntryID: entry.ID,
		WorkerID:    workerID,
		BreakType:   timeclock.BreakTypeMeal,
		BreakStart:  now,
		Waived:      true,
	}

	var raised []compliancedomain.Alert
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		created, err := s.BreakRepository.Append(txCtx, waiver)
		if err != nil {
			return fmt.Errorf("failed to record meal break waiver: %w", err)
		}
		breaks = append(breaks, created)

		raised, err = s.raiseAlerts(txCtx, entry, breaks, now)
		return err
	})
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	s.publishAlerts(raised)

	return mapEntryToResponse(entry, breaks, now), nil
}

// ClockOut implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) ClockOut(ctx context.Context, req timeclock.ClockOutRequest) (timeclock.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	now := time.Now().UTC()

	entry, breaks, err := s.activeEntryWithBreaks(ctx, companyID, workerID)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	if timeclock.IsOnBreak(breaks) {
		return timeclock.TimeEntryResponse{}, timeclock.ErrOnBreak
	}

	if req.Attestation == nil {
		return timeclock.TimeEntryResponse{}, timeclock.ErrAttestationRequired
	}
	att, err := attestation.Validate(*req.Attestation, now)
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}

	clockOut := now
	entry.ClockOut = &clockOut
	entry.ClockOutPhotoRef = req.PhotoRef
	if req.Location != nil {
		entry.ClockOutLocation = req.Location.ToLocation()
	}
	entry.Status = timeclock.StatusCompleted
	entry.AttestationCompleted = true
	entry.AttestationAt = &att.CompletedAt
	entry.AttestationSignature = &att.Signature
	entry.MissedMealBreak = att.MissedMealBreak
	entry.MissedMealReason = att.MissedMealReason
	entry.MissedRestBreak = att.MissedRestBreak
	entry.MissedRestReason = att.MissedRestReason

	var raised []compliancedomain.Alert
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.TimeEntryRepository.Update(txCtx, entry); err != nil {
			return fmt.Errorf("failed to finalize time entry: %w", err)
		}

		raised, err = s.raiseAlerts(txCtx, entry, breaks, now)
		return err
	})
	if err != nil {
		return timeclock.TimeEntryResponse{}, err
	}
	s.publishAlerts(raised)

	return mapEntryToResponse(entry, breaks, now), nil
}

// GetStatus implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) GetStatus(ctx context.Context) (timeclock.EntryStatusResponse, error) {
	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.EntryStatusResponse{}, err
	}
	now := time.Now().UTC()

	entry, err := s.TimeEntryRepository.GetActiveEntry(ctx, companyID, workerID)
	if err != nil {
		if errors.Is(err, timeclock.ErrEntryNotFound) {
			return timeclock.EntryStatusResponse{CanClockIn: true}, nil
		}
		return timeclock.EntryStatusResponse{}, fmt.Errorf("failed to get active entry: %w", err)
	}

	breaks, err := s.BreakRepository.ListByEntry(ctx, entry.ID)
	if err != nil {
		return timeclock.EntryStatusResponse{}, fmt.Errorf("failed to list breaks: %w", err)
	}

	onBreak := timeclock.IsOnBreak(breaks)
	resp := mapEntryToResponse(entry, breaks, now)
	return timeclock.EntryStatusResponse{
		HasActiveEntry: true,
		ActiveEntry:    &resp,
		OnBreak:        onBreak,
		CanClockIn:     false,
		CanClockOut:    !onBreak,
	}, nil
}

// ListMyEntries implements timeclock.TimeClockService.
func (s *TimeClockServiceImpl) ListMyEntries(ctx context.Context, filter timeclock.EntryFilter) (timeclock.ListEntriesResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeclock.ListEntriesResponse{}, err
	}

	companyID, workerID, err := claimsFromContext(ctx)
	if err != nil {
		return timeclock.ListEntriesResponse{}, err
	}
	now := time.Now().UTC()

	entries, total, err := s.TimeEntryRepository.ListByWorker(ctx, companyID, workerID, filter)
	if err != nil {
		return timeclock.ListEntriesResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	responses := make([]timeclock.TimeEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry, nil, now))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return timeclock.ListEntriesResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Entries:    responses,
	}, nil
}

// activeEntryWithBreaks loads the worker's active entry and its break
// history, mapping a missing entry to ErrEntryNotActive.
func (s *TimeClockServiceImpl) activeEntryWithBreaks(ctx context.Context, companyID, workerID string) (timeclock.TimeEntry, []timeclock.Break, error) {
	entry, err := s.TimeEntryRepository.GetActiveEntry(ctx, companyID, workerID)
	if err != nil {
		if errors.Is(err, timeclock.ErrEntryNotFound) {
			return timeclock.TimeEntry{}, nil, timeclock.ErrEntryNotActive
		}
		return timeclock.TimeEntry{}, nil, fmt.Errorf("failed to get active entry: %w", err)
	}

	breaks, err := s.BreakRepository.ListByEntry(ctx, entry.ID)
	if err != nil {
		return timeclock.TimeEntry{}, nil, fmt.Errorf("failed to list breaks: %w", err)
	}

	return entry, breaks, nil
}

// raiseAlerts recomputes the alert set for the updated history and persists
// it through the alert store's upsert. Returns the newly created alerts.
func (s *TimeClockServiceImpl) raiseAlerts(ctx context.Context, entry timeclock.TimeEntry, breaks []timeclock.Break, now time.Time) ([]compliancedomain.Alert, error) {
	var raised []compliancedomain.Alert
	for _, alert := range compliancesvc.Evaluate(entry, breaks, now) {
		stored, created, err := s.alertRepo.Raise(ctx, alert)
		if err != nil {
			return nil, fmt.Errorf("failed to raise compliance alert: %w", err)
		}
		if created {
			raised = append(raised, stored)
		}
	}
	return raised, nil
}

// publishAlerts pushes freshly raised alerts to company dashboards. Called
// after the transaction commits so subscribers never see rolled-back alerts.
func (s *TimeClockServiceImpl) publishAlerts(alerts []compliancedomain.Alert) {
	if s.hub == nil {
		return
	}
	for _, alert := range alerts {
		s.hub.Publish(alert.CompanyID, sse.Event{
			CompanyID: alert.CompanyID,
			Event:     "compliance_alert",
			Data:      alert,
		})
	}
}

func latestOpenBreak(breaks []timeclock.Break) *timeclock.Break {
	var open *timeclock.Break
	for i := range breaks {
		b := &breaks[i]
		if !b.Open() {
			continue
		}
		if open == nil || b.BreakStart.After(open.BreakStart) {
			open = b
		}
	}
	return open
}

// timeToString formats a timestamp as ISO-8601 with timezone.
func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := timeToString(*t)
	return &formatted
}

func mapLocationToResponse(loc *timeclock.Location) *timeclock.LocationResponse {
	if loc == nil {
		return nil
	}
	return &timeclock.LocationResponse{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		AccuracyMeters: loc.AccuracyMeters,
		CapturedAt:     timeToString(loc.CapturedAt),
	}
}

func mapEntryToResponse(entry timeclock.TimeEntry, breaks []timeclock.Break, asOf time.Time) timeclock.TimeEntryResponse {
	breakResponses := make([]timeclock.BreakResponse, 0, len(breaks))
	for _, b := range breaks {
		breakResponses = append(breakResponses, timeclock.BreakResponse{
			ID:         b.ID,
			BreakType:  string(b.BreakType),
			BreakStart: timeToString(b.BreakStart),
			BreakEnd:   timePtrToString(b.BreakEnd),
			Waived:     b.Waived,
		})
	}

	return timeclock.TimeEntryResponse{
		ID:                   entry.ID,
		WorkerID:             entry.WorkerID,
		JobID:                entry.JobID,
		ClockIn:              timeToString(entry.ClockIn),
		ClockOut:             timePtrToString(entry.ClockOut),
		ClockInLocation:      mapLocationToResponse(entry.ClockInLocation),
		ClockOutLocation:     mapLocationToResponse(entry.ClockOutLocation),
		ClockInPhotoRef:      entry.ClockInPhotoRef,
		ClockOutPhotoRef:     entry.ClockOutPhotoRef,
		BreakMinutesAccrued:  entry.BreakMinutesAccrued,
		HoursWorked:          timeclock.HoursWorked(entry, breaks, asOf),
		Status:               string(entry.Status),
		AttestationCompleted: entry.AttestationCompleted,
		AttestationAt:        timePtrToString(entry.AttestationAt),
		MissedMealBreak:      entry.MissedMealBreak,
		MissedRestBreak:      entry.MissedRestBreak,
		Breaks:               breakResponses,
	}
}
