package timeclock

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/attestation"
	compliancedomain "github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "c0000000-0000-0000-0000-000000000001"
	testWorkerID  = "w0000000-0000-0000-0000-000000000001"
)

// workerContext builds a request context carrying the JWT claims the service
// reads, the way the router's verifier middleware would.
func workerContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)
	token, _, err := ja.Encode(map[string]interface{}{
		"worker_id":   testWorkerID,
		"company_id":  testCompanyID,
		"worker_name": "Test Worker",
		"type":        "access",
	})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

// fakeEntryStore is an in-memory TimeEntryRepository. The mutex makes Create
// check-and-insert atomic, standing in for the partial unique index.
type fakeEntryStore struct {
	mu      sync.Mutex
	entries map[string]timeclock.TimeEntry
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]timeclock.TimeEntry)}
}

func (s *fakeEntryStore) Create(_ context.Context, entry timeclock.TimeEntry) (timeclock.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.CompanyID == entry.CompanyID && existing.WorkerID == entry.WorkerID && existing.Status == timeclock.StatusActive {
			return timeclock.TimeEntry{}, timeclock.ErrAlreadyClockedIn
		}
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	entry.UpdatedAt = entry.CreatedAt
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *fakeEntryStore) GetActiveEntry(_ context.Context, companyID, workerID string) (timeclock.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.CompanyID == companyID && entry.WorkerID == workerID && entry.Status == timeclock.StatusActive {
			return entry, nil
		}
	}
	return timeclock.TimeEntry{}, timeclock.ErrEntryNotFound
}

func (s *fakeEntryStore) GetByID(_ context.Context, id, companyID string) (timeclock.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok || entry.CompanyID != companyID {
		return timeclock.TimeEntry{}, timeclock.ErrEntryNotFound
	}
	return entry, nil
}

func (s *fakeEntryStore) Update(_ context.Context, entry timeclock.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return timeclock.ErrEntryNotFound
	}
	entry.UpdatedAt = time.Now().UTC()
	s.entries[entry.ID] = entry
	return nil
}

func (s *fakeEntryStore) ListByWorker(_ context.Context, companyID, workerID string, _ timeclock.EntryFilter) ([]timeclock.TimeEntry, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []timeclock.TimeEntry
	for _, entry := range s.entries {
		if entry.CompanyID == companyID && entry.WorkerID == workerID {
			entries = append(entries, entry)
		}
	}
	return entries, int64(len(entries)), nil
}

func (s *fakeEntryStore) WeekWorkedMinutes(_ context.Context, _, _ string, _ time.Time) (int, error) {
	return 0, nil
}

func (s *fakeEntryStore) ListActive(_ context.Context) ([]timeclock.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []timeclock.TimeEntry
	for _, entry := range s.entries {
		if entry.Status == timeclock.StatusActive {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// seed inserts an entry directly, bypassing the one-active check.
func (s *fakeEntryStore) seed(entry timeclock.TimeEntry) timeclock.TimeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.entries[entry.ID] = entry
	return entry
}

type fakeBreakStore struct {
	mu     sync.Mutex
	breaks []timeclock.Break
}

func (s *fakeBreakStore) Append(_ context.Context, brk timeclock.Break) (timeclock.Break, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	brk.ID = uuid.NewString()
	brk.CreatedAt = time.Now().UTC()
	s.breaks = append(s.breaks, brk)
	return brk, nil
}

func (s *fakeBreakStore) Close(_ context.Context, id string, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.breaks {
		if s.breaks[i].ID == id && s.breaks[i].BreakEnd == nil && !s.breaks[i].Waived {
			e := end
			s.breaks[i].BreakEnd = &e
			return nil
		}
	}
	return timeclock.ErrNoActiveBreak
}

func (s *fakeBreakStore) ListByEntry(_ context.Context, entryID string) ([]timeclock.Break, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []timeclock.Break
	for _, brk := range s.breaks {
		if brk.TimeEntryID == entryID {
			result = append(result, brk)
		}
	}
	return result, nil
}

type fakeAlertStore struct {
	mu     sync.Mutex
	alerts map[string]compliancedomain.Alert
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[string]compliancedomain.Alert)}
}

func (s *fakeAlertStore) key(alert compliancedomain.Alert) string {
	entryID := ""
	if alert.TimeEntryID != nil {
		entryID = *alert.TimeEntryID
	}
	return fmt.Sprintf("%s|%s", entryID, alert.AlertType)
}

func (s *fakeAlertStore) Raise(_ context.Context, alert compliancedomain.Alert) (compliancedomain.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(alert)
	if existing, ok := s.alerts[k]; ok {
		existing.Severity = alert.Severity
		existing.HoursWorked = alert.HoursWorked
		existing.Description = alert.Description
		s.alerts[k] = existing
		return existing, false, nil
	}
	alert.ID = uuid.NewString()
	alert.CreatedAt = time.Now().UTC()
	s.alerts[k] = alert
	return alert, true, nil
}

func (s *fakeAlertStore) ListByEntry(_ context.Context, entryID, companyID string) ([]compliancedomain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []compliancedomain.Alert
	for _, alert := range s.alerts {
		if alert.CompanyID == companyID && alert.TimeEntryID != nil && *alert.TimeEntryID == entryID {
			result = append(result, alert)
		}
	}
	return result, nil
}

func (s *fakeAlertStore) ListOpenByCompany(_ context.Context, companyID string, _ compliancedomain.AlertFilter) ([]compliancedomain.Alert, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []compliancedomain.Alert
	for _, alert := range s.alerts {
		if alert.CompanyID == companyID && !alert.Acknowledged {
			result = append(result, alert)
		}
	}
	return result, int64(len(result)), nil
}

func (s *fakeAlertStore) Acknowledge(_ context.Context, id, companyID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for k, alert := range s.alerts {
		if alert.ID == id && alert.CompanyID == companyID {
			if alert.Acknowledged {
				return compliancedomain.ErrAlreadyAcknowledged
			}
			alert.Acknowledged = true
			alert.AcknowledgedAt = &now
			alert.AcknowledgedBy = &userID
			s.alerts[k] = alert
			return nil
		}
	}
	return compliancedomain.ErrAlertNotFound
}

func (s *fakeAlertStore) countByType(alertType compliancedomain.AlertType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, alert := range s.alerts {
		if alert.AlertType == alertType {
			count++
		}
	}
	return count
}

func newTestService() (timeclock.TimeClockService, *fakeEntryStore, *fakeBreakStore, *fakeAlertStore) {
	entries := newFakeEntryStore()
	breaks := &fakeBreakStore{}
	alerts := newFakeAlertStore()
	svc := NewTimeClockService(nil, entries, breaks, alerts, sse.NewHub())
	return svc, entries, breaks, alerts
}

func seedActiveEntry(entries *fakeEntryStore, clockedInAgo time.Duration) timeclock.TimeEntry {
	return entries.seed(timeclock.TimeEntry{
		CompanyID: testCompanyID,
		WorkerID:  testWorkerID,
		ClockIn:   time.Now().UTC().Add(-clockedInAgo),
		Status:    timeclock.StatusActive,
	})
}

func validAttestation() *attestation.Payload {
	return &attestation.Payload{Signature: "base64-stroke-data"}
}

func TestClockIn_Success(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := workerContext(t)

	resp, err := svc.ClockIn(ctx, timeclock.ClockInRequest{})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, testWorkerID, resp.WorkerID)
	assert.Equal(t, string(timeclock.StatusActive), resp.Status)
	assert.Nil(t, resp.ClockOut)
}

func TestClockIn_RejectsSecondActiveEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := workerContext(t)

	_, err := svc.ClockIn(ctx, timeclock.ClockInRequest{})
	require.NoError(t, err)

	_, err = svc.ClockIn(ctx, timeclock.ClockInRequest{})
	assert.ErrorIs(t, err, timeclock.ErrAlreadyClockedIn)
}

func TestClockIn_ConcurrentAttemptsAdmitExactlyOne(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)

	const attempts = 10
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClockIn(ctx, timeclock.ClockInRequest{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, timeclock.ErrAlreadyClockedIn)
		}
	}
	assert.Equal(t, 1, successes)

	active, err := entries.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestClockIn_InvalidLocationRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := workerContext(t)

	_, err := svc.ClockIn(ctx, timeclock.ClockInRequest{
		Location: &timeclock.LocationPayload{Latitude: 120, Longitude: 10},
	})

	assert.Error(t, err)
}

func TestStartBreak_RequiresActiveEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := workerContext(t)

	_, err := svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "meal"})

	assert.ErrorIs(t, err, timeclock.ErrEntryNotActive)
}

func TestStartBreak_RejectsOverlappingBreaks(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 2*time.Hour)

	resp, err := svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "rest"})
	require.NoError(t, err)
	require.Len(t, resp.Breaks, 1)
	assert.Nil(t, resp.Breaks[0].BreakEnd)

	_, err = svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "meal"})
	assert.ErrorIs(t, err, timeclock.ErrAlreadyOnBreak)
}

func TestEndBreak_RequiresOpenBreak(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, time.Hour)

	_, err := svc.EndBreak(ctx)

	assert.ErrorIs(t, err, timeclock.ErrNoActiveBreak)
}

func TestClockOut_RejectedWhileOnBreakThenSucceeds(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 4*time.Hour)

	_, err := svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "meal"})
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, timeclock.ClockOutRequest{Attestation: validAttestation()})
	assert.ErrorIs(t, err, timeclock.ErrOnBreak)

	_, err = svc.EndBreak(ctx)
	require.NoError(t, err)

	resp, err := svc.ClockOut(ctx, timeclock.ClockOutRequest{Attestation: validAttestation()})
	require.NoError(t, err)
	assert.Equal(t, string(timeclock.StatusCompleted), resp.Status)
	assert.NotNil(t, resp.ClockOut)
	assert.True(t, resp.AttestationCompleted)
}

func TestClockOut_RequiresAttestation(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 4*time.Hour)

	_, err := svc.ClockOut(ctx, timeclock.ClockOutRequest{})
	assert.ErrorIs(t, err, timeclock.ErrAttestationRequired)

	// The entry must remain active after the rejected attempt.
	status, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.HasActiveEntry)
}

func TestClockOut_AttestationReasonEnforced(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 4*time.Hour)

	_, err := svc.ClockOut(ctx, timeclock.ClockOutRequest{
		Attestation: &attestation.Payload{MissedMealBreak: true, Signature: "sig"},
	})

	assert.ErrorIs(t, err, attestation.ErrMissingReason)
}

func TestClockOut_RecordsMissedBreakReport(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seeded := seedActiveEntry(entries, 7*time.Hour)

	resp, err := svc.ClockOut(ctx, timeclock.ClockOutRequest{
		Attestation: &attestation.Payload{
			MissedMealBreak:  true,
			MissedMealReason: "could not leave the site",
			Signature:        "sig",
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.MissedMealBreak)

	stored, err := entries.GetByID(context.Background(), seeded.ID, testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, stored.MissedMealReason)
	assert.Equal(t, "could not leave the site", *stored.MissedMealReason)
}

func TestClockOut_RaisesAlertsOnce(t *testing.T) {
	svc, entries, _, alerts := newTestService()
	ctx := workerContext(t)
	entry := seedActiveEntry(entries, 9*time.Hour)

	_, err := svc.ClockOut(ctx, timeclock.ClockOutRequest{Attestation: validAttestation()})
	require.NoError(t, err)

	assert.Equal(t, 1, alerts.countByType(compliancedomain.AlertMealBreakMissed))
	assert.Equal(t, 1, alerts.countByType(compliancedomain.AlertOvertimeWarning))

	stored, err := alerts.ListByEntry(context.Background(), entry.ID, testCompanyID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
}

func TestWaiveMealBreak_OutsideWindowRejected(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, time.Hour)

	_, err := svc.WaiveMealBreak(ctx)

	assert.ErrorIs(t, err, timeclock.ErrWaiverNotAllowed)
}

func TestWaiveMealBreak_InsideWindowRecordsWaiver(t *testing.T) {
	svc, entries, breakStore, _ := newTestService()
	ctx := workerContext(t)
	entry := seedActiveEntry(entries, 4*time.Hour+30*time.Minute)

	resp, err := svc.WaiveMealBreak(ctx)

	require.NoError(t, err)
	require.Len(t, resp.Breaks, 1)
	assert.True(t, resp.Breaks[0].Waived)
	assert.Equal(t, string(timeclock.BreakTypeMeal), resp.Breaks[0].BreakType)

	stored, err := breakStore.ListByEntry(context.Background(), entry.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].Waived)

	// A second waiver attempt is blocked by the existing record.
	_, err = svc.WaiveMealBreak(ctx)
	assert.ErrorIs(t, err, timeclock.ErrWaiverNotAllowed)
}

func TestWaiveMealBreak_RejectedAfterMealTaken(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 4*time.Hour+30*time.Minute)

	_, err := svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "meal"})
	require.NoError(t, err)
	_, err = svc.EndBreak(ctx)
	require.NoError(t, err)

	_, err = svc.WaiveMealBreak(ctx)
	assert.ErrorIs(t, err, timeclock.ErrWaiverNotAllowed)
}

func TestGetStatus_NoActiveEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := workerContext(t)

	status, err := svc.GetStatus(ctx)

	require.NoError(t, err)
	assert.False(t, status.HasActiveEntry)
	assert.True(t, status.CanClockIn)
	assert.False(t, status.CanClockOut)
	assert.Nil(t, status.ActiveEntry)
}

func TestGetStatus_OnBreak(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 3*time.Hour)

	_, err := svc.StartBreak(ctx, timeclock.StartBreakRequest{BreakType: "rest"})
	require.NoError(t, err)

	status, err := svc.GetStatus(ctx)

	require.NoError(t, err)
	assert.True(t, status.HasActiveEntry)
	assert.True(t, status.OnBreak)
	assert.False(t, status.CanClockIn)
	assert.False(t, status.CanClockOut, "clock-out must be blocked while a break is open")
	require.NotNil(t, status.ActiveEntry)
	assert.InDelta(t, 3.0, status.ActiveEntry.HoursWorked, 0.05)
}

func TestListMyEntries(t *testing.T) {
	svc, entries, _, _ := newTestService()
	ctx := workerContext(t)
	seedActiveEntry(entries, 2*time.Hour)

	resp, err := svc.ListMyEntries(ctx, timeclock.EntryFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, testWorkerID, resp.Entries[0].WorkerID)
}
