package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type timeEntryRepository struct {
	db *database.DB
}

const timeEntryColumns = `
	id, company_id, worker_id, job_id, clock_in, clock_out,
	clock_in_latitude, clock_in_longitude, clock_in_accuracy_meters, clock_in_captured_at,
	clock_out_latitude, clock_out_longitude, clock_out_accuracy_meters, clock_out_captured_at,
	clock_in_photo_ref, clock_out_photo_ref, break_minutes_accrued,
	status, attestation_completed, attestation_at, attestation_signature,
	missed_meal_break, missed_meal_reason, missed_rest_break, missed_rest_reason,
	created_at, updated_at
`

func scanTimeEntry(row pgx.Row) (timeclock.TimeEntry, error) {
	var entry timeclock.TimeEntry
	var inLat, inLng, inAcc *float64
	var inCaptured *time.Time
	var outLat, outLng, outAcc *float64
	var outCaptured *time.Time

	err := row.Scan(
		&entry.ID, &entry.CompanyID, &entry.WorkerID, &entry.JobID, &entry.ClockIn, &entry.ClockOut,
		&inLat, &inLng, &inAcc, &inCaptured,
		&outLat, &outLng, &outAcc, &outCaptured,
		&entry.ClockInPhotoRef, &entry.ClockOutPhotoRef, &entry.BreakMinutesAccrued,
		&entry.Status, &entry.AttestationCompleted, &entry.AttestationAt, &entry.AttestationSignature,
		&entry.MissedMealBreak, &entry.MissedMealReason, &entry.MissedRestBreak, &entry.MissedRestReason,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return timeclock.TimeEntry{}, err
	}

	if inLat != nil && inLng != nil && inCaptured != nil {
		entry.ClockInLocation = &timeclock.Location{
			Latitude:       *inLat,
			Longitude:      *inLng,
			AccuracyMeters: inAcc,
			CapturedAt:     *inCaptured,
		}
	}
	if outLat != nil && outLng != nil && outCaptured != nil {
		entry.ClockOutLocation = &timeclock.Location{
			Latitude:       *outLat,
			Longitude:      *outLng,
			AccuracyMeters: outAcc,
			CapturedAt:     *outCaptured,
		}
	}

	return entry, nil
}

func locationColumns(loc *timeclock.Location) (lat, lng, acc *float64, capturedAt *time.Time) {
	if loc == nil {
		return nil, nil, nil, nil
	}
	return &loc.Latitude, &loc.Longitude, loc.AccuracyMeters, &loc.CapturedAt
}

// Create implements timeclock.TimeEntryRepository.
//
// A partial unique index on (company_id, worker_id) WHERE status = 'active'
// rejects a second open entry; that violation is surfaced as
// ErrAlreadyClockedIn so concurrent clock-ins lose cleanly.
func (t *timeEntryRepository) Create(ctx context.Context, entry timeclock.TimeEntry) (timeclock.TimeEntry, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		INSERT INTO time_entries (
			company_id, worker_id, job_id, clock_in,
			clock_in_latitude, clock_in_longitude, clock_in_accuracy_meters, clock_in_captured_at,
			clock_in_photo_ref, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	lat, lng, acc, capturedAt := locationColumns(entry.ClockInLocation)

	err := q.QueryRow(ctx, query,
		entry.CompanyID,
		entry.WorkerID,
		entry.JobID,
		entry.ClockIn,
		lat, lng, acc, capturedAt,
		entry.ClockInPhotoRef,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return timeclock.TimeEntry{}, timeclock.ErrAlreadyClockedIn
		}
		return timeclock.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return entry, nil
}

// GetActiveEntry implements timeclock.TimeEntryRepository.
func (t *timeEntryRepository) GetActiveEntry(ctx context.Context, companyID, workerID string) (timeclock.TimeEntry, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE company_id = $1
		  AND worker_id = $2
		  AND status = 'active'
		ORDER BY clock_in DESC
		LIMIT 1
	`

	entry, err := scanTimeEntry(q.QueryRow(ctx, query, companyID, workerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.TimeEntry{}, timeclock.ErrEntryNotFound
		}
		return timeclock.TimeEntry{}, fmt.Errorf("failed to get active time entry: %w", err)
	}

	return entry, nil
}

// GetByID implements timeclock.TimeEntryRepository.
func (t *timeEntryRepository) GetByID(ctx context.Context, id, companyID string) (timeclock.TimeEntry, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE id = $1 AND company_id = $2
	`

	entry, err := scanTimeEntry(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.TimeEntry{}, timeclock.ErrEntryNotFound
		}
		return timeclock.TimeEntry{}, fmt.Errorf("failed to get time entry by ID: %w", err)
	}

	return entry, nil
}

// Update implements timeclock.TimeEntryRepository.
func (t *timeEntryRepository) Update(ctx context.Context, entry timeclock.TimeEntry) error {
	q := GetQuerier(ctx, t.db)

	outLat, outLng, outAcc, outCaptured := locationColumns(entry.ClockOutLocation)

	query := `
		UPDATE time_entries SET
			clock_out = $1,
			clock_out_latitude = $2,
			clock_out_longitude = $3,
			clock_out_accuracy_meters = $4,
			clock_out_captured_at = $5,
			clock_out_photo_ref = $6,
			break_minutes_accrued = $7,
			status = $8,
			attestation_completed = $9,
			attestation_at = $10,
			attestation_signature = $11,
			missed_meal_break = $12,
			missed_meal_reason = $13,
			missed_rest_break = $14,
			missed_rest_reason = $15,
			updated_at = $16
		WHERE id = $17 AND company_id = $18
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		entry.ClockOut,
		outLat, outLng, outAcc, outCaptured,
		entry.ClockOutPhotoRef,
		entry.BreakMinutesAccrued,
		entry.Status,
		entry.AttestationCompleted,
		entry.AttestationAt,
		entry.AttestationSignature,
		entry.MissedMealBreak,
		entry.MissedMealReason,
		entry.MissedRestBreak,
		entry.MissedRestReason,
		time.Now(),
		entry.ID,
		entry.CompanyID,
	).Scan(&updatedID)

	if err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.ErrEntryNotFound
		}
		return fmt.Errorf("failed to update time entry: %w", err)
	}

	return nil
}

// ListByWorker implements timeclock.TimeEntryRepository.
func (t *timeEntryRepository) ListByWorker(ctx context.Context, companyID, workerID string, filter timeclock.EntryFilter) ([]timeclock.TimeEntry, int64, error) {
	q := GetQuerier(ctx, t.db)

	// Build WHERE clause
	baseWhere := "company_id = $1 AND worker_id = $2"
	args := []interface{}{companyID, workerID}
	argIdx := 3

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND clock_in >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND clock_in < ($%d::date + INTERVAL '1 day')", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM time_entries WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	// Build ORDER BY
	orderByField := "clock_in"
	switch filter.SortBy {
	case "clock_out":
		orderByField = "clock_out"
	case "status":
		orderByField = "status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT `+timeEntryColumns+`
		FROM time_entries
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

// WeekWorkedMinutes implements timeclock.TimeEntryRepository.
//
// Sums net worked minutes for all entries whose clock-in falls inside the pay
// week starting at weekStart. Open entries count up to now; closed non-waived
// breaks are subtracted per entry.
func (t *timeEntryRepository) WeekWorkedMinutes(ctx context.Context, companyID, workerID string, weekStart time.Time) (int, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT COALESCE(SUM(
			EXTRACT(EPOCH FROM (COALESCE(e.clock_out, NOW()) - e.clock_in)) / 60
			- COALESCE((
				SELECT SUM(EXTRACT(EPOCH FROM (b.break_end - b.break_start)) / 60)
				FROM breaks b
				WHERE b.time_entry_id = e.id
				  AND b.break_end IS NOT NULL
				  AND b.waived = FALSE
			), 0)
		), 0)
		FROM time_entries e
		WHERE e.company_id = $1
		  AND e.worker_id = $2
		  AND e.clock_in >= $3
		  AND e.clock_in < $4
	`

	weekEnd := weekStart.AddDate(0, 0, 7)

	var minutes float64
	if err := q.QueryRow(ctx, query, companyID, workerID, weekStart, weekEnd).Scan(&minutes); err != nil {
		return 0, fmt.Errorf("failed to sum weekly worked minutes: %w", err)
	}

	if minutes < 0 {
		minutes = 0
	}
	return int(minutes), nil
}

// ListActive implements timeclock.TimeEntryRepository.
func (t *timeEntryRepository) ListActive(ctx context.Context) ([]timeclock.TimeEntry, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE status = 'active'
		ORDER BY clock_in ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeclock.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func NewTimeEntryRepository(db *database.DB) timeclock.TimeEntryRepository {
	return &timeEntryRepository{db: db}
}
