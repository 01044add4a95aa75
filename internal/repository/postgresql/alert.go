package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/compliance"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type alertRepository struct {
	db *database.DB
}

const alertColumns = `
	id, company_id, worker_id, time_entry_id, alert_type, severity,
	title, description, hours_worked,
	acknowledged, acknowledged_at, acknowledged_by, created_at
`

func scanAlert(row pgx.Row) (compliance.Alert, error) {
	var alert compliance.Alert
	err := row.Scan(
		&alert.ID, &alert.CompanyID, &alert.WorkerID, &alert.TimeEntryID,
		&alert.AlertType, &alert.Severity,
		&alert.Title, &alert.Description, &alert.HoursWorked,
		&alert.Acknowledged, &alert.AcknowledgedAt, &alert.AcknowledgedBy, &alert.CreatedAt,
	)
	if err != nil {
		return compliance.Alert{}, err
	}
	return alert, nil
}

// Raise implements compliance.AlertRepository.
//
// Upserts on the unique index over (time_entry_id, alert_type). Re-raising an
// existing alert refreshes its hours and severity but never resets an
// acknowledgment; the (xmax = 0) system column distinguishes a fresh insert
// from a conflict update.
func (a *alertRepository) Raise(ctx context.Context, alert compliance.Alert) (compliance.Alert, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO compliance_alerts (
			company_id, worker_id, time_entry_id, alert_type, severity,
			title, description, hours_worked
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (time_entry_id, alert_type) DO UPDATE SET
			severity = EXCLUDED.severity,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			hours_worked = EXCLUDED.hours_worked
		RETURNING ` + alertColumns + `, (xmax = 0) AS created
	`

	var stored compliance.Alert
	var created bool
	err := q.QueryRow(ctx, query,
		alert.CompanyID,
		alert.WorkerID,
		alert.TimeEntryID,
		alert.AlertType,
		alert.Severity,
		alert.Title,
		alert.Description,
		alert.HoursWorked,
	).Scan(
		&stored.ID, &stored.CompanyID, &stored.WorkerID, &stored.TimeEntryID,
		&stored.AlertType, &stored.Severity,
		&stored.Title, &stored.Description, &stored.HoursWorked,
		&stored.Acknowledged, &stored.AcknowledgedAt, &stored.AcknowledgedBy, &stored.CreatedAt,
		&created,
	)
	if err != nil {
		return compliance.Alert{}, false, fmt.Errorf("failed to raise compliance alert: %w", err)
	}

	return stored, created, nil
}

// ListByEntry implements compliance.AlertRepository.
func (a *alertRepository) ListByEntry(ctx context.Context, entryID, companyID string) ([]compliance.Alert, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + alertColumns + `
		FROM compliance_alerts
		WHERE time_entry_id = $1 AND company_id = $2
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, entryID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts by entry: %w", err)
	}
	defer rows.Close()

	var alerts []compliance.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

// ListOpenByCompany implements compliance.AlertRepository.
func (a *alertRepository) ListOpenByCompany(ctx context.Context, companyID string, filter compliance.AlertFilter) ([]compliance.Alert, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "company_id = $1 AND acknowledged = FALSE"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.WorkerID != nil && *filter.WorkerID != "" {
		baseWhere += fmt.Sprintf(" AND worker_id = $%d", argIdx)
		args = append(args, *filter.WorkerID)
		argIdx++
	}

	if filter.Severity != nil && *filter.Severity != "" {
		baseWhere += fmt.Sprintf(" AND severity = $%d", argIdx)
		args = append(args, *filter.Severity)
		argIdx++
	}

	// Count total
	countQuery := "SELECT COUNT(*) FROM compliance_alerts WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	// Violations first, then most recent
	selectQuery := fmt.Sprintf(`
		SELECT `+alertColumns+`
		FROM compliance_alerts
		WHERE %s
		ORDER BY
			CASE severity
				WHEN 'violation' THEN 0
				WHEN 'warning' THEN 1
				ELSE 2
			END ASC,
			created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []compliance.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	return alerts, total, nil
}

// Acknowledge implements compliance.AlertRepository.
func (a *alertRepository) Acknowledge(ctx context.Context, id, companyID, userID string) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE compliance_alerts
		SET acknowledged = TRUE, acknowledged_at = $1, acknowledged_by = $2
		WHERE id = $3 AND company_id = $4 AND acknowledged = FALSE
		RETURNING id
	`

	var acknowledgedID string
	err := q.QueryRow(ctx, query, time.Now(), userID, id, companyID).Scan(&acknowledgedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Distinguish a missing alert from a double acknowledgment.
			var exists bool
			checkQuery := `SELECT EXISTS (SELECT 1 FROM compliance_alerts WHERE id = $1 AND company_id = $2)`
			if checkErr := q.QueryRow(ctx, checkQuery, id, companyID).Scan(&exists); checkErr != nil {
				return fmt.Errorf("failed to check alert existence: %w", checkErr)
			}
			if exists {
				return compliance.ErrAlreadyAcknowledged
			}
			return compliance.ErrAlertNotFound
		}
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	return nil
}

func NewAlertRepository(db *database.DB) compliance.AlertRepository {
	return &alertRepository{db: db}
}
