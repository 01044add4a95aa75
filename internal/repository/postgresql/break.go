package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/timeclock"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type breakRepository struct {
	db *database.DB
}

// Append implements timeclock.BreakRepository.
func (b *breakRepository) Append(ctx context.Context, brk timeclock.Break) (timeclock.Break, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		INSERT INTO breaks (
			time_entry_id, worker_id, break_type, break_start, break_end, waived
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		brk.TimeEntryID,
		brk.WorkerID,
		brk.BreakType,
		brk.BreakStart,
		brk.BreakEnd,
		brk.Waived,
	).Scan(&brk.ID, &brk.CreatedAt)

	if err != nil {
		return timeclock.Break{}, fmt.Errorf("failed to append break: %w", err)
	}

	return brk, nil
}

// Close implements timeclock.BreakRepository.
func (b *breakRepository) Close(ctx context.Context, id string, end time.Time) error {
	q := GetQuerier(ctx, b.db)

	query := `
		UPDATE breaks
		SET break_end = $1
		WHERE id = $2 AND break_end IS NULL AND waived = FALSE
		RETURNING id
	`

	var closedID string
	if err := q.QueryRow(ctx, query, end, id).Scan(&closedID); err != nil {
		if err == pgx.ErrNoRows {
			return timeclock.ErrNoActiveBreak
		}
		return fmt.Errorf("failed to close break: %w", err)
	}

	return nil
}

// ListByEntry implements timeclock.BreakRepository.
func (b *breakRepository) ListByEntry(ctx context.Context, timeEntryID string) ([]timeclock.Break, error) {
	q := GetQuerier(ctx, b.db)

	query := `
		SELECT id, time_entry_id, worker_id, break_type, break_start, break_end, waived, created_at
		FROM breaks
		WHERE time_entry_id = $1
		ORDER BY break_start ASC
	`

	rows, err := q.Query(ctx, query, timeEntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query breaks: %w", err)
	}
	defer rows.Close()

	var breaks []timeclock.Break
	for rows.Next() {
		var brk timeclock.Break
		err := rows.Scan(
			&brk.ID, &brk.TimeEntryID, &brk.WorkerID, &brk.BreakType,
			&brk.BreakStart, &brk.BreakEnd, &brk.Waived, &brk.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		breaks = append(breaks, brk)
	}

	return breaks, nil
}

func NewBreakRepository(db *database.DB) timeclock.BreakRepository {
	return &breakRepository{db: db}
}
