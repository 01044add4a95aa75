package postgresql

import (
	"context"
	"fmt"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/worker"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workerRepository struct {
	db *database.DB
}

const workerColumns = `
	id, company_id, full_name, worker_code, pin_hash, active, created_at, updated_at
`

func scanWorker(row pgx.Row) (worker.Worker, error) {
	var w worker.Worker
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.FullName, &w.WorkerCode,
		&w.PINHash, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return worker.Worker{}, err
	}
	return w, nil
}

// GetByCode implements worker.WorkerRepository.
func (r *workerRepository) GetByCode(ctx context.Context, companyID, workerCode string) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE company_id = $1 AND worker_code = $2
	`

	w, err := scanWorker(q.QueryRow(ctx, query, companyID, workerCode))
	if err != nil {
		if err == pgx.ErrNoRows {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker by code: %w", err)
	}

	return w, nil
}

// GetByID implements worker.WorkerRepository.
func (r *workerRepository) GetByID(ctx context.Context, id, companyID string) (worker.Worker, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workerColumns + `
		FROM workers
		WHERE id = $1 AND company_id = $2
	`

	w, err := scanWorker(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return worker.Worker{}, worker.ErrWorkerNotFound
		}
		return worker.Worker{}, fmt.Errorf("failed to get worker by ID: %w", err)
	}

	return w, nil
}

func NewWorkerRepository(db *database.DB) worker.WorkerRepository {
	return &workerRepository{db: db}
}
