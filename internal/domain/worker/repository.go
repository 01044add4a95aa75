package worker

import (
	"context"
)

// WorkerRepository defines data access for worker accounts.
type WorkerRepository interface {
	// GetByCode retrieves a worker by company and worker code, used at kiosk
	// login before any JWT exists.
	GetByCode(ctx context.Context, companyID, workerCode string) (Worker, error)

	// GetByID retrieves a worker by ID with company isolation.
	GetByID(ctx context.Context, id, companyID string) (Worker, error)
}
