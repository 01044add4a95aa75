package auth

import (
	"context"
)

// AuthService resolves worker identity at the kiosk before any clock
// operation is invoked.
type AuthService interface {
	// LoginWithPIN verifies a worker code + PIN pair and issues an access
	// token carrying company_id and worker_id claims.
	LoginWithPIN(ctx context.Context, req LoginRequest) (LoginResponse, error)
}
