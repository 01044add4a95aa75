package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldtrack/timeclock-backend-go/internal/domain/auth"
	"github.com/fieldtrack/timeclock-backend-go/internal/domain/worker"
	"github.com/fieldtrack/timeclock-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	workerRepo worker.WorkerRepository
	jwtService jwt.Service
}

func NewAuthService(workerRepo worker.WorkerRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		workerRepo: workerRepo,
		jwtService: jwtService,
	}
}

// LoginWithPIN implements auth.AuthService.
func (s *AuthServiceImpl) LoginWithPIN(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	w, err := s.workerRepo.GetByCode(ctx, req.CompanyID, req.WorkerCode)
	if err != nil {
		if errors.Is(err, worker.ErrWorkerNotFound) {
			// Same error as a wrong PIN so a guessing client cannot enumerate
			// worker codes.
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, fmt.Errorf("failed to get worker: %w", err)
	}

	if !w.Active {
		return auth.LoginResponse{}, worker.ErrWorkerInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(w.PINHash), []byte(req.PIN)); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(w.ID, w.CompanyID, w.FullName)
	if err != nil {
		return auth.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		WorkerID:    w.ID,
		WorkerName:  w.FullName,
	}, nil
}
