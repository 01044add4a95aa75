package auth

import "errors"

// Auth domain errors
var (
	ErrInvalidCredentials = errors.New("invalid worker code or PIN")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
