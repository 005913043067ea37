package auth

import "errors"

// Auth domain errors
var (
	ErrInvalidAPIKey = errors.New("invalid api key")
	ErrInvalidToken  = errors.New("invalid or expired token")
)
