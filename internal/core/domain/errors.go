package domain

import "errors"

// Common domain errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// Session errors
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnsupportedProvider = errors.New("unsupported login provider")
	ErrNoSession           = errors.New("no active session")
	ErrOnboardingCompleted = errors.New("onboarding already completed")
)

// Storage errors
var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)
