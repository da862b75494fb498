package domain

import "errors"

// Sentinel errors shared across repositories and services.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password
	// so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrSessionNotFound = errors.New("session not found")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)
