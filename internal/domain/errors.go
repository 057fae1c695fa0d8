package domain

import "errors"

// Sentinel errors returned by UserRepository implementations.
var (
	ErrUserAlreadyExists  = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("email and password do not match")
	ErrUserNotFound       = errors.New("no account with this email")
	ErrInvalidToken       = errors.New("session token is invalid or expired")
	ErrInvalidResetToken  = errors.New("reset link is invalid or expired")
)
