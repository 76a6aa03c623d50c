package service

import "errors"

var (
	// ErrDuplicateEmail rejects registration with an already-used email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials is deliberately generic: unknown email and
	// wrong password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession means the presented token names no live session.
	ErrNoSession = errors.New("no session")

	// ErrSessionExpired means the session existed but its lifetime ran out.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidResetToken covers unknown, expired and already-used
	// password reset tokens alike.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
