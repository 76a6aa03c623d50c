// Package repository is the persistence adapter: the only path between
// the auth/session logic and durable storage. Any backend implementing
// Store is interchangeable; the package ships a postgres adapter and an
// in-memory one with identical semantics.
package repository

import (
	"context"
	"errors"
	"time"

	"optiplan/auth/internal/models"
)

var (
	// ErrNotFound distinguishes "absent" from a storage failure.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is a storage-level uniqueness violation (email, token).
	ErrConflict = errors.New("record conflicts with an existing one")
	// ErrUnavailable means the backend could not be reached; callers may
	// retry with backoff.
	ErrUnavailable = errors.New("storage unavailable")
)

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) error
	AccountByUserAndProvider(ctx context.Context, userID string, provider models.ProviderKind) (models.Account, error)
	UpdateAccountPassword(ctx context.Context, accountID string, passwordHash string) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, session models.Session) error
	SessionByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, error)
	SessionsByUser(ctx context.Context, userID string) ([]models.Session, error)

	// RenewSession advances lastRenewedAt/expiresAt only if the row still
	// carries prevRenewedAt, as a single conditional update. It reports
	// whether this caller won the renewal.
	RenewSession(ctx context.Context, id string, prevRenewedAt, renewedAt, expiresAt time.Time) (bool, error)

	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type VerificationStore interface {
	CreateVerification(ctx context.Context, verification models.Verification) error
	VerificationByTokenHash(ctx context.Context, tokenHash []byte) (models.Verification, error)

	// ConsumeVerification marks the record used only if it is still unused
	// and unexpired at now. It reports whether this caller consumed it.
	ConsumeVerification(ctx context.Context, id string, now time.Time) (bool, error)

	DeleteDeadVerifications(ctx context.Context, now time.Time) (int64, error)
}

// Store is the full adapter contract.
type Store interface {
	UserStore
	AccountStore
	SessionStore
	VerificationStore
}
