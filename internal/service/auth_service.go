package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"optiplan/auth/internal/config"
	"optiplan/auth/internal/ids"
	"optiplan/auth/internal/models"
	"optiplan/auth/internal/repository"
	"optiplan/auth/internal/security"
)

// Mailer delivers out-of-band verification tokens. Delivery is an
// external collaborator; the default implementation drops the mail.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
}

type NopMailer struct{}

func (NopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

// AuthService verifies submitted credentials and creates credential
// accounts at signup. Session issuance is SessionService's job.
type AuthService struct {
	users         repository.UserStore
	accounts      repository.AccountStore
	verifications repository.VerificationStore
	sessions      *SessionService
	mailer        Mailer
	cfg           *config.AppConfig
	log           zerolog.Logger

	// decoyHash absorbs a hash comparison on the unknown-email path so
	// response timing does not enumerate accounts.
	decoyHash string
}

func NewAuthService(
	users repository.UserStore,
	accounts repository.AccountStore,
	verifications repository.VerificationStore,
	sessions *SessionService,
	mailer Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	decoy, err := security.HashPassword(ids.New())
	if err != nil {
		return nil, err
	}

	if mailer == nil {
		mailer = NopMailer{}
	}

	return &AuthService{
		users:         users,
		accounts:      accounts,
		verifications: verifications,
		sessions:      sessions,
		mailer:        mailer,
		cfg:           cfg,
		log:           log,
		decoyHash:     decoy,
	}, nil
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates a User and its linked credential Account. The role
// is assigned by the system, never taken from the caller. Uniqueness is
// enforced by the store's constraint, not by a check-then-write, so two
// concurrent registrations of one email cannot both succeed.
//
// The two writes are not transactional: a crash between them can leave
// a user without a credential account. Verify treats such a user as
// unknown, and a retried registration surfaces ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:          ids.New(),
		Email:       email,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        models.DefaultRole,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	account := models.Account{
		ID:           ids.New(),
		UserID:       user.ID,
		Provider:     models.ProviderCredential,
		PasswordHash: &passwordHash,
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Verify checks an email/password pair. Every failure mode collapses
// into ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.users.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn the same work as a real comparison.
			_, _ = security.VerifyPassword(password, s.decoyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	account, err := s.accounts.AccountByUserAndProvider(ctx, user.ID, models.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = security.VerifyPassword(password, s.decoyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if account.PasswordHash == nil {
		_, _ = security.VerifyPassword(password, s.decoyHash)
		return models.User{}, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, *account.PasswordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
