package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optiplan/auth/internal/models"
	"optiplan/auth/internal/repository"
)

func TestRegisterAndVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{
		Email:       "alice@example.com",
		Password:    "Secret123!",
		DisplayName: "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.UserRoleProvider, user.Role)

	verified, err := f.auth.Verify(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)

	// The credential account exists and carries a hash, not the password.
	account, err := f.store.AccountByUserAndProvider(ctx, user.ID, models.ProviderCredential)
	require.NoError(t, err)
	require.NotNil(t, account.PasswordHash)
	assert.NotContains(t, *account.PasswordHash, "Secret123!")
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{Email: "  Alice@Example.COM ", Password: "Secret123!", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.auth.Verify(ctx, "ALICE@example.com", "Secret123!")
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Secret123!", DisplayName: "Alice"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Other456!", DisplayName: "Mallory"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// The original credentials still work and belong to the first user.
	verified, err := f.auth.Verify(ctx, "alice@example.com", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, first.ID, verified.ID)

	_, err = f.auth.Verify(ctx, "alice@example.com", "Other456!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEnumerationResistance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Secret123!", DisplayName: "Alice"})
	require.NoError(t, err)

	_, wrongPass := f.auth.Verify(ctx, "alice@example.com", "WrongPass!")
	_, unknownUser := f.auth.Verify(ctx, "nobody@example.com", "WrongPass!")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
}

func TestVerifyUserWithoutCredentialAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A crash between the two registration writes can leave this state.
	require.NoError(t, f.store.CreateUser(ctx, models.User{
		ID: "u1", Email: "orphan@example.com", Role: models.DefaultRole,
	}))

	_, err := f.auth.Verify(ctx, "orphan@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRoleNotCallerControlled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Secret123!", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRole, user.Role)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "Secret123!", DisplayName: "Alice"})
	require.NoError(t, err)

	issued, err := f.sessions.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, f.auth.CreatePasswordReset(ctx, "alice@example.com"))
	require.NotEmpty(t, f.mailer.token)
	assert.Equal(t, "alice@example.com", f.mailer.email)

	require.NoError(t, f.auth.ResetPassword(ctx, f.mailer.token, "NewSecret456!"))

	// Old password dead, new one live.
	_, err = f.auth.Verify(ctx, "alice@example.com", "Secret123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Verify(ctx, "alice@example.com", "NewSecret456!")
	assert.NoError(t, err)

	// Every session was revoked with the reset.
	_, _, err = f.sessions.Validate(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrNoSession)

	// The token is single use.
	err = f.auth.ResetPassword(ctx, f.mailer.token, "Another789!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetUnknownEmailSilent(t *testing.T) {
	f := newFixture(t)

	err := f.auth.CreatePasswordReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, f.mailer.token, "no token may be minted for an unknown email")
}

func TestResetPasswordBadToken(t *testing.T) {
	f := newFixture(t)

	err := f.auth.ResetPassword(context.Background(), "not-a-real-token", "NewSecret456!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestRegisterConflictIsStorageDriven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Seed the store directly so the service has no chance to pre-check.
	require.NoError(t, f.store.CreateUser(ctx, models.User{
		ID: "u1", Email: "taken@example.com", Role: models.DefaultRole,
	}))

	_, err := f.auth.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "Secret123!", DisplayName: "X"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NotErrorIs(t, err, repository.ErrConflict, "storage error must be translated")
}
