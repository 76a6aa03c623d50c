package service

import (
	"context"
	"errors"
	"time"

	"optiplan/auth/internal/ids"
	"optiplan/auth/internal/models"
	"optiplan/auth/internal/repository"
	"optiplan/auth/internal/security"
)

// CreatePasswordReset mints a single-use reset token for the account
// behind email and hands it to the mailer. An unknown email succeeds
// silently so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) CreatePasswordReset(ctx context.Context, email string) error {
	user, err := s.users.UserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, tokenHash, err := security.GenerateSessionToken()
	if err != nil {
		return err
	}

	verification := models.Verification{
		ID:         ids.New(),
		Identifier: user.ID,
		TokenHash:  tokenHash,
		ExpiresAt:  time.Now().Add(s.cfg.Auth.VerificationTTL),
	}
	if err := s.verifications.CreateVerification(ctx, verification); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("password reset mail failed")
	}
	return nil
}

// ResetPassword consumes a reset token exactly once, replaces the
// credential account's hash and revokes every session of the user.
func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidResetToken
	}

	verification, err := s.verifications.VerificationByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	consumed, err := s.verifications.ConsumeVerification(ctx, verification.ID, time.Now())
	if err != nil {
		return err
	}
	if !consumed {
		return ErrInvalidResetToken
	}

	account, err := s.accounts.AccountByUserAndProvider(ctx, verification.Identifier, models.ProviderCredential)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdateAccountPassword(ctx, account.ID, passwordHash); err != nil {
		return err
	}

	if err := s.sessions.RevokeAll(ctx, verification.Identifier); err != nil {
		s.log.Warn().Err(err).Str("user_id", verification.Identifier).Msg("revoke sessions after reset failed")
	}

	s.log.Info().Str("user_id", verification.Identifier).Msg("password reset")
	return nil
}
