package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"optiplan/auth/internal/models"
)

func (r *Postgres) CreateVerification(ctx context.Context, verification models.Verification) error {
	const query = `
		INSERT INTO verifications (id, identifier, token_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		verification.ID,
		verification.Identifier,
		verification.TokenHash,
		verification.ExpiresAt,
	)
	return wrapErr(err)
}

func (r *Postgres) VerificationByTokenHash(ctx context.Context, tokenHash []byte) (models.Verification, error) {
	const query = `
		SELECT id, identifier, token_hash, expires_at, used, created_at
		FROM verifications WHERE token_hash = $1
	`

	row := r.pool.QueryRow(ctx, query, tokenHash)
	var verification models.Verification
	if err := row.Scan(
		&verification.ID,
		&verification.Identifier,
		&verification.TokenHash,
		&verification.ExpiresAt,
		&verification.Used,
		&verification.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Verification{}, ErrNotFound
		}
		return models.Verification{}, wrapErr(err)
	}
	return verification, nil
}

// ConsumeVerification flips the used flag exactly once; a second caller
// racing on the same token loses the conditional update.
func (r *Postgres) ConsumeVerification(ctx context.Context, id string, now time.Time) (bool, error) {
	const query = `
		UPDATE verifications
		SET used = TRUE
		WHERE id = $1 AND used = FALSE AND expires_at > $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, wrapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Postgres) DeleteDeadVerifications(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM verifications WHERE used = TRUE OR expires_at <= $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, wrapErr(err)
	}
	return cmd.RowsAffected(), nil
}
