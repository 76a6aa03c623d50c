package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"optiplan/auth/internal/models"
)

func (r *Postgres) CreateSession(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, last_renewed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.ExpiresAt,
		session.LastRenewedAt,
	)
	return wrapErr(err)
}

func (r *Postgres) SessionByTokenHash(ctx context.Context, tokenHash []byte) (models.Session, error) {
	const query = `
		SELECT id, user_id, token_hash, expires_at, last_renewed_at, created_at
		FROM sessions WHERE token_hash = $1
	`
	return r.scanSession(r.pool.QueryRow(ctx, query, tokenHash))
}

func (r *Postgres) SessionsByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const query = `
		SELECT id, user_id, token_hash, expires_at, last_renewed_at, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY last_renewed_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := r.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, wrapErr(rows.Err())
}

// RenewSession is deliberately a single conditional update: two requests
// crossing the renewal window at once cannot both advance the row.
func (r *Postgres) RenewSession(ctx context.Context, id string, prevRenewedAt, renewedAt, expiresAt time.Time) (bool, error) {
	const query = `
		UPDATE sessions
		SET last_renewed_at = $3, expires_at = $4
		WHERE id = $1 AND last_renewed_at = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, prevRenewedAt, renewedAt, expiresAt)
	if err != nil {
		return false, wrapErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *Postgres) DeleteSession(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return wrapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Postgres) DeleteSessionsByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM sessions WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return wrapErr(err)
}

func (r *Postgres) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, wrapErr(err)
	}
	return cmd.RowsAffected(), nil
}

func (r *Postgres) scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.LastRenewedAt,
		&session.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, wrapErr(err)
	}
	return session, nil
}
