package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"optiplan/auth/internal/models"
)

func (r *Postgres) CreateAccount(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (id, user_id, provider, password_hash, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.UserID,
		account.Provider,
		account.PasswordHash,
	)
	return wrapErr(err)
}

func (r *Postgres) AccountByUserAndProvider(ctx context.Context, userID string, provider models.ProviderKind) (models.Account, error) {
	const query = `
		SELECT id, user_id, provider, password_hash, created_at
		FROM accounts WHERE user_id = $1 AND provider = $2
	`

	row := r.pool.QueryRow(ctx, query, userID, provider)
	var account models.Account
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Provider,
		&account.PasswordHash,
		&account.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, wrapErr(err)
	}
	return account, nil
}

func (r *Postgres) UpdateAccountPassword(ctx context.Context, accountID string, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, accountID, passwordHash)
	if err != nil {
		return wrapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
