package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"optiplan/auth/internal/models"
)

func (r *Postgres) CreateUser(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.Role,
	)
	return wrapErr(err)
}

func (r *Postgres) UserByID(ctx context.Context, id string) (models.User, error) {
	const query = `
		SELECT id, email, display_name, role, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *Postgres) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
		SELECT id, email, display_name, role, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *Postgres) scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, wrapErr(err)
	}
	return user, nil
}

// DeleteUser removes the user row; accounts and sessions go with it via
// ON DELETE CASCADE.
func (r *Postgres) DeleteUser(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return wrapErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
