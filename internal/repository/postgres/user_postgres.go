package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"metrodoc/internal/model"
	"metrodoc/internal/repository"
)

const uniqueViolation = "23505"

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// Emails are compared case-insensitively.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, name, email, role, password_hash, created_at`

func scanAccount(s rowScanner) (*repository.Account, error) {
	var a repository.Account
	if err := s.Scan(&a.User.ID, &a.User.Name, &a.User.Email, &a.User.Role, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *UserPostgres) Create(ctx context.Context, a *repository.Account) (*repository.Account, error) {
	const q = `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, lower($3), $4, $5, $6)
		RETURNING ` + userColumns
	out, err := scanAccount(r.db.QueryRowContext(ctx, q,
		a.User.ID, a.User.Name, a.User.Email, a.User.Role, a.PasswordHash, a.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("email %s: %w", a.User.Email, model.ErrDuplicateID)
		}
		return nil, err
	}
	return out, nil
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*repository.Account, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanAccount(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*repository.Account, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, q, id))
}
