package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/server/db"
)

// Gateway is the slice of the data gateway this repository needs. Satisfied
// by *db.Gateway.
type Gateway interface {
	Do(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error
}

type PostgresRepository struct {
	gw Gateway
}

func NewPostgresRepository(gw Gateway) *PostgresRepository {
	return &PostgresRepository{gw: gw}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {

	query :=
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, user.Email, user.PasswordHash).
			Scan(&user.ID, &user.CreatedAt)
	})

	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query :=
		`SELECT id, email, password_hash, mfa_secret, created_at FROM users
		 WHERE email = $1
		 `

	user := &User{}
	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, email).
			Scan(&user.ID, &user.Email, &user.PasswordHash, &user.MFASecret, &user.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query :=
		`SELECT id, email, password_hash, mfa_secret, created_at FROM users
		 WHERE id = $1
		 `

	user := &User{}
	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query, id).
			Scan(&user.ID, &user.Email, &user.PasswordHash, &user.MFASecret, &user.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SetMFASecret(ctx context.Context, id string, secret string) error {
	query :=
		`UPDATE users SET mfa_secret = $1
		 WHERE id = $2
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, secret, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ErrorNotFound
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
