package healthlogs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthboard/healthboard/internal/common"
)

// Gateway is the slice of the data gateway this repository needs. Satisfied
// by *db.Gateway.
type Gateway interface {
	Do(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error
}

// PostgresRepository stores logs with the value column encrypted inside
// Postgres (pgcrypto). The encryption key never appears in SQL text; it is
// passed as a statement parameter.
type PostgresRepository struct {
	gw            Gateway
	encryptionKey string
}

func NewPostgresRepository(gw Gateway, encryptionKey string) *PostgresRepository {
	return &PostgresRepository{gw: gw, encryptionKey: encryptionKey}
}

func (r *PostgresRepository) Create(ctx context.Context, log *Log) (*Log, error) {

	query :=
		`INSERT INTO health_logs (user_id, log_type, encrypted_value, notes)
		 VALUES ($1, $2, pgp_sym_encrypt($3::text, $4), $5)
		 RETURNING id, logged_at
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query,
			log.UserID, log.LogType, log.Value, r.encryptionKey, log.Notes).
			Scan(&log.ID, &log.LoggedAt)
	})

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return log, nil
}

// List returns the logs visible on the current connection. The row-level
// policy limits them to the imprinted principal; no ownership predicate is
// needed here.
func (r *PostgresRepository) List(ctx context.Context) ([]*Log, error) {

	query :=
		`SELECT id, user_id, log_type,
		        pgp_sym_decrypt(encrypted_value, $1) AS value,
		        COALESCE(notes, ''), logged_at
		 FROM health_logs
		 ORDER BY logged_at DESC
		 `

	var logs []*Log
	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, r.encryptionKey)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			log := &Log{}
			if err := rows.Scan(&log.ID, &log.UserID, &log.LogType, &log.Value, &log.Notes, &log.LoggedAt); err != nil {
				return err
			}
			logs = append(logs, log)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return logs, nil
}

// Delete removes one log by id. The policy hides other principals' rows, so
// a missing row and a foreign row are the same outcome.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {

	query :=
		`DELETE FROM health_logs
		 WHERE id = $1
		 RETURNING id
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		var deleted string
		return conn.QueryRow(ctx, query, id).Scan(&deleted)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrNotFoundOrDenied
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
