package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthboard/healthboard/internal/common"
)

// Gateway is the slice of the data gateway this repository needs. Satisfied
// by both *db.Gateway and *db.SystemGateway; which one a repository is
// constructed with decides whether it runs scoped or privileged.
type Gateway interface {
	Do(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error
}

type PostgresRepository struct {
	gw Gateway
}

func NewPostgresRepository(gw Gateway) *PostgresRepository {
	return &PostgresRepository{gw: gw}
}

func (r *PostgresRepository) Create(ctx context.Context, reminder *Reminder) (*Reminder, error) {

	query :=
		`INSERT INTO reminders (user_id, title, frequency_minutes, next_run_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_active, created_at
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return conn.QueryRow(ctx, query,
			reminder.UserID, reminder.Title, reminder.FrequencyMinutes, reminder.NextRunAt).
			Scan(&reminder.ID, &reminder.IsActive, &reminder.CreatedAt)
	})

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return reminder, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Reminder, error) {

	query :=
		`SELECT id, user_id, title, frequency_minutes, last_sent_at, next_run_at, is_active, created_at
		 FROM reminders
		 WHERE is_active = TRUE
		 ORDER BY next_run_at
		 `

	var result []*Reminder
	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rem := &Reminder{}
			if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.FrequencyMinutes,
				&rem.LastSentAt, &rem.NextRunAt, &rem.IsActive, &rem.CreatedAt); err != nil {
				return err
			}
			result = append(result, rem)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return result, nil
}

// SystemPostgresRepository implements the dispatcher-side queries. It must be
// constructed with the privileged gateway.
type SystemPostgresRepository struct {
	gw Gateway
}

func NewSystemPostgresRepository(gw Gateway) *SystemPostgresRepository {
	return &SystemPostgresRepository{gw: gw}
}

func (r *SystemPostgresRepository) ListDue(ctx context.Context, now time.Time) ([]*Reminder, error) {

	query :=
		`SELECT id, user_id, title, frequency_minutes, last_sent_at, next_run_at, is_active, created_at
		 FROM reminders
		 WHERE is_active = TRUE AND next_run_at <= $1
		 `

	var due []*Reminder
	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, now)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rem := &Reminder{}
			if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.FrequencyMinutes,
				&rem.LastSentAt, &rem.NextRunAt, &rem.IsActive, &rem.CreatedAt); err != nil {
				return err
			}
			due = append(due, rem)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return due, nil
}

func (r *SystemPostgresRepository) MarkSent(ctx context.Context, id string, sentAt, nextRunAt time.Time) error {

	query :=
		`UPDATE reminders
		 SET last_sent_at = $1, next_run_at = $2
		 WHERE id = $3
		 `

	err := r.gw.Do(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, query, sentAt, nextRunAt, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ErrorNotFound
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
