package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"

	"github.com/healthboard/healthboard/internal/logging"
	"github.com/healthboard/healthboard/internal/server/config"
	"github.com/healthboard/healthboard/internal/server/db"
	"github.com/healthboard/healthboard/internal/server/healthlogs"
	"github.com/healthboard/healthboard/internal/server/migrations"
	"github.com/healthboard/healthboard/internal/server/reminders"
	"github.com/healthboard/healthboard/internal/server/users"
)

type PostgresRepositoryManager struct {
	dsn             string
	pool            *pgxpool.Pool
	users           users.Repository
	healthLogs      healthlogs.Repository
	reminders       reminders.Repository
	systemReminders reminders.SystemRepository
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) HealthLogs() healthlogs.Repository {
	return m.healthLogs
}

func (m *PostgresRepositoryManager) Reminders() reminders.Repository {
	return m.reminders
}

func (m *PostgresRepositoryManager) SystemReminders() reminders.SystemRepository {
	return m.systemReminders
}

// RunMigrations applies the embedded goose migrations, including the
// row-level security policies. Goose works over database/sql, so a short
// lived stdlib connection is opened beside the pgx pool.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	sqlDB, err := sql.Open("pgx", m.dsn)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Close() {
	m.pool.Close()
}

func NewPostgresRepositoryManager(ctx context.Context, cfg *config.Config, log logging.Logger) (RepositoryManager, error) {

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	gateway := db.NewGateway(pool, log, cfg.PoolAcquireTimeout)
	systemGateway := db.NewSystemGateway(pool, log)

	m := &PostgresRepositoryManager{
		dsn:             cfg.DatabaseDSN,
		pool:            pool,
		users:           users.NewPostgresRepository(gateway),
		healthLogs:      healthlogs.NewPostgresRepository(gateway, cfg.EncryptionKey),
		reminders:       reminders.NewPostgresRepository(gateway),
		systemReminders: reminders.NewSystemPostgresRepository(systemGateway),
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
