// Package repomanager wires the connection pool, the gateways and the
// per-domain repositories into one lifecycle-managed unit, created at process
// start and torn down at shutdown.
package repomanager

import (
	"context"

	"github.com/healthboard/healthboard/internal/server/healthlogs"
	"github.com/healthboard/healthboard/internal/server/reminders"
	"github.com/healthboard/healthboard/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Users() users.Repository
	HealthLogs() healthlogs.Repository
	Reminders() reminders.Repository
	// SystemReminders is the privileged dispatcher-side store; only the
	// background dispatcher should receive it.
	SystemReminders() reminders.SystemRepository
	Close()
}
