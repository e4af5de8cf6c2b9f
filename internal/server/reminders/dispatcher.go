package reminders

import (
	"context"
	"time"

	"github.com/healthboard/healthboard/internal/logging"
)

// Notifier delivers one due reminder. The transport (push, email, ...) is a
// collaborator; the dispatcher only decides when.
type Notifier interface {
	Notify(ctx context.Context, reminder *Reminder) error
}

// LogNotifier writes notifications to the log. Stands in until a real
// transport is wired.
type LogNotifier struct {
	Log logging.Logger
}

func (n *LogNotifier) Notify(ctx context.Context, reminder *Reminder) error {
	n.Log.Info(ctx, "reminder due", "user_id", reminder.UserID, "title", reminder.Title)
	return nil
}

// Dispatcher periodically scans for due reminders and delivers them. It runs
// outside any request and holds a SystemRepository: the privileged,
// no-identity execution path. It is constructed once during process wiring
// and is not reachable from request handlers.
type Dispatcher struct {
	repo     SystemRepository
	notifier Notifier
	interval time.Duration
	log      logging.Logger
	now      func() time.Time
}

func NewDispatcher(repo SystemRepository, notifier Notifier, interval time.Duration, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		notifier: notifier,
		interval: interval,
		log:      log.With("module", "reminder_dispatcher"),
		now:      time.Now,
	}
}

// Run polls until ctx is canceled. Failures are logged and the tick is
// skipped; nothing is retried within a tick.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info(ctx, "Starting reminder dispatcher", "interval", d.interval.String())

	for {
		select {
		case <-ctx.Done():
			d.log.Info(ctx, "Stopping reminder dispatcher")
			return
		case <-ticker.C:
			d.DispatchDue(ctx)
		}
	}
}

// DispatchDue performs one scan-and-deliver pass.
func (d *Dispatcher) DispatchDue(ctx context.Context) {
	now := d.now()

	due, err := d.repo.ListDue(ctx, now)
	if err != nil {
		d.log.Error(ctx, "listing due reminders failed", "error", err)
		return
	}

	for _, reminder := range due {
		if err := d.notifier.Notify(ctx, reminder); err != nil {
			// undelivered reminders stay due and are picked up next tick
			d.log.Error(ctx, "notification failed", "reminder_id", reminder.ID, "error", err)
			continue
		}

		nextRun := now.Add(time.Duration(reminder.FrequencyMinutes) * time.Minute)
		if err := d.repo.MarkSent(ctx, reminder.ID, now, nextRun); err != nil {
			d.log.Error(ctx, "rescheduling reminder failed", "reminder_id", reminder.ID, "error", err)
		}
	}
}
