package reminders

import (
	"context"
	"time"
)

// Repository is the request-path store: every call runs on the isolation
// gateway and sees only the ambient principal's rows.
type Repository interface {
	Create(ctx context.Context, reminder *Reminder) (*Reminder, error)
	ListActive(ctx context.Context) ([]*Reminder, error)
}

// SystemRepository is the dispatcher-side store. It runs on the privileged
// gateway with no ambient identity and may see every principal's rows.
// Request-handling code never holds one.
type SystemRepository interface {
	ListDue(ctx context.Context, now time.Time) ([]*Reminder, error)
	MarkSent(ctx context.Context, id string, sentAt, nextRunAt time.Time) error
}
