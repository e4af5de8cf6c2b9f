package reminders

import "time"

// Reminder is an owner-scoped recurring reminder.
type Reminder struct {
	ID               string
	UserID           string
	Title            string
	FrequencyMinutes int
	LastSentAt       *time.Time
	NextRunAt        time.Time
	IsActive         bool
	CreatedAt        time.Time
}
