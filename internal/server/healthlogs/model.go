package healthlogs

import "time"

// Log is one owner-scoped health measurement. Value is plaintext in memory
// only; at rest it lives in an encrypted column.
type Log struct {
	ID       string
	UserID   string
	LogType  string
	Value    string
	Notes    string
	LoggedAt time.Time
}
