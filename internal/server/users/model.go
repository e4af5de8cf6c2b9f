package users

import "time"

// User is a registered principal.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	// MFASecret is the base32 TOTP secret. Nil until second-factor setup has
	// started; its presence decides which pending scope a login receives.
	MFASecret *string
	CreatedAt time.Time
}
