// Package common defines shared sentinel errors used across the healthboard
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrNotFoundOrDenied covers both "row does not exist" and "row belongs
	// to another principal". The two cases are deliberately indistinguishable
	// so callers cannot probe for other tenants' record IDs.
	ErrNotFoundOrDenied = errors.New("not found or access denied")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrorStorage  = errors.New("storage error")

	// ErrInvalidArgument marks caller mistakes that should surface as a
	// client error, not a server failure.
	ErrInvalidArgument = errors.New("invalid argument")

	// Auth errors. Unknown identity and wrong password both map to
	// ErrInvalidCredential.
	ErrInvalidCredential   = errors.New("invalid credentials")
	ErrDuplicateIdentity   = errors.New("identity already registered")
	ErrInsufficientScope   = errors.New("insufficient token scope")
	ErrInvalidSecondFactor = errors.New("invalid second-factor code")
	ErrMFANotConfigured    = errors.New("second factor not configured")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Connection pool errors.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)
