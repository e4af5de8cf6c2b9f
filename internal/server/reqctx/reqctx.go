// Package reqctx binds the authenticated principal to the context of one
// inbound request. The binding is set once by the HTTP auth middleware and
// read by any transitively invoked code, most importantly the data gateway,
// which imprints the principal onto borrowed database connections.
//
// Context scoping gives the two guarantees the rest of the system leans on:
// a binding is never visible to a concurrently handled request, and it is
// gone on every exit path of the request without an explicit unbind.
package reqctx

import "context"

type ctxKey int

const (
	principalKey ctxKey = iota
	scopeKey
)

// WithPrincipal returns a child context carrying the principal identity.
func WithPrincipal(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalKey, principalID)
}

// PrincipalID reports the ambient principal, if any. Anonymous flows
// (registration, login) run on contexts where ok is false.
func PrincipalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// WithScope returns a child context carrying the token scope of the request.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// Scope reports the ambient token scope, if any.
func Scope(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(scopeKey).(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
