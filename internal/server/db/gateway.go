// Package db owns the shared PostgreSQL connection pool and the gateways
// through which every statement in the server runs.
//
// The request-path Gateway imprints the ambient principal identity onto each
// borrowed connection (a parameterized set_config of app.current_user_id) so
// the row-level security policies in the schema can filter per tenant, and it
// guarantees the identity is cleared again before the connection goes back to
// the pool. SystemGateway is the separately-typed privileged path for
// background jobs; it imprints a system marker instead of a principal and is
// only handed out during process wiring.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/healthboard/healthboard/internal/common"
	"github.com/healthboard/healthboard/internal/logging"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

// resetTimeout bounds the un-imprint statement so cleanup cannot hang a pool
// slot forever.
const resetTimeout = 5 * time.Second

// Gateway is the isolation-enforcing data access layer used by all
// request-path repositories.
type Gateway struct {
	pool           *pgxpool.Pool
	log            logging.Logger
	acquireTimeout time.Duration
}

func NewGateway(pool *pgxpool.Pool, log logging.Logger, acquireTimeout time.Duration) *Gateway {
	return &Gateway{
		pool:           pool,
		log:            log.With("module", "db_gateway"),
		acquireTimeout: acquireTimeout,
	}
}

// Do borrows a connection, imprints the ambient principal (when present),
// runs fn on the connection, and clears the imprint before releasing.
//
// The clear runs on every exit path, including panics in fn and requests
// whose context is already canceled. A connection whose imprint cannot be
// cleared is destroyed rather than returned: pooled connections are reused
// across unrelated principals, and residual identity on one is a cross-tenant
// leak.
//
// Anonymous contexts (no ambient principal) skip imprinting entirely; with no
// identity set, owner-scoped tables yield zero rows and reject all writes.
func (g *Gateway) Do(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()

	conn, err := g.pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return common.ErrPoolExhausted
		}
		return fmt.Errorf("%w: acquiring connection: %v", common.ErrorStorage, err)
	}

	principalID, imprinted := reqctx.PrincipalID(ctx)
	if imprinted {
		// Parameterized set_config: the identity never enters SQL text.
		_, err := conn.Exec(ctx, "SELECT set_config('app.current_user_id', $1, false)", principalID)
		if err != nil {
			// Nothing was imprinted, the connection is safe to return.
			conn.Release()
			return fmt.Errorf("%w: imprinting principal: %v", common.ErrorStorage, err)
		}
	}

	defer func() {
		if !imprinted {
			conn.Release()
			return
		}
		// Cleanup must run even when the request context is canceled
		// (client disconnect, handler timeout).
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
		defer cancel()

		if _, rerr := conn.Exec(cleanupCtx, "RESET app.current_user_id"); rerr != nil {
			g.log.Critical(cleanupCtx, "failed to clear principal from pooled connection, destroying it",
				"error", rerr)
			_ = conn.Hijack().Close(cleanupCtx)
			return
		}
		conn.Release()
	}()

	return fn(ctx, conn)
}

// SystemGateway is the privileged execution path for work that runs outside
// any request, such as the reminder dispatcher. It never imprints a principal
// identity; instead it marks the connection as system context, which the
// schema's system policies recognize. The forced row policies bind every
// connection, so without this marker the dispatcher would see zero rows. It
// is a distinct type on purpose: request handlers receive a *Gateway and
// cannot reach this bypass by accident.
type SystemGateway struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

func NewSystemGateway(pool *pgxpool.Pool, log logging.Logger) *SystemGateway {
	return &SystemGateway{
		pool: pool,
		log:  log.With("module", "db_system_gateway"),
	}
}

// Do borrows a connection, marks it as system context, runs fn, and clears
// the marker before releasing. The marker grants cross-tenant visibility, so
// the clear carries the same guarantee as the principal un-imprint: on every
// exit path, and a connection that cannot be cleared is destroyed.
func (g *SystemGateway) Do(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquiring connection: %v", common.ErrorStorage, err)
	}

	_, err = conn.Exec(ctx, "SELECT set_config('app.system_context', 'on', false)")
	if err != nil {
		conn.Release()
		return fmt.Errorf("%w: marking system context: %v", common.ErrorStorage, err)
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
		defer cancel()

		if _, rerr := conn.Exec(cleanupCtx, "RESET app.system_context"); rerr != nil {
			g.log.Critical(cleanupCtx, "failed to clear system context from pooled connection, destroying it",
				"error", rerr)
			_ = conn.Hijack().Close(cleanupCtx)
			return
		}
		conn.Release()
	}()

	return fn(ctx, conn)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
