package database

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryDelay is the pause before the single retry of an idempotent read.
const retryDelay = 100 * time.Millisecond

// IsTransient reports whether err looks like a transient store failure
// (network error, timeout, or a Postgres connection/admin-shutdown class error).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 = connection exception, class 57 = operator intervention.
		code := pgErr.Code
		return len(code) == 5 && (code[:2] == "08" || code[:2] == "57")
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// WithRetry runs fn and retries it exactly once on a transient error.
// Only safe for idempotent reads; writes go through a single transaction instead,
// since blind retry of a non-idempotent write can double-apply.
func WithRetry(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !IsTransient(err) {
		return err
	}
	select {
	case <-ctx.Done():
		return err
	case <-time.After(retryDelay):
	}
	return fn(ctx)
}
