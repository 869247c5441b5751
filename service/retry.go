package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// Postgres SQLSTATE codes for conflicts that are safe to retry: the
// failed attempt left no persisted effect, so re-running the whole unit
// of work is equivalent to the first try.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isTransient reports whether err is a transient storage conflict.
// Domain errors are deterministic rejections and are never retried.
func isTransient(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// withRetry runs op, retrying transient storage conflicts a bounded
// number of times with exponential backoff. Everything else surfaces
// immediately.
func withRetry(ctx context.Context, maxRetries uint64, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 10 * time.Millisecond
	policy.MaxInterval = 250 * time.Millisecond

	attempt := 0
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isTransient(err) {
			attempt++
			log.WithFields(log.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("Transient storage conflict, retrying")
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
}
