package fetch

import (
	"context"
	"errors"
	"time"
)

// Board adapter retry policy: a fixed delay between a small number of
// attempts. Boards that fail all attempts are skipped for the run.
const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 2 * time.Second
)

// IsRetryable reports whether err is a transient fetch failure worth
// another attempt.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable
	}
	return false
}

// Retry runs op up to attempts times, sleeping delay between attempts.
// It stops early on success, on a non-retryable error, or when ctx is
// done, and returns the last error observed.
func Retry(ctx context.Context, attempts int, delay time.Duration, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
