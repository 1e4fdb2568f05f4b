package services

import (
	"context"
	"time"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
	"github.com/custodia-labs/sibyl-cli/internal/logger"
)

// Retry policy for gateway calls. Only transient failures are
// retried; permanent failures surface immediately.
const (
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// withRetry invokes fn up to retryAttempts times, doubling the delay
// between attempts. A context cancellation aborts waiting.
func withRetry[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := retryBaseDelay
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !domain.IsTransient(err) {
			return zero, err
		}
		if attempt == retryAttempts {
			break
		}

		logger.Warn("%s attempt %d failed, retrying in %s: %v", op, attempt, delay, err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return zero, lastErr
}
