package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sibyl-cli/internal/core/domain"
)

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), "op", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_PermanentFailureNotRetried(t *testing.T) {
	permanent := &domain.GatewayError{Op: "embed", Transient: false, Err: errors.New("bad key")}
	calls := 0
	_, err := withRetry(context.Background(), "op", func() (int, error) {
		calls++
		return 0, permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_TransientFailureRetried(t *testing.T) {
	transient := &domain.GatewayError{Op: "embed", Transient: true, Err: errors.New("503")}
	calls := 0
	result, err := withRetry(context.Background(), "op", func() (string, error) {
		calls++
		if calls < 2 {
			return "", transient
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_CancelledContextAbortsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transient := &domain.GatewayError{Op: "embed", Transient: true, Err: errors.New("timeout")}
	calls := 0
	_, err := withRetry(ctx, "op", func() (int, error) {
		calls++
		return 0, transient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
