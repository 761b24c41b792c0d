package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/resilience"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesOnFailure(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 3, InitialBackoff: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}, func() error {
		calls++
		return errors.New("persistent error")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnOpenBreaker(t *testing.T) {
	calls := 0
	err := resilience.RetryWithBackoff(context.Background(), resilience.Config{MaxRetries: 5, InitialBackoff: time.Millisecond}, func() error {
		calls++
		return gobreaker.ErrOpenState
	})

	assert.True(t, resilience.IsOpen(err))
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.RetryWithBackoff(ctx, resilience.Config{MaxRetries: 5, InitialBackoff: time.Second}, func() error {
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitBreaker_TripsAfterFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")
	failing := func() (any, error) { return nil, errors.New("boom") }

	for range 5 {
		_, _ = cb.Execute(failing)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	assert.True(t, resilience.IsOpen(err))
}
