package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "network error", err: errors.New("connection reset"), want: true},
		{name: "server error", err: &APIError{StatusCode: http.StatusBadGateway}, want: true},
		{name: "rate limited", err: &APIError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "request timeout", err: &APIError{StatusCode: http.StatusRequestTimeout}, want: true},
		{name: "unauthorized", err: &APIError{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "context length", err: fmt.Errorf("%w: %w", ErrContextLength, &APIError{StatusCode: http.StatusBadRequest}), want: false},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "deadline", err: fmt.Errorf("api call: %w", context.DeadlineExceeded), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	config := RetryConfig{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, err := retryWithBackoff(context.Background(), config, retryable, func() (int, error) {
			calls++
			if calls < 2 {
				return 0, errors.New("transient")
			}
			return 7, nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, got)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		permanent := &APIError{StatusCode: http.StatusForbidden}
		_, err := retryWithBackoff(context.Background(), config, retryable, func() (int, error) {
			calls++
			return 0, permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error after all attempts", func(t *testing.T) {
		calls := 0
		_, err := retryWithBackoff(context.Background(), config, nil, func() (int, error) {
			calls++
			return 0, fmt.Errorf("attempt %d", calls)
		})
		assert.EqualError(t, err, "attempt 4")
		assert.Equal(t, 4, calls)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := retryWithBackoff(ctx, config, retryable, func() (int, error) {
			calls++
			cancel()
			return 0, errors.New("transient")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestRetryConfig_Jittered(t *testing.T) {
	c := RetryConfig{Jitter: 0.1}
	for i := 0; i < 100; i++ {
		d := c.jittered(time.Second)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
	assert.Equal(t, time.Second, RetryConfig{}.jittered(time.Second))
}
