package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

type declaredErr struct{ retryable bool }

func (e declaredErr) Error() string     { return "declared" }
func (e declaredErr) IsRetryable() bool { return e.retryable }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Equal(t, 0.1, cfg.JitterFactor)
}

func TestDoIfRetryableWithResult_SuccessAfterRetries(t *testing.T) {
	calls := 0
	_, err := DoIfRetryableWithResult(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("503 service unavailable")
		}
		return calls, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoIfRetryableWithResult_MaxRetriesExhausted(t *testing.T) {
	calls := 0
	_, err := DoIfRetryableWithResult(context.Background(), fastConfig(2), func() (int, error) {
		calls++
		return 0, fmt.Errorf("attempt %d: connection refused", calls)
	})

	require.Error(t, err)
	assert.Equal(t, "attempt 3: connection refused", err.Error())
	assert.Equal(t, 3, calls)
}

func TestDoIfRetryableWithResult_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{MaxRetries: 5, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}

	calls := 0
	_, err := DoIfRetryableWithResult(ctx, cfg, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("connection reset")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoIfRetryableWithResult_RetriesTransientMessage(t *testing.T) {
	calls := 0
	got, err := DoIfRetryableWithResult(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("connection refused")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"rate limit", errors.New("Rate limit exceeded"), true},
		{"503", errors.New("status 503"), true},
		{"auth", errors.New("invalid credentials"), false},
		{"declared retryable", declaredErr{retryable: true}, true},
		{"declared permanent overrides text", fmt.Errorf("503: %w", declaredErr{retryable: false}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestDoIfRetryableWithResult_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := DoIfRetryableWithResult(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		return 0, declaredErr{retryable: false}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoIfRetryableWithResult_RetriesTransientError(t *testing.T) {
	calls := 0
	got, err := DoIfRetryableWithResult(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, declaredErr{retryable: true}
		}
		return calls, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, 3, calls)
}

func TestDoIfRetryableWithResult_Exhausted(t *testing.T) {
	calls := 0
	_, err := DoIfRetryableWithResult(context.Background(), fastConfig(1), func() (int, error) {
		calls++
		return 0, declaredErr{retryable: true}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestNilConfigUsesDefaults(t *testing.T) {
	calls := 0
	_, err := DoIfRetryableWithResult(context.Background(), nil, func() (int, error) {
		calls++
		return calls, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
