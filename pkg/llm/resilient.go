package llm

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/retry"
)

// ResilientInvoker decorates an Invoker with retries for transient failures
// and a circuit breaker shared by all callers.
type ResilientInvoker struct {
	inner   Invoker
	retry   *retry.Config
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewResilientInvoker wraps inner. A nil retry config uses retry.DefaultConfig.
func NewResilientInvoker(inner Invoker, retryCfg *retry.Config, breaker *CircuitBreaker, logger *zap.Logger) *ResilientInvoker {
	if breaker == nil {
		breaker = NewCircuitBreaker(DefaultCircuitBreakerConfig())
	}
	return &ResilientInvoker{
		inner:   inner,
		retry:   retryCfg,
		breaker: breaker,
		logger:  logger.Named("llm.resilient"),
	}
}

// Invoke implements Invoker.
func (r *ResilientInvoker) Invoke(ctx context.Context, spec PromptSpec) (string, error) {
	attempt := 0
	return retry.DoIfRetryableWithResult(ctx, r.retry, func() (string, error) {
		attempt++
		if err := r.breaker.Allow(); err != nil {
			return "", err
		}

		out, err := r.inner.Invoke(ctx, spec)
		if err != nil {
			retryable := retry.IsRetryable(err)
			r.recordOutcome(ctx, err, retryable)
			r.logger.Warn("Model invocation failed",
				zap.String("model", spec.Model),
				zap.Int("attempt", attempt),
				zap.Bool("retryable", retryable),
				zap.String("circuit", r.breaker.State().String()),
				zap.Int("consecutive_failures", r.breaker.ConsecutiveFailures()),
				zap.Error(err))
			return "", err
		}

		r.breaker.RecordSuccess()
		return out, nil
	})
}

// recordOutcome feeds a failed call into the breaker. Only transient provider
// failures count against the circuit. Cancelled calls leave it unchanged.
func (r *ResilientInvoker) recordOutcome(ctx context.Context, err error, retryable bool) {
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		r.breaker.Release()
	case retryable:
		r.breaker.RecordFailure()
	default:
		r.breaker.RecordSuccess()
	}
}

// Provider implements Invoker.
func (r *ResilientInvoker) Provider() string {
	return r.inner.Provider()
}
