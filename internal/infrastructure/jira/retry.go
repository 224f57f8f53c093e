package jira

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/metashield/jirasync/internal/domain/ticket"
	"github.com/metashield/jirasync/internal/shared/config"
)

// RetryPolicy bounds how a remote call is retried. The zero value performs a
// single attempt with the client's default timeout.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// Exponential doubles the delay after every attempt instead of keeping
	// it constant.
	Exponential bool
	// AttemptTimeout and TimeoutStep give attempt n a deadline of
	// AttemptTimeout + n*TimeoutStep. Zero keeps the client default.
	AttemptTimeout time.Duration
	TimeoutStep    time.Duration
}

// RealtimeRetryPolicy builds the constant-delay policy with escalating
// deadlines used by the realtime sync.
func RealtimeRetryPolicy(cfg config.RealtimeSyncConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    cfg.RetryAttempts,
		Delay:          cfg.RetryDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		TimeoutStep:    cfg.TimeoutStep,
	}
}

// TimeoutFor returns the deadline of the given 1-based attempt.
func (p RetryPolicy) TimeoutFor(attempt int, fallback time.Duration) time.Duration {
	if p.AttemptTimeout <= 0 {
		return fallback
	}
	return p.AttemptTimeout + time.Duration(attempt)*p.TimeoutStep
}

func (p RetryPolicy) backOff() backoff.BackOff {
	if !p.Exponential {
		return backoff.NewConstantBackOff(p.Delay)
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Delay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = 16 * p.Delay
	return b
}

// retry runs op under p. Only retryable source errors are attempted again.
// notify is called before every wait.
func retry[T any](ctx context.Context, p RetryPolicy, op func(attempt int) (T, error), notify func(attempt int, err error, wait time.Duration)) (T, error) {
	if p.MaxAttempts <= 1 {
		return op(1)
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, err := op(attempt)
		if err != nil && !ticket.IsRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if notify != nil {
				notify(attempt, err, wait)
			}
		}),
	)
}
