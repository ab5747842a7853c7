// Package retry wraps a single operation in an opt-in exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// Policy describes how often and how patiently an operation is retried.
// The zero value performs exactly one attempt.
type Policy struct {
	Attempts int           // Total attempts including the first one.
	MinDelay time.Duration // Delay before the first retry.
	MaxDelay time.Duration // Upper bound for any delay.

	// Retryable reports whether err is worth another attempt; nil retries everything.
	Retryable func(err error) bool
	// OnRetry is an optional hook invoked before sleeping.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// backoffFactor doubles the delay between consecutive attempts.
const backoffFactor = 2

// Do runs op until it succeeds, returns a non-retryable error, or the policy's
// attempts are exhausted. The last error is returned unchanged.
func Do[T any](ctx context.Context, policy Policy, op func(context.Context) (T, error)) (T, error) {
	attempts := max(policy.Attempts, 1)
	b := &backoff.Backoff{
		Min:    policy.MinDelay,
		Max:    policy.MaxDelay,
		Factor: backoffFactor,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil || attempt >= attempts || !policy.retryable(err) {
			return val, err
		}

		wait := b.Duration()
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}
