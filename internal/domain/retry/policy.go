// Package retry provides the backoff policies behind version-conflict
// retries and mirror task rescheduling.
package retry

import (
	"context"
	"math/rand"
	"time"

	"jan-server/services/assistant-api/internal/domain/status"
)

// Policy describes an exponential backoff schedule. The delay doubles per
// attempt from InitialDelay up to MaxDelay, then jitter spreads it by up to
// JitterFactor in either direction.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// ConflictPolicy is the schedule for version-conflict retries on
// conditional document replaces. Conflicts resolve quickly, so delays stay
// short.
func ConflictPolicy() Policy {
	return Policy{
		MaxRetries:   4,
		InitialDelay: 25 * time.Millisecond,
		MaxDelay:     500 * time.Millisecond,
		JitterFactor: 0.3,
	}
}

// MirrorPolicy is the schedule used when rescheduling failed mirror tasks.
func MirrorPolicy() Policy {
	return Policy{
		MaxRetries:   8,
		InitialDelay: 5 * time.Second,
		MaxDelay:     5 * time.Minute,
		JitterFactor: 0.2,
	}
}

// CalculateDelay returns the wait before the given attempt. Attempt one
// waits InitialDelay.
func (p Policy) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 || p.InitialDelay <= 0 {
		return 0
	}

	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.JitterFactor > 0 {
		spread := p.JitterFactor * (2*rand.Float64() - 1)
		delay += time.Duration(float64(delay) * spread)
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}

// ClassifyFunc maps an error to a severity so an executor can decide
// whether another attempt is worthwhile.
type ClassifyFunc func(error) status.ErrorSeverity

// RetryableFunc runs one attempt. The attempt counter starts at zero.
type RetryableFunc func(ctx context.Context, attempt int) error

// Executor repeats an operation per its policy until it succeeds, the
// retry budget runs out, or a failure classifies as non-retryable.
type Executor struct {
	policy   Policy
	classify ClassifyFunc
}

// NewExecutor creates an executor. A nil classify treats every failure as
// retryable.
func NewExecutor(policy Policy, classify ClassifyFunc) *Executor {
	return &Executor{policy: policy, classify: classify}
}

// Execute runs fn until it succeeds or the policy gives up, returning the
// last error.
func (e *Executor) Execute(ctx context.Context, fn RetryableFunc) error {
	var lastErr error

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if e.classify != nil && !e.classify(err).IsRetryable() {
			break
		}
		if attempt >= e.policy.MaxRetries {
			break
		}

		delay := e.policy.CalculateDelay(attempt + 1)
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}
