// Package retry runs an operation under a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediguard/internal/logging"
)

// ErrExhausted is returned, joined with the last failure, when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	// MaxAttempts counts the first try. Values below 1 mean a single attempt.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Classify reports whether a failure may be retried. Nil retries everything.
	Classify func(error) bool
}

// DefaultPolicy retries up to twice and never retries client errors.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Classify:     NotClientError,
	}
}

// NotClientError reports false for errors carrying a 4xx status and for
// context cancellation.
func NotClientError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code < 400 || code > 499
	}
	return true
}

// Retryable applies the policy's classifier to err.
func (p Policy) Retryable(err error) bool {
	if p.Classify == nil {
		return true
	}
	return p.Classify(err)
}

// Do calls fn until it succeeds, fails with a non-retryable error, the
// attempts run out or ctx is done. A non-retryable error is returned as is.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := p.InitialDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		logging.FromContext(ctx).Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("operation failed, retrying")

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	if attempts == 1 {
		return err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, err)
}
