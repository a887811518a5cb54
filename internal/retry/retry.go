// Package retry provides a generic exponential-backoff retry wrapper for
// fallible operations such as Reddit search and LLM calls.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config holds retry behavior for one class of operation.
type Config struct {
	MaxRetries      int           // retries after the initial attempt (default: 3)
	BaseDelay       time.Duration // first backoff delay (default: 1s)
	MaxDelay        time.Duration // backoff ceiling (default: 30s)
	ExponentialBase float64       // backoff growth factor (default: 2.0)
	Jitter          bool          // scale each delay by a uniform factor in [0.5, 1.0]

	// Retryable decides whether an error is transient. Defaults to
	// IsTransient. Errors it rejects propagate immediately without
	// consuming retries.
	Retryable func(error) bool
}

// DefaultConfig returns the retry configuration used for API calls.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       1 * time.Second,
		MaxDelay:        30 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Do runs fn with retries per cfg. The operation is attempted at most
// MaxRetries+1 times; when all attempts fail the last error is returned
// unchanged so callers can still match it with errors.Is/As.
func Do[T any](ctx context.Context, cfg Config, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	retryable := cfg.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				fmt.Printf("%s succeeded after %d retries\n", operation, attempt)
			}
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		delay := cfg.backoff(attempt)
		fmt.Printf("%s attempt %d/%d failed: %v. Retrying in %v...\n",
			operation, attempt+1, cfg.MaxRetries+1, err, delay.Round(10*time.Millisecond))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// backoff computes the delay before the attempt following attempt
// (0-based): min(base * exponentialBase^attempt, maxDelay), jittered.
func (cfg Config) backoff(attempt int) time.Duration {
	base := cfg.ExponentialBase
	if base <= 0 {
		base = 2.0
	}
	d := float64(cfg.BaseDelay) * math.Pow(base, float64(attempt))
	if max := float64(cfg.MaxDelay); cfg.MaxDelay > 0 && d > max {
		d = max
	}
	if cfg.Jitter {
		d *= 0.5 + rand.Float64()*0.5
	}
	return time.Duration(d)
}
