// Package ratelimit implements token-bucket admission control for outbound
// API calls.
package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// TokenBucket is a token-bucket rate limiter with continuous refill.
// Tokens accumulate at a fixed rate up to the burst capacity; refill is
// computed lazily from elapsed wall-clock time at acquire time, never via a
// background tick.
//
// Acquisitions serialize on the bucket state, but callers are free to run
// the operation they acquired for concurrently.
type TokenBucket struct {
	mu         sync.Mutex
	rate       float64 // tokens per second
	burst      int     // maximum bucket size
	tokens     float64 // invariant: 0 <= tokens <= burst
	lastRefill time.Time
}

// NewTokenBucket creates a bucket allowing ratePerSecond sustained requests
// with bursts of up to burst requests. The bucket starts full.
func NewTokenBucket(ratePerSecond float64, burst int) *TokenBucket {
	return &TokenBucket{
		rate:       ratePerSecond,
		burst:      burst,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Acquire takes a single token, waiting if necessary.
func (b *TokenBucket) Acquire(ctx context.Context) error {
	return b.AcquireN(ctx, 1)
}

// AcquireN takes n tokens, waiting if necessary. If the bucket cannot cover
// the request immediately, the caller sleeps for exactly
// (n - available) / rate, after which the bucket is left empty.
func (b *TokenBucket) AcquireN(ctx context.Context, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(float64(b.burst), b.tokens+elapsed*b.rate)
	b.lastRefill = now

	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return nil
	}

	wait := time.Duration((float64(n) - b.tokens) / b.rate * float64(time.Second))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.tokens = 0
	b.lastRefill = time.Now()
	return nil
}
