package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBurstConsumedImmediately(t *testing.T) {
	b := NewTokenBucket(1.0, 10)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond,
		"draining the initial burst should not block")
}

func TestThroughputBound(t *testing.T) {
	// With rate=50/s and burst=2, 4 acquisitions must take at least
	// (4-2)/50 = 40ms in total.
	b := NewTokenBucket(50.0, 2)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRefillCappedAtBurst(t *testing.T) {
	b := NewTokenBucket(1000.0, 3)
	ctx := context.Background()

	// Drain the bucket, then let far more than burst worth of tokens
	// accrue. Only burst tokens may be consumed without waiting.
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
	time.Sleep(20 * time.Millisecond) // would refill 20 tokens uncapped

	b.mu.Lock()
	tokens := b.tokens
	b.mu.Unlock()
	assert.LessOrEqual(t, tokens, float64(3))

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, b.Acquire(ctx))
	}
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestAcquireNMoreThanAvailableWaits(t *testing.T) {
	b := NewTokenBucket(100.0, 5)
	ctx := context.Background()

	require.NoError(t, b.AcquireN(ctx, 5))

	// 5 more tokens at 100/s needs ~50ms.
	start := time.Now()
	require.NoError(t, b.AcquireN(ctx, 5))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestAcquireCanceled(t *testing.T) {
	b := NewTokenBucket(0.1, 1) // refill takes 10s once drained
	ctx := context.Background()

	require.NoError(t, b.Acquire(ctx))

	cancelCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()

	err := b.Acquire(cancelCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentAcquires(t *testing.T) {
	b := NewTokenBucket(1000.0, 20)
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() { done <- b.Acquire(ctx) }()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.GreaterOrEqual(t, b.tokens, 0.0)
	assert.LessOrEqual(t, b.tokens, float64(b.burst))
}
