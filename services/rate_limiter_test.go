package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterUnderLimitDoesNotBlock(t *testing.T) {
	limiter := NewRateLimiter(3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, limiter.lastRequests, 3)
}

func TestRateLimiterPrunesExpiredRequests(t *testing.T) {
	limiter := NewRateLimiter(1)
	limiter.lastRequests = []time.Time{time.Now().Add(-2 * time.Minute)}

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiterCancelledWaiterReturnsWhileAnotherSleeps(t *testing.T) {
	limiter := NewRateLimiter(1)
	require.NoError(t, limiter.Wait(context.Background()))

	// First waiter sleeps until the window frees up again
	go limiter.Wait(context.Background())
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A second waiter with a dead context must not queue behind the
	// sleeping one for the rest of the window
	start := time.Now()
	err := limiter.Wait(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
