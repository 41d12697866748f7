package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/stretchr/testify/require"
)

func testConfig(delays map[string]float64) *models.Config {
	config := models.DefaultConfig()
	config.RateLimitDelays = delays
	return config
}

func TestFirstCallProceedsImmediately(t *testing.T) {
	limiter := NewLimiter(testConfig(map[string]float64{
		"embed": 5.0, "web": 5.0, "mobile": 5.0, "api": 5.0,
	}))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), models.MethodWeb))
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSecondCallBlocksForMinDelay(t *testing.T) {
	limiter := NewLimiter(testConfig(map[string]float64{
		"embed": 0.1, "web": 0.1, "mobile": 0.1, "api": 0.1,
	}))
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, models.MethodEmbed))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, models.MethodEmbed))
	require.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestMethodsAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig(map[string]float64{
		"embed": 5.0, "web": 5.0, "mobile": 5.0, "api": 5.0,
	}))
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, models.MethodEmbed))

	// A different method is not delayed by embed's gate.
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, models.MethodWeb))
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitHonoursCancellation(t *testing.T) {
	limiter := NewLimiter(testConfig(map[string]float64{
		"embed": 10.0, "web": 10.0, "mobile": 10.0, "api": 10.0,
	}))

	require.NoError(t, limiter.Wait(context.Background(), models.MethodAPI))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Wait(ctx, models.MethodAPI)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestConcurrentCallersSerialised(t *testing.T) {
	limiter := NewLimiter(testConfig(map[string]float64{
		"embed": 0.05, "web": 0.05, "mobile": 0.05, "api": 0.05,
	}))
	ctx := context.Background()

	const callers = 4
	done := make(chan time.Time, callers)
	for i := 0; i < callers; i++ {
		go func() {
			require.NoError(t, limiter.Wait(ctx, models.MethodMobile))
			done <- time.Now()
		}()
	}

	times := make([]time.Time, 0, callers)
	for i := 0; i < callers; i++ {
		times = append(times, <-done)
	}

	// 4 serialised callers at 50ms spacing need at least 150ms between
	// the earliest and latest stamp.
	earliest, latest := times[0], times[0]
	for _, ts := range times[1:] {
		if ts.Before(earliest) {
			earliest = ts
		}
		if ts.After(latest) {
			latest = ts
		}
	}
	require.GreaterOrEqual(t, latest.Sub(earliest), 130*time.Millisecond)
}
