package budget

import (
	"testing"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move wall time across day boundaries.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(max float64) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 10, 6, 14, 30, 0, 0, time.UTC)}
	return newTracker(max, clock.now), clock
}

func TestAddCostAccumulates(t *testing.T) {
	tracker, _ := newTestTracker(10.0)

	for i := 0; i < 1000; i++ {
		require.NoError(t, tracker.AddCost(models.MethodEmbed, 0.0001))
	}
	require.NoError(t, tracker.AddCost(models.MethodAPI, 0.0025))

	// Decimal accumulation: exactly 0.1025, no float drift.
	require.Equal(t, 0.1025, tracker.DailySpend())
	require.Equal(t, 0.1, tracker.MethodSpend(models.MethodEmbed))
	require.Equal(t, 0.0025, tracker.MethodSpend(models.MethodAPI))
}

func TestDailySpendIsSumOfMethods(t *testing.T) {
	tracker, _ := newTestTracker(10.0)

	require.NoError(t, tracker.AddCost(models.MethodEmbed, 0.0001))
	require.NoError(t, tracker.AddCost(models.MethodWeb, 0.00015))
	require.NoError(t, tracker.AddCost(models.MethodMobile, 0.0002))

	sum := tracker.MethodSpend(models.MethodEmbed) +
		tracker.MethodSpend(models.MethodWeb) +
		tracker.MethodSpend(models.MethodMobile)
	require.InDelta(t, tracker.DailySpend(), sum, 1e-12)
}

func TestNegativeCostRejected(t *testing.T) {
	tracker, _ := newTestTracker(10.0)
	require.Error(t, tracker.AddCost(models.MethodWeb, -0.01))
	require.Equal(t, 0.0, tracker.DailySpend())
}

func TestExceeded(t *testing.T) {
	tracker, _ := newTestTracker(0.005)

	require.False(t, tracker.Exceeded())
	require.NoError(t, tracker.AddCost(models.MethodAPI, 0.0025))
	require.False(t, tracker.Exceeded())
	require.NoError(t, tracker.AddCost(models.MethodAPI, 0.0025))
	require.True(t, tracker.Exceeded())
}

func TestDayBoundaryReset(t *testing.T) {
	tracker, clock := newTestTracker(0.001)

	require.NoError(t, tracker.AddCost(models.MethodEmbed, 0.001))
	require.True(t, tracker.Exceeded())

	// Still the same day: no reset.
	clock.advance(2 * time.Hour)
	require.True(t, tracker.Exceeded())

	// Crossing midnight resets both the total and per-method spend.
	clock.advance(10 * time.Hour)
	require.False(t, tracker.Exceeded())
	require.Equal(t, 0.0, tracker.DailySpend())
	require.Equal(t, 0.0, tracker.MethodSpend(models.MethodEmbed))
}

func TestMultiDayIdleReset(t *testing.T) {
	tracker, clock := newTestTracker(0.001)

	require.NoError(t, tracker.AddCost(models.MethodWeb, 0.001))
	require.True(t, tracker.Exceeded())

	// Idle across several days: a single check must reset and the
	// boundary must land on the current day, not lag behind.
	clock.advance(5*24*time.Hour + 3*time.Hour)
	require.False(t, tracker.Exceeded())

	require.NoError(t, tracker.AddCost(models.MethodWeb, 0.0005))
	require.Equal(t, 0.0005, tracker.DailySpend())

	// The very next midnight resets again, proving the boundary
	// advanced all the way instead of one day at a time.
	clock.advance(24 * time.Hour)
	require.Equal(t, 0.0, tracker.DailySpend())
}
