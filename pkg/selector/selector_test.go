package selector

import (
	"testing"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
	"github.com/stretchr/testify/require"
)

// primed builds synthetic stats for a method that has been through a
// number of attempts.
func primed(m models.Method, attempts, successes int64, lastUsed time.Time) stats.MethodStats {
	return stats.MethodStats{
		Method:             m,
		TotalAttempts:      attempts,
		SuccessfulAttempts: successes,
		SuccessRate:        float64(successes) / float64(attempts),
		LastUsed:           lastUsed,
	}
}

func TestUnusedMethodsAlwaysViable(t *testing.T) {
	config := models.DefaultConfig()
	config.SuccessRateThreshold = 0.99
	sel := New(config)

	// Every method has zero attempts; even a threshold of 0.99 must
	// not exclude any of them.
	for _, m := range models.AllMethods {
		require.True(t, sel.viable(stats.MethodStats{Method: m}), "method %s", m)
	}
}

func TestCheapMethodWinsAfterPriming(t *testing.T) {
	config := models.DefaultConfig()
	config.SuccessRateThreshold = 0.8
	config.CostWeights = map[string]float64{
		"embed": 0.0001, "web": 1.0, "mobile": 1.0, "api": 0.01,
	}
	sel := New(config)
	now := time.Now()

	// embed: cheap, 95% success. api: expensive, 99% success. Both
	// well primed, both over threshold. At this cost ratio the
	// 0.4/0.4/0.2 weighting is dominated by the cost term.
	snapshot := map[models.Method]stats.MethodStats{
		models.MethodEmbed: primed(models.MethodEmbed, 100, 95, now.Add(-time.Minute)),
		models.MethodAPI:   primed(models.MethodAPI, 100, 99, now.Add(-time.Minute)),
		// Keep the remaining methods ineligible so the comparison is
		// strictly cheap-vs-expensive.
		models.MethodWeb:    primed(models.MethodWeb, 100, 10, now.Add(-time.Minute)),
		models.MethodMobile: primed(models.MethodMobile, 100, 10, now.Add(-time.Minute)),
	}

	require.Equal(t, models.MethodEmbed, sel.Pick(snapshot, now))
}

func TestUnreliableMethodExcluded(t *testing.T) {
	config := models.DefaultConfig()
	config.SuccessRateThreshold = 0.8
	// Make the unreliable method by far the cheapest so that, were it
	// viable, it would win on cost.
	config.CostWeights = map[string]float64{
		"embed": 0.00001, "web": 0.5, "mobile": 1.0, "api": 1.0,
	}
	sel := New(config)
	now := time.Now()

	snapshot := map[models.Method]stats.MethodStats{
		models.MethodEmbed:  primed(models.MethodEmbed, 100, 50, now.Add(-time.Minute)),
		models.MethodWeb:    primed(models.MethodWeb, 100, 90, now.Add(-time.Minute)),
		models.MethodMobile: primed(models.MethodMobile, 100, 90, now.Add(-time.Minute)),
		models.MethodAPI:    primed(models.MethodAPI, 100, 90, now.Add(-time.Minute)),
	}

	// 50% success against a 0.8 threshold: never selected while other
	// viable methods exist, regardless of cost.
	for i := 0; i < 10; i++ {
		require.NotEqual(t, models.MethodEmbed, sel.Pick(snapshot, now))
	}
}

func TestNoViableMethodFallsBackToChainHead(t *testing.T) {
	config := models.DefaultConfig()
	config.SuccessRateThreshold = 0.8
	config.FallbackChain = []string{"mobile", "embed", "web", "api"}
	sel := New(config)
	now := time.Now()

	snapshot := make(map[models.Method]stats.MethodStats)
	for _, m := range models.AllMethods {
		snapshot[m] = primed(m, 100, 10, now.Add(-time.Minute))
	}

	require.Equal(t, models.MethodMobile, sel.Pick(snapshot, now))
}

func TestTieBreaksByChainOrder(t *testing.T) {
	config := models.DefaultConfig()
	config.CostWeights = map[string]float64{
		"embed": 0.001, "web": 0.001, "mobile": 0.001, "api": 0.001,
	}
	config.FallbackChain = []string{"web", "mobile", "embed", "api"}
	sel := New(config)

	// All methods untested: identical scores, first chain entry wins.
	require.Equal(t, models.MethodWeb, sel.Pick(map[models.Method]stats.MethodStats{}, time.Now()))
}

func TestRecencyKeepsRoutingSticky(t *testing.T) {
	config := models.DefaultConfig()
	config.CostWeights = map[string]float64{
		"embed": 0.001, "web": 0.001, "mobile": 0.001, "api": 0.001,
	}
	sel := New(config)
	now := time.Now()

	// Identical cost and reliability; web served traffic a moment ago,
	// mobile an hour ago. The recency term keeps routing on web.
	snapshot := map[models.Method]stats.MethodStats{
		models.MethodWeb:    primed(models.MethodWeb, 100, 95, now),
		models.MethodMobile: primed(models.MethodMobile, 100, 95, now.Add(-time.Hour)),
		models.MethodEmbed:  primed(models.MethodEmbed, 100, 10, now),
		models.MethodAPI:    primed(models.MethodAPI, 100, 10, now),
	}

	require.Equal(t, models.MethodWeb, sel.Pick(snapshot, now))
}
