// Package selector ranks extraction methods by cost, reliability, and
// recency of use.
package selector

import (
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

// costEpsilon keeps the cost term finite for a hypothetical zero-cost
// method.
const costEpsilon = 0.0001

// Selector picks the best method for the next attempt. Pick is a pure
// function of (stats snapshot, config, now), so it can be tested with
// synthetic stats and carries no state of its own.
type Selector struct {
	config *models.Config
	chain  []models.Method
}

func New(config *models.Config) *Selector {
	return &Selector{config: config, chain: config.Chain()}
}

// viable reports whether a method may receive traffic: its success
// rate meets the threshold, or it has never been tried. Unused methods
// are always eligible; a method must not be excluded for "low
// reliability" before it has a track record.
func (s *Selector) viable(ms stats.MethodStats) bool {
	return ms.TotalAttempts == 0 || ms.SuccessRate >= s.config.SuccessRateThreshold
}

// Pick returns the highest-scoring viable method. When nothing is
// viable it falls back to the first entry of the configured chain, so
// there is always a method to try. Ties break by chain order.
func (s *Selector) Pick(snapshot map[models.Method]stats.MethodStats, now time.Time) models.Method {
	best := s.chain[0]
	bestScore := -1.0

	// Iterate in chain order so equal scores resolve deterministically.
	for _, m := range s.chain {
		ms, ok := snapshot[m]
		if !ok {
			ms = stats.MethodStats{Method: m}
		} else if !s.viable(ms) {
			continue
		}

		score := s.score(ms, now)
		if score > bestScore {
			best = m
			bestScore = score
		}
	}

	return best
}

// score combines three signals: cheap methods score high, reliable
// methods score high, and a small recency term nudges the ranking
// toward the method that served traffic most recently, keeping
// routing sticky between methods of similar cost and reliability.
func (s *Selector) score(ms stats.MethodStats, now time.Time) float64 {
	costScore := 1.0 / (s.config.CostWeightFor(ms.Method) + costEpsilon)

	// Untested methods get the neutral success score. The default of
	// 1.0 is deliberately optimistic: it routes traffic to untested
	// methods ahead of proven-but-imperfect ones, which is what seeds
	// their statistics in the first place.
	successScore := s.config.NeutralSuccessScore
	if ms.TotalAttempts > 0 {
		successScore = ms.SuccessRate
	}

	// Seconds since last use, +1 to avoid dividing by zero. The term
	// peaks for a method used moments ago and decays toward zero; a
	// never-used method has a zero LastUsed and therefore a huge
	// elapsed time, so its recency term is negligible.
	elapsed := now.Sub(ms.LastUsed).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	recencyScore := 1.0 / (elapsed + 1)

	w := s.config.ScoreWeights
	return w.Cost*costScore + w.Success*successScore + w.Recency*recencyScore
}
