// Package stats maintains per-method reliability and cost profiles for
// the extraction dispatcher.
package stats

import (
	"sync"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
)

// MethodStats is the running profile of one extraction method. The
// derived fields (SuccessRate, AvgCostPerAttempt, AvgDurationPerAttempt)
// are recomputed after every recorded attempt and never set directly.
type MethodStats struct {
	Method             models.Method
	TotalAttempts      int64
	SuccessfulAttempts int64
	TotalCost          float64
	TotalDuration      time.Duration
	LastUsed           time.Time

	SuccessRate           float64
	AvgCostPerAttempt     float64
	AvgDurationPerAttempt time.Duration
}

// Tracker holds one MethodStats per method and serialises updates so
// concurrent attempts against the same method cannot race the counters.
type Tracker struct {
	mu      sync.Mutex
	methods map[models.Method]*MethodStats
}

func NewTracker() *Tracker {
	methods := make(map[models.Method]*MethodStats, len(models.AllMethods))
	for _, m := range models.AllMethods {
		methods[m] = &MethodStats{Method: m}
	}
	return &Tracker{methods: methods}
}

// RecordAttempt registers one attempt of a method. It is called once
// per attempt, not once per logical request: a request that walks the
// fallback chain records each tried method separately.
func (t *Tracker) RecordAttempt(method models.Method, success bool, cost float64, duration time.Duration, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.methods[method]
	s.TotalAttempts++
	if success {
		s.SuccessfulAttempts++
	}
	s.TotalCost += cost
	s.TotalDuration += duration
	s.LastUsed = at

	s.SuccessRate = float64(s.SuccessfulAttempts) / float64(s.TotalAttempts)
	s.AvgCostPerAttempt = s.TotalCost / float64(s.TotalAttempts)
	s.AvgDurationPerAttempt = s.TotalDuration / time.Duration(s.TotalAttempts)
}

// Get returns a copy of one method's stats.
func (t *Tracker) Get(method models.Method) MethodStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return *t.methods[method]
}

// Snapshot returns copies of every method's stats, suitable as input to
// the pure selector function.
func (t *Tracker) Snapshot() map[models.Method]MethodStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[models.Method]MethodStats, len(t.methods))
	for m, s := range t.methods {
		out[m] = *s
	}
	return out
}

// Totals aggregates attempts and successes across all methods.
func (t *Tracker) Totals() (attempts, successes int64, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.methods {
		attempts += s.TotalAttempts
		successes += s.SuccessfulAttempts
		cost += s.TotalCost
	}
	return attempts, successes, cost
}
