// Package budget gates the dispatcher against a daily spend ceiling.
package budget

import (
	"fmt"
	"sync"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/shopspring/decimal"
)

// Tracker accumulates per-attempt costs against a daily budget. Spend
// is held as decimals so thousands of fractional-cent costs sum
// exactly instead of drifting in float arithmetic.
//
// The budget check happens before a logical request starts, never
// retroactively: a request already in flight may push spend past the
// ceiling by the cost of its own attempts, and that overshoot is
// accepted.
type Tracker struct {
	mu sync.Mutex

	maxPerDay  decimal.Decimal
	dailySpend decimal.Decimal
	perMethod  map[models.Method]decimal.Decimal

	// resetBoundary is the start of the calendar day the current
	// counters belong to.
	resetBoundary time.Time

	now func() time.Time
}

// NewTracker creates a Tracker with the given daily ceiling. The reset
// boundary starts at the beginning of the current calendar day.
func NewTracker(maxBudgetPerDay float64) *Tracker {
	return newTracker(maxBudgetPerDay, time.Now)
}

func newTracker(maxBudgetPerDay float64, now func() time.Time) *Tracker {
	t := &Tracker{
		maxPerDay: decimal.NewFromFloat(maxBudgetPerDay),
		perMethod: make(map[models.Method]decimal.Decimal),
		now:       now,
	}
	t.resetBoundary = startOfDay(now())
	return t
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// maybeReset zeroes the counters when the clock has crossed the day
// boundary. The boundary jumps to the start of the current day, not
// boundary+24h, so an idle gap of several days still resets correctly.
// Caller must hold mu.
func (t *Tracker) maybeReset() {
	now := t.now()
	if !now.After(t.resetBoundary.Add(24 * time.Hour)) {
		return
	}
	t.dailySpend = decimal.Zero
	t.perMethod = make(map[models.Method]decimal.Decimal)
	t.resetBoundary = startOfDay(now)
}

// AddCost records spend for one attempt of a method. Negative amounts
// indicate a caller bug and are rejected.
func (t *Tracker) AddCost(method models.Method, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("negative cost %v for method %q", amount, method)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeReset()
	d := decimal.NewFromFloat(amount)
	t.dailySpend = t.dailySpend.Add(d)
	t.perMethod[method] = t.perMethod[method].Add(d)
	return nil
}

// Exceeded reports whether today's spend has reached the ceiling.
func (t *Tracker) Exceeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeReset()
	return t.dailySpend.GreaterThanOrEqual(t.maxPerDay)
}

// DailySpend returns today's total spend.
func (t *Tracker) DailySpend() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeReset()
	f, _ := t.dailySpend.Float64()
	return f
}

// MethodSpend returns today's spend for one method.
func (t *Tracker) MethodSpend(method models.Method) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.maybeReset()
	f, _ := t.perMethod[method].Float64()
	return f
}
