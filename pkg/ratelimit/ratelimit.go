// Package ratelimit enforces a minimum interval between invocations of
// each extraction method.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
)

// Limiter gates each method independently: waiting on one method never
// delays another. Each gate serialises concurrent callers of the same
// method, so the interval cannot be bypassed by calling from two
// goroutines at once.
type Limiter struct {
	gates map[models.Method]*gate
}

type gate struct {
	mu       sync.Mutex
	minDelay time.Duration
	lastCall time.Time
}

// NewLimiter builds per-method gates from the configured delays. A
// method that was never called has a zero lastCall, which is far
// enough in the past that the first call proceeds immediately.
func NewLimiter(config *models.Config) *Limiter {
	gates := make(map[models.Method]*gate, len(models.AllMethods))
	for _, m := range models.AllMethods {
		gates[m] = &gate{minDelay: config.DelayFor(m)}
	}
	return &Limiter{gates: gates}
}

// Wait blocks until the method's minimum interval has elapsed since its
// previous invocation, then stamps the invocation time. Returns early
// with the context's error if the context is cancelled while waiting;
// in that case the invocation time is not stamped.
func (l *Limiter) Wait(ctx context.Context, method models.Method) error {
	g := l.gates[method]
	g.mu.Lock()
	defer g.mu.Unlock()

	elapsed := time.Since(g.lastCall)
	if elapsed < g.minDelay {
		timer := time.NewTimer(g.minDelay - elapsed)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	g.lastCall = time.Now()
	return nil
}
