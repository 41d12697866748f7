// Package dispatch drives extraction requests through method
// selection, rate limiting, cost accounting, and fallback.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/budget"
	"github.com/dtnitsch/clipmetrics/pkg/extract"
	"github.com/dtnitsch/clipmetrics/pkg/ratelimit"
	"github.com/dtnitsch/clipmetrics/pkg/selector"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

// Executor performs one logical extraction per call, walking the
// fallback chain when the selected method fails. Every attempted
// method incurs its cost and is recorded in the stats tracker, success
// or not: cost models request expenditure, not pay-on-success billing.
type Executor struct {
	config     *models.Config
	selector   *selector.Selector
	limiter    *ratelimit.Limiter
	budget     *budget.Tracker
	stats      *stats.Tracker
	extractors map[models.Method]extract.Extractor
	recorder   AttemptRecorder
	logger     *slog.Logger
}

// AttemptRecorder receives every method invocation, including
// failures, for offline analysis. Recording errors are logged and
// never affect dispatch.
type AttemptRecorder interface {
	RecordAttempt(result models.Result) error
}

func NewExecutor(
	config *models.Config,
	sel *selector.Selector,
	limiter *ratelimit.Limiter,
	budgetTracker *budget.Tracker,
	statsTracker *stats.Tracker,
	extractors map[models.Method]extract.Extractor,
	recorder AttemptRecorder,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		config:     config,
		selector:   sel,
		limiter:    limiter,
		budget:     budgetTracker,
		stats:      statsTracker,
		extractors: extractors,
		recorder:   recorder,
		logger:     logger,
	}
}

// Execute runs one logical extraction for target. Extraction errors
// are folded into the returned Result, never propagated; the only
// early exit is the budget pre-check, which fails the request without
// attempting any method or consuming a rate-limit slot.
func (e *Executor) Execute(ctx context.Context, target string) models.Result {
	if e.budget.Exceeded() {
		chainHead := e.config.Chain()[0]
		return models.Result{
			Target:      target,
			Method:      chainHead,
			MethodName:  chainHead.String(),
			Success:     false,
			Error:       "daily budget exceeded",
			CompletedAt: time.Now(),
		}
	}

	primary := e.selector.Pick(e.stats.Snapshot(), time.Now())
	e.logger.Info("selected extraction method", "method", primary.String(), "target", target)

	result := e.attempt(ctx, primary, target)
	if result.Success {
		return result
	}

	// Walk the fallback chain, skipping the method already tried.
	// maxRetries bounds the total attempts per logical request on top
	// of the chain length; the same method is never tried twice.
	attempts := 1
	for _, fallback := range e.config.Chain() {
		if fallback == primary {
			continue
		}
		if attempts >= e.config.MaxRetries {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if delay := e.config.RetryDelay(); delay > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				break
			}
		}

		e.logger.Info("trying fallback method", "method", fallback.String(), "target", target)
		result = e.attempt(ctx, fallback, target)
		attempts++
		if result.Success {
			break
		}
	}

	return result
}

// attempt invokes one method once: rate-limit gate, bounded call,
// timing, then stats and cost accounting.
func (e *Executor) attempt(ctx context.Context, method models.Method, target string) models.Result {
	result := models.Result{
		Target:     target,
		Method:     method,
		MethodName: method.String(),
	}

	if err := e.limiter.Wait(ctx, method); err != nil {
		// Cancelled while queued: the method was never invoked, so
		// nothing is recorded against it.
		result.Error = err.Error()
		result.CompletedAt = time.Now()
		return result
	}

	cost := e.config.CostWeightFor(method)
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, e.config.TimeoutFor(method))
	metrics, err := e.extractors[method].Extract(attemptCtx, target)
	cancel()

	duration := time.Since(start)
	completed := time.Now()

	e.stats.RecordAttempt(method, err == nil, cost, duration, completed)
	if addErr := e.budget.AddCost(method, cost); addErr != nil {
		e.logger.Error("failed to record cost", "method", method.String(), "error", addErr)
	}

	result.Cost = cost
	result.Duration = duration
	result.CompletedAt = completed
	result.Success = err == nil
	if err == nil {
		result.Metrics = metrics
	} else {
		result.Error = err.Error()
	}

	if e.recorder != nil {
		if recErr := e.recorder.RecordAttempt(result); recErr != nil {
			e.logger.Error("failed to record attempt", "method", method.String(), "error", recErr)
		}
	}

	if err != nil {
		e.logger.Error("extraction method failed", "method", method.String(), "target", target, "error", err)
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
