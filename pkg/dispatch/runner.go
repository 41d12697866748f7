package dispatch

import (
	"context"
	"log/slog"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/budget"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

// Saver is the persistence collaborator. Save is invoked once per
// successful result; its failures are logged but never roll back the
// dispatcher's accounting.
type Saver interface {
	Save(result models.Result) error
}

// ProgressFunc receives periodic progress signals. It must be cheap
// and must never influence control flow.
type ProgressFunc func(processed, total int)

// Runner drives a batch of extraction requests under the global budget
// and request-count constraints.
type Runner struct {
	config   *models.Config
	executor *Executor
	budget   *budget.Tracker
	stats    *stats.Tracker
	saver    Saver
	progress ProgressFunc
	logger   *slog.Logger
}

func NewRunner(
	config *models.Config,
	executor *Executor,
	budgetTracker *budget.Tracker,
	statsTracker *stats.Tracker,
	saver Saver,
	progress ProgressFunc,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		config:   config,
		executor: executor,
		budget:   budgetTracker,
		stats:    statsTracker,
		saver:    saver,
		progress: progress,
		logger:   logger,
	}
}

// RunBatch processes targets strictly in order, one at a time. Budget
// or quota exhaustion stops the batch early; the partial result list
// is a normal outcome, and the caller detects skipped targets by
// comparing input and output lengths. Every processed target yields
// exactly one Result, success or not.
func (r *Runner) RunBatch(ctx context.Context, targets []string) []models.Result {
	r.logger.Info("starting batch", "target_count", len(targets))

	results := make([]models.Result, 0, len(targets))
	for i, target := range targets {
		if ctx.Err() != nil {
			r.logger.Warn("batch cancelled", "processed", len(results))
			break
		}
		if r.budget.Exceeded() {
			r.logger.Warn("daily budget exceeded, stopping batch", "processed", len(results))
			break
		}
		if len(results) >= r.config.MaxRequestsPerDay {
			r.logger.Warn("daily request limit reached, stopping batch", "processed", len(results))
			break
		}

		result := r.executor.Execute(ctx, target)
		results = append(results, result)

		if result.Success && r.saver != nil {
			if err := r.saver.Save(result); err != nil {
				r.logger.Error("failed to persist result", "target", target, "error", err)
			}
		}

		if r.progress != nil && r.config.ProgressEvery > 0 && (i+1)%r.config.ProgressEvery == 0 {
			r.progress(i+1, len(targets))
		}
	}

	r.logger.Info("batch finished", "results", len(results), "targets", len(targets))
	return results
}
