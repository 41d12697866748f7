package report

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/clipmetrics/models"
	"github.com/dtnitsch/clipmetrics/pkg/db"
	"github.com/dtnitsch/clipmetrics/pkg/stats"
)

// MethodReport summarizes one method's share of a run.
type MethodReport struct {
	Method        string  `yaml:"method"`
	Attempts      int64   `yaml:"attempts"`
	Successes     int64   `yaml:"successes"`
	SuccessRate   string  `yaml:"success_rate"`
	TotalCost     string  `yaml:"total_cost"`
	AvgCost       string  `yaml:"avg_cost"`
	AvgDurationMs float64 `yaml:"avg_duration_ms"`
}

// Report is the cost and reliability summary printed after a run or
// assembled later from stored attempts.
type Report struct {
	TotalRequests      int64          `yaml:"total_requests"`
	TotalSuccesses     int64          `yaml:"total_successes"`
	OverallSuccessRate string         `yaml:"overall_success_rate"`
	TotalCost          string         `yaml:"total_cost"`
	Methods            []MethodReport `yaml:"methods"`
	TopKeywords        []string       `yaml:"top_keywords,omitempty"`
	Languages          map[string]int `yaml:"languages,omitempty"`
}

// FromTracker builds a report from in-memory run statistics, ordered
// by attempt count.
func FromTracker(tracker *stats.Tracker) *Report {
	snapshot := tracker.Snapshot()
	attempts, successes, cost := tracker.Totals()

	methods := make([]MethodReport, 0, len(snapshot))
	for _, ms := range snapshot {
		if ms.TotalAttempts == 0 {
			continue
		}
		methods = append(methods, MethodReport{
			Method:        ms.Method.String(),
			Attempts:      ms.TotalAttempts,
			Successes:     ms.SuccessfulAttempts,
			SuccessRate:   percent(ms.SuccessRate),
			TotalCost:     dollars(ms.TotalCost),
			AvgCost:       dollars(ms.AvgCostPerAttempt),
			AvgDurationMs: float64(ms.AvgDurationPerAttempt.Milliseconds()),
		})
	}
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].Attempts != methods[j].Attempts {
			return methods[i].Attempts > methods[j].Attempts
		}
		return methods[i].Method < methods[j].Method
	})

	r := &Report{
		TotalRequests:  attempts,
		TotalSuccesses: successes,
		TotalCost:      dollars(cost),
		Methods:        methods,
	}
	if attempts > 0 {
		r.OverallSuccessRate = percent(float64(successes) / float64(attempts))
	} else {
		r.OverallSuccessRate = percent(0)
	}
	return r
}

// FromDB builds a report from stored attempts. An empty batchID reads
// across all batches.
func FromDB(database *db.DB, batchID string, keywordLimit int) (*Report, error) {
	breakdown, err := database.MethodBreakdown(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to build method breakdown: %w", err)
	}

	r := &Report{Methods: make([]MethodReport, 0, len(breakdown))}
	var totalCost float64
	for _, row := range breakdown {
		r.TotalRequests += row.Attempts
		r.TotalSuccesses += row.Successes
		totalCost += row.TotalCost
		r.Methods = append(r.Methods, MethodReport{
			Method:        row.Method,
			Attempts:      row.Attempts,
			Successes:     row.Successes,
			SuccessRate:   percent(row.SuccessRate),
			TotalCost:     dollars(row.TotalCost),
			AvgCost:       dollars(row.AvgCost),
			AvgDurationMs: row.AvgDurationMs,
		})
	}
	r.TotalCost = dollars(totalCost)
	if r.TotalRequests > 0 {
		r.OverallSuccessRate = percent(float64(r.TotalSuccesses) / float64(r.TotalRequests))
	} else {
		r.OverallSuccessRate = percent(0)
	}

	if keywordLimit > 0 {
		captions, err := database.RecentCaptions(batchID, 500)
		if err != nil {
			return nil, fmt.Errorf("failed to load captions: %w", err)
		}
		r.TopKeywords = TopKeywords(captions, keywordLimit)
	}

	languages, err := database.LanguageBreakdown(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load language breakdown: %w", err)
	}
	if len(languages) > 0 {
		r.Languages = languages
	}

	return r, nil
}

// CheapestViable returns the method a fresh run would try first given
// the dispatcher's configured weights. The collect summary includes it
// as a planning hint.
func CheapestViable(config *models.Config) string {
	best := config.Chain()[0]
	bestWeight := config.CostWeightFor(best)
	for _, m := range config.Chain()[1:] {
		if w := config.CostWeightFor(m); w < bestWeight {
			best, bestWeight = m, w
		}
	}
	return best.String()
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func dollars(amount float64) string {
	return fmt.Sprintf("$%.4f", amount)
}
