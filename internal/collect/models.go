package collect

import "github.com/dtnitsch/clipmetrics/pkg/report"

// TargetSummary is one line of the per-target output.
type TargetSummary struct {
	Target     string `yaml:"target"`
	Method     string `yaml:"method,omitempty"`
	Success    bool   `yaml:"success"`
	Views      int64  `yaml:"views,omitempty"`
	Likes      int64  `yaml:"likes,omitempty"`
	Engagement string `yaml:"engagement,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

// FinalOutput is the structured output for the entire run, marshalled
// to stdout as YAML.
type FinalOutput struct {
	BatchID          string          `yaml:"batch_id"`
	TargetCount      int             `yaml:"target_count"`
	ProcessedCount   int             `yaml:"processed_count"`
	SkippedCount     int             `yaml:"skipped_count"`
	TotalTimeSeconds float64         `yaml:"total_time_seconds"`
	BudgetSpent      string          `yaml:"budget_spent"`
	CheapestMethod   string          `yaml:"cheapest_method"`
	Report           *report.Report  `yaml:"report"`
	Targets          []TargetSummary `yaml:"targets"`
}
