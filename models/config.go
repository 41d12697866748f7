// Package models defines the data model and configuration surface for
// the extraction dispatcher.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScoreWeights are the selector's scoring coefficients. The 0.4/0.4/0.2
// defaults come from the routing policy this dispatcher was tuned
// against; they are configuration, not constants, because nobody has
// shown them to be optimal.
type ScoreWeights struct {
	Cost    float64 `yaml:"cost"`
	Success float64 `yaml:"success"`
	Recency float64 `yaml:"recency"`
}

// Config is loaded once at startup and read-only afterward. Durations
// are expressed in seconds in the YAML file.
type Config struct {
	MaxBudgetPerDay      float64 `yaml:"max_budget_per_day"`
	MaxRequestsPerDay    int     `yaml:"max_requests_per_day"`
	SuccessRateThreshold float64 `yaml:"success_rate_threshold"`
	MaxRetries           int     `yaml:"max_retries"`
	RetryDelaySeconds    float64 `yaml:"retry_delay"`

	CostWeights     map[string]float64 `yaml:"cost_weights"`
	RateLimitDelays map[string]float64 `yaml:"rate_limit_delays"`
	MethodTimeouts  map[string]float64 `yaml:"method_timeouts"`

	FallbackChain       []string     `yaml:"fallback_chain"`
	ScoreWeights        ScoreWeights `yaml:"score_weights"`
	NeutralSuccessScore float64      `yaml:"neutral_success_score"`

	ProgressEvery int    `yaml:"progress_every"`
	DatabasePath  string `yaml:"database_path"`
	APIEndpoint   string `yaml:"api_endpoint"`

	// APIToken is never read from the YAML file; it comes from the
	// CLIPMETRICS_API_TOKEN environment variable.
	APIToken string `yaml:"-"`
}

// DefaultConfig returns the documented defaults for every option.
func DefaultConfig() *Config {
	return &Config{
		MaxBudgetPerDay:      10.0,
		MaxRequestsPerDay:    10000,
		SuccessRateThreshold: 0.8,
		MaxRetries:           3,
		RetryDelaySeconds:    2.0,
		CostWeights: map[string]float64{
			"embed":  0.0001,
			"web":    0.00015,
			"mobile": 0.0002,
			"api":    0.0025,
		},
		RateLimitDelays: map[string]float64{
			"embed":  1.0,
			"web":    2.0,
			"mobile": 2.5,
			"api":    1.0,
		},
		MethodTimeouts: map[string]float64{
			"embed":  10.0,
			"web":    30.0,
			"mobile": 30.0,
			"api":    45.0,
		},
		FallbackChain:       methodNames(DefaultFallbackChain),
		ScoreWeights:        ScoreWeights{Cost: 0.4, Success: 0.4, Recency: 0.2},
		NeutralSuccessScore: 1.0,
		ProgressEvery:       10,
		DatabasePath:        "",
		APIEndpoint:         "https://api.scrapeworks.dev/v1/extract",
	}
}

func methodNames(methods []Method) []string {
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return names
}

// LoadConfig reads a YAML config file on top of the defaults. A missing
// file is not an error; missing keys fall back to defaults. The result
// is validated before the dispatcher is allowed to run.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if len(data) > 0 {
			// Unmarshalling onto the populated struct merges map keys
			// and leaves absent scalars at their defaults.
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	config.APIToken = os.Getenv("CLIPMETRICS_API_TOKEN")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate refuses to run with an unknown method name or a method
// missing its cost weight, rate delay, or timeout. Silently defaulting
// those to zero would disable cost accounting and rate limiting.
func (c *Config) Validate() error {
	if c.MaxBudgetPerDay <= 0 {
		return fmt.Errorf("max_budget_per_day must be positive, got %v", c.MaxBudgetPerDay)
	}
	if c.MaxRequestsPerDay <= 0 {
		return fmt.Errorf("max_requests_per_day must be positive, got %d", c.MaxRequestsPerDay)
	}
	if c.SuccessRateThreshold < 0 || c.SuccessRateThreshold > 1 {
		return fmt.Errorf("success_rate_threshold must be in [0,1], got %v", c.SuccessRateThreshold)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.ScoreWeights.Cost < 0 || c.ScoreWeights.Success < 0 || c.ScoreWeights.Recency < 0 {
		return fmt.Errorf("score weights must be non-negative")
	}

	if len(c.FallbackChain) == 0 {
		return fmt.Errorf("fallback_chain must not be empty")
	}
	seen := make(map[Method]bool)
	for _, name := range c.FallbackChain {
		m, err := ParseMethod(name)
		if err != nil {
			return fmt.Errorf("fallback_chain: %w", err)
		}
		if seen[m] {
			return fmt.Errorf("fallback_chain: duplicate method %q", name)
		}
		seen[m] = true
	}

	for name := range c.CostWeights {
		if _, err := ParseMethod(name); err != nil {
			return fmt.Errorf("cost_weights: %w", err)
		}
	}
	for name := range c.RateLimitDelays {
		if _, err := ParseMethod(name); err != nil {
			return fmt.Errorf("rate_limit_delays: %w", err)
		}
	}
	for name := range c.MethodTimeouts {
		if _, err := ParseMethod(name); err != nil {
			return fmt.Errorf("method_timeouts: %w", err)
		}
	}

	for _, m := range AllMethods {
		if _, ok := c.CostWeights[m.String()]; !ok {
			return fmt.Errorf("missing cost weight for method %q", m)
		}
		if c.CostWeights[m.String()] < 0 {
			return fmt.Errorf("cost weight for method %q must be non-negative", m)
		}
		if _, ok := c.RateLimitDelays[m.String()]; !ok {
			return fmt.Errorf("missing rate limit delay for method %q", m)
		}
		if _, ok := c.MethodTimeouts[m.String()]; !ok {
			return fmt.Errorf("missing timeout for method %q", m)
		}
	}

	return nil
}

// Chain returns the configured fallback chain as typed methods. Call
// only after Validate.
func (c *Config) Chain() []Method {
	chain := make([]Method, 0, len(c.FallbackChain))
	for _, name := range c.FallbackChain {
		m, err := ParseMethod(name)
		if err != nil {
			continue
		}
		chain = append(chain, m)
	}
	return chain
}

// CostWeightFor returns the per-attempt cost of a method.
func (c *Config) CostWeightFor(m Method) float64 {
	return c.CostWeights[m.String()]
}

// DelayFor returns the minimum interval between invocations of a method.
func (c *Config) DelayFor(m Method) time.Duration {
	return secondsToDuration(c.RateLimitDelays[m.String()])
}

// TimeoutFor returns the per-call timeout of a method.
func (c *Config) TimeoutFor(m Method) time.Duration {
	return secondsToDuration(c.MethodTimeouts[m.String()])
}

// RetryDelay returns the base backoff before a fallback attempt.
func (c *Config) RetryDelay() time.Duration {
	return secondsToDuration(c.RetryDelaySeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
