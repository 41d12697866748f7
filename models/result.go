package models

import "time"

// PostMetrics holds the engagement counters extracted for one post.
// Not every method can fill every field; the oEmbed endpoint for
// example only exposes caption and author.
type PostMetrics struct {
	Views          int64   `json:"views" yaml:"views"`
	Likes          int64   `json:"likes" yaml:"likes"`
	Comments       int64   `json:"comments" yaml:"comments"`
	Shares         int64   `json:"shares" yaml:"shares"`
	Bookmarks      int64   `json:"bookmarks" yaml:"bookmarks"`
	EngagementRate float64 `json:"engagement_rate" yaml:"engagement_rate"`
	Caption        string  `json:"caption,omitempty" yaml:"caption,omitempty"`
	Author         string  `json:"author,omitempty" yaml:"author,omitempty"`
}

// ComputeEngagementRate derives the engagement percentage from the raw
// counters. Zero views leaves the rate at zero.
func (p *PostMetrics) ComputeEngagementRate() {
	if p.Views <= 0 {
		p.EngagementRate = 0
		return
	}
	interactions := p.Likes + p.Comments + p.Shares + p.Bookmarks
	p.EngagementRate = float64(interactions) / float64(p.Views) * 100
}

// Result is the immutable outcome of one logical extraction request.
// Method reports the last method attempted; on success that is the
// method that produced Metrics.
type Result struct {
	Target      string        `json:"target" yaml:"target"`
	Method      Method        `json:"-" yaml:"-"`
	MethodName  string        `json:"method" yaml:"method"`
	Success     bool          `json:"success" yaml:"success"`
	Metrics     PostMetrics   `json:"metrics" yaml:"metrics"`
	Cost        float64       `json:"cost" yaml:"cost"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
	CompletedAt time.Time     `json:"completed_at" yaml:"completed_at"`
}
