// internal/workers/trends/aggregate-signals/models.go
package aggregatesignals

import "trendmine/internal/signals"

// Input carries the process variables the aggregation runs with.
type Input struct {
	TimeWindow     signals.TimeWindow `json:"timeWindow,omitempty"`
	Location       signals.Location   `json:"location,omitempty"`
	Subreddits     []string           `json:"subreddits"`
	SocialKeywords []string           `json:"socialKeywords"`
}

// Output is written back to the process instance.
type Output struct {
	Signals     []signals.TrendSignal `json:"signals"`
	Warnings    []string              `json:"warnings"`
	SignalCount int                   `json:"signalCount"`
}

const inputSchema = `{
	"type": "object",
	"properties": {
		"timeWindow": {"type": "string", "enum": ["24h", "7d", "30d"]},
		"location": {"type": "string", "enum": ["CA", "US", "worldwide"]},
		"subreddits": {"type": ["array", "null"], "items": {"type": "string"}},
		"socialKeywords": {"type": ["array", "null"], "items": {"type": "string"}}
	}
}`
