// internal/workers/trends/generate-ideas/models.go
package generateideas

import (
	"time"

	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

// Input is usually the output of the aggregate-signals task.
type Input struct {
	Signals []signals.TrendSignal `json:"signals"`
}

type Output struct {
	Ideas       []ideas.BusinessIdea `json:"ideas"`
	Warnings    []string             `json:"warnings"`
	GeneratedAt time.Time            `json:"generatedAt"`
	IdeaCount   int                  `json:"ideaCount"`
}
