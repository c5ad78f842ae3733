package ideas

import (
	"slices"
	"time"

	"trendmine/internal/signals"
)

// BusinessIdea is one generated, evidence-backed proposal.
type BusinessIdea struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Problem         string             `json:"problem"`
	WhoItHelps      string             `json:"whoItHelps"`
	WhyNow          string             `json:"whyNow"`
	MVPPlan         []string           `json:"mvpPlan"`
	Platforms       []signals.Platform `json:"platforms"`
	TopKeywords     []string           `json:"topKeywords"`
	Evidence        []string           `json:"evidence"`
	ConfidenceScore int                `json:"confidenceScore"`
	Theme           string             `json:"theme"`
}

// GenerationResult is the output of one generation call.
type GenerationResult struct {
	Ideas       []BusinessIdea `json:"ideas"`
	Warnings    []string       `json:"warnings"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// CloneIdeas returns a deep copy of in.
func CloneIdeas(in []BusinessIdea) []BusinessIdea {
	if in == nil {
		return nil
	}
	out := make([]BusinessIdea, len(in))
	for i, idea := range in {
		c := idea
		c.MVPPlan = slices.Clone(idea.MVPPlan)
		c.Platforms = slices.Clone(idea.Platforms)
		c.TopKeywords = slices.Clone(idea.TopKeywords)
		c.Evidence = slices.Clone(idea.Evidence)
		out[i] = c
	}
	return out
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// rawIdea is the shape the generation service returns before IDs are assigned.
type rawIdea struct {
	Title           string   `json:"title"`
	Problem         string   `json:"problem"`
	WhoItHelps      string   `json:"whoItHelps"`
	WhyNow          string   `json:"whyNow"`
	MVPPlan         []string `json:"mvpPlan"`
	Platforms       []string `json:"platforms"`
	TopKeywords     []string `json:"topKeywords"`
	Evidence        []string `json:"evidence"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Theme           string   `json:"theme"`
}

type rawIdeaList struct {
	Ideas []rawIdea `json:"ideas"`
}
