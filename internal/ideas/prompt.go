package ideas

import (
	"fmt"
	"strings"

	"trendmine/internal/signals"
)

const systemPrompt = `You are a business idea generator that analyzes real trend data to create actionable, ethical business ideas.

Your task:
1. Analyze the provided trend signals from Reddit communities, regional trending searches and user supplied keywords
2. Identify 3-6 distinct trend themes by clustering related signals
3. For each theme, generate 2 business ideas (total 6-12 ideas)
4. Ground each idea in the evidence from the signals

Requirements for each idea:
- Must be ethical and legitimate business
- Must be actionable as an MVP
- Must reference specific trend evidence quoted from the signals
- Must explain why timing is right based on trends

Output a JSON object with this exact structure:
{
  "ideas": [
    {
      "title": "Short catchy business name/concept",
      "problem": "1-2 sentences describing the problem/need",
      "whoItHelps": "Target audience description",
      "whyNow": "Why this is timely, referencing specific trend evidence",
      "mvpPlan": ["Step 1", "Step 2", "Step 3"],
      "platforms": ["reddit", "trend_feed", "user_keyword"],
      "topKeywords": ["keyword1", "keyword2", "keyword3"],
      "evidence": ["Specific signal quote 1", "Specific signal quote 2"],
      "confidenceScore": 75,
      "theme": "Theme name this idea belongs to"
    }
  ]
}

Only include platforms that actually contributed signals to the idea.
Confidence score must be an integer from 0 to 100 based on signal strength (upvotes, relevance, multiple sources).`

const userPromptTemplate = `Here are the current trend signals to analyze:

%s

Generate 6-12 business ideas based on these trends. Return ONLY the JSON object, no markdown or explanation.`

// BuildDigest renders one line per signal with source annotations.
func BuildDigest(in []signals.TrendSignal) string {
	lines := make([]string, 0, len(in))
	for _, s := range in {
		lines = append(lines, digestLine(s))
	}
	return strings.Join(lines, "\n")
}

func digestLine(s signals.TrendSignal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", s.Platform, s.Text)

	md := s.Metadata
	switch s.Platform {
	case signals.PlatformReddit:
		if md.Upvotes > 0 {
			fmt.Fprintf(&b, " (%d upvotes, %d comments, r/%s)", md.Upvotes, md.CommentCount, md.Community)
		}
	case signals.PlatformTrendFeed:
		if md.Region != "" {
			fmt.Fprintf(&b, " (trending in %s)", md.Region)
		}
	}
	if len(md.RelatedMagnitudes) > 0 && md.RelatedMagnitudes[0] != "" {
		fmt.Fprintf(&b, " (~%s searches)", md.RelatedMagnitudes[0])
	}
	return b.String()
}

// BuildUserPrompt wraps the digest in the generation instructions.
func BuildUserPrompt(in []signals.TrendSignal) string {
	return fmt.Sprintf(userPromptTemplate, BuildDigest(in))
}

// SystemPrompt returns the fixed system instruction.
func SystemPrompt() string {
	return systemPrompt
}
