package ideas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"trendmine/internal/signals"
)

func TestBuildDigest(t *testing.T) {
	in := []signals.TrendSignal{
		{
			Platform: signals.PlatformReddit,
			Text:     "Need a CRM",
			Metadata: signals.Metadata{Upvotes: 42, CommentCount: 7, Community: "smallbusiness"},
		},
		{Platform: signals.PlatformReddit, Text: "Quiet post"},
		{
			Platform: signals.PlatformTrendFeed,
			Text:     "solar panels",
			Metadata: signals.Metadata{Region: "CA", RelatedMagnitudes: []string{"20K+"}},
		},
		{Platform: signals.PlatformUserKeyword, Text: "modest fashion"},
	}

	expected := strings.Join([]string{
		"[reddit] Need a CRM (42 upvotes, 7 comments, r/smallbusiness)",
		"[reddit] Quiet post",
		"[trend_feed] solar panels (trending in CA) (~20K+ searches)",
		"[user_keyword] modest fashion",
	}, "\n")

	assert.Equal(t, expected, BuildDigest(in))
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt([]signals.TrendSignal{{Platform: signals.PlatformUserKeyword, Text: "ai"}})

	assert.True(t, strings.HasPrefix(prompt, "Here are the current trend signals to analyze:"))
	assert.Contains(t, prompt, "[user_keyword] ai")
	assert.Contains(t, prompt, "Return ONLY the JSON object")
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt()

	assert.Contains(t, p, "3-6 distinct trend themes")
	assert.Contains(t, p, "2 business ideas")
	assert.Contains(t, p, "ethical and legitimate")
	assert.Contains(t, p, "Only include platforms that actually contributed")
}
