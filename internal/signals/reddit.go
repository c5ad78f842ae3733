package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	commonhttp "trendmine/internal/common/http"
	"trendmine/internal/common/logger"
)

const (
	defaultRedditBaseURL     = "https://www.reddit.com"
	defaultMaxCommunities    = 7
	defaultPostsPerCommunity = 10
	defaultUserAgent         = "TrendMine/1.0"
	redditPermalinkBase      = "https://reddit.com"
	maxSelfTextRunes         = 200
	redditTextDelimiter      = " - "
)

// ErrNoUsableItems is returned by a source that was asked for data and
// produced none.
var ErrNoUsableItems = errors.New("source returned no usable items")

// RedditConfig configures the Reddit source client.
type RedditConfig struct {
	BaseURL           string
	UserAgent         string
	MaxCommunities    int
	PostsPerCommunity int
	// RequestInterval spaces consecutive community requests. Zero disables pacing.
	RequestInterval time.Duration
	Timeout         time.Duration
}

// RedditClient fetches top posts per community, one community at a time.
type RedditClient struct {
	config *RedditConfig
	client *commonhttp.Client
	logger logger.Logger
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title       string `json:"title"`
	SelfText    string `json:"selftext"`
	Ups         int    `json:"ups"`
	NumComments int    `json:"num_comments"`
	Subreddit   string `json:"subreddit"`
	Permalink   string `json:"permalink"`
}

func NewRedditClient(cfg *RedditConfig, log logger.Logger) *RedditClient {
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = defaultRedditBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxCommunities <= 0 {
		c.MaxCommunities = defaultMaxCommunities
	}
	if c.PostsPerCommunity <= 0 {
		c.PostsPerCommunity = defaultPostsPerCommunity
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	return &RedditClient{
		config: &c,
		client: commonhttp.NewClient(c.Timeout,
			commonhttp.WithUserAgent(c.UserAgent),
			commonhttp.WithInterval(c.RequestInterval),
		),
		logger: log.With(map[string]interface{}{"source": string(PlatformReddit)}),
	}
}

// MapTimeWindow converts a recency window to Reddit's "t" filter.
// Unknown values map to "week".
func MapTimeWindow(w TimeWindow) string {
	switch w {
	case Window24h:
		return "day"
	case Window7d:
		return "week"
	case Window30d:
		return "month"
	default:
		return "week"
	}
}

// NormalizeCommunity trims, drops a leading "r/" and case-folds a community name.
func NormalizeCommunity(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Fetch returns signals for the first MaxCommunities supplied entries; blank
// entries still count toward the cap. A community
// that fails is logged and skipped. When communities were requested and none
// yielded a signal, Fetch returns ErrNoUsableItems.
func (c *RedditClient) Fetch(ctx context.Context, communities []string, window TimeWindow) ([]TrendSignal, error) {
	filter := MapTimeWindow(window)

	if len(communities) > c.config.MaxCommunities {
		communities = communities[:c.config.MaxCommunities]
	}

	var requested []string
	for _, raw := range communities {
		if name := NormalizeCommunity(raw); name != "" {
			requested = append(requested, name)
		}
	}
	if len(requested) == 0 {
		return nil, nil
	}

	var out []TrendSignal
	for _, community := range requested {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		posts, err := c.fetchCommunity(ctx, community, filter)
		if err != nil {
			c.logger.Warn("skipping community", map[string]interface{}{
				"community": community,
				"error":     err,
			})
			continue
		}

		for _, p := range posts {
			if sig, ok := postToSignal(p, community); ok {
				out = append(out, sig)
			}
		}
	}

	if len(out) == 0 {
		return nil, ErrNoUsableItems
	}

	c.logger.Debug("reddit fetch completed", map[string]interface{}{
		"communities": len(requested),
		"signals":     len(out),
	})
	return out, nil
}

func (c *RedditClient) fetchCommunity(ctx context.Context, community, filter string) ([]redditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d",
		c.config.BaseURL, url.PathEscape(community), filter, c.config.PostsPerCommunity)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit returned status %d", resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	posts := make([]redditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

func postToSignal(p redditPost, requested string) (TrendSignal, bool) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return TrendSignal{}, false
	}

	text := title
	if body := strings.TrimSpace(p.SelfText); body != "" {
		text += redditTextDelimiter + truncateRunes(body, maxSelfTextRunes)
	}

	community := strings.ToLower(p.Subreddit)
	if community == "" {
		community = requested
	}

	var sourceURL string
	if p.Permalink != "" {
		sourceURL = redditPermalinkBase + p.Permalink
	}

	return TrendSignal{
		Platform: PlatformReddit,
		Text:     text,
		Metadata: Metadata{
			Upvotes:      p.Ups,
			CommentCount: p.NumComments,
			Community:    community,
			SourceURL:    sourceURL,
		},
	}, true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
