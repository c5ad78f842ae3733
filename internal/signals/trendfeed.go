package signals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	commonhttp "trendmine/internal/common/http"
	"trendmine/internal/common/logger"
)

const (
	defaultTrendFeedURL  = "https://trends.google.com/trends/trendingsearches/daily/rss"
	defaultTrendMaxItems = 15
	feedPlaceholderTitle = "Daily Search Trends"
)

var ErrFeedParse = errors.New("trend feed could not be parsed")

// TrendFeedConfig configures the trend feed source client.
type TrendFeedConfig struct {
	BaseURL   string
	UserAgent string
	MaxItems  int
	Timeout   time.Duration
}

// TrendFeedClient reads a regional trending-searches RSS feed.
type TrendFeedClient struct {
	config *TrendFeedConfig
	client *commonhttp.Client
	logger logger.Logger
}

// FeedItem is one parsed feed entry. Magnitude is empty when the item has no
// traffic estimate.
type FeedItem struct {
	Title     string
	Magnitude string
}

func NewTrendFeedClient(cfg *TrendFeedConfig, log logger.Logger) *TrendFeedClient {
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = defaultTrendFeedURL
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxItems <= 0 {
		c.MaxItems = defaultTrendMaxItems
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}

	return &TrendFeedClient{
		config: &c,
		client: commonhttp.NewClient(c.Timeout, commonhttp.WithUserAgent(c.UserAgent)),
		logger: log.With(map[string]interface{}{"source": string(PlatformTrendFeed)}),
	}
}

// MapLocation converts a requested location to the feed's geo code. There is
// no global feed upstream, so worldwide and unknown values fall back to US.
func MapLocation(l Location) string {
	switch l {
	case LocationCA:
		return "CA"
	case LocationUS:
		return "US"
	default:
		return "US"
	}
}

// Fetch returns up to MaxItems trend signals for location. A non-2xx
// response, an unparsable body or an empty feed is an error.
func (c *TrendFeedClient) Fetch(ctx context.Context, location Location) ([]TrendSignal, error) {
	geo := MapLocation(location)
	endpoint := c.config.BaseURL + "?geo=" + url.QueryEscape(geo)

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
		return nil, fmt.Errorf("trend feed returned status %d", resp.StatusCode)
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedParse, err)
	}

	items := ParseFeedItems(doc, c.config.MaxItems)
	if len(items) == 0 {
		return nil, ErrNoUsableItems
	}

	region := string(location)
	if region == "" {
		region = geo
	}

	out := make([]TrendSignal, 0, len(items))
	for _, item := range items {
		sig := TrendSignal{
			Platform: PlatformTrendFeed,
			Text:     item.Title,
			Metadata: Metadata{Region: region},
		}
		if item.Magnitude != "" {
			sig.Metadata.RelatedMagnitudes = []string{item.Magnitude}
		}
		out = append(out, sig)
	}

	c.logger.Debug("trend feed fetch completed", map[string]interface{}{
		"geo":     geo,
		"signals": len(out),
	})
	return out, nil
}

// ParseFeedItems walks every <item> of an RSS document and reads the title
// and ht:approx_traffic from the same element. Placeholder and empty titles
// are skipped; at most max items are returned.
func ParseFeedItems(doc *xmlquery.Node, max int) []FeedItem {
	var out []FeedItem
	for _, item := range xmlquery.Find(doc, "//item") {
		if max > 0 && len(out) == max {
			break
		}

		var fi FeedItem
		for child := item.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode {
				continue
			}
			switch {
			case child.Data == "title" && child.Prefix == "":
				fi.Title = strings.TrimSpace(child.InnerText())
			case child.Data == "approx_traffic":
				fi.Magnitude = strings.TrimSpace(child.InnerText())
			}
		}

		if fi.Title == "" || fi.Title == feedPlaceholderTitle {
			continue
		}
		out = append(out, fi)
	}
	return out
}
