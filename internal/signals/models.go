package signals

import "slices"

// Platform tags the source a signal was observed on.
type Platform string

const (
	PlatformReddit      Platform = "reddit"
	PlatformTrendFeed   Platform = "trend_feed"
	PlatformUserKeyword Platform = "user_keyword"
)

// Platforms lists every known platform in aggregation order.
var Platforms = []Platform{PlatformReddit, PlatformTrendFeed, PlatformUserKeyword}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformReddit, PlatformTrendFeed, PlatformUserKeyword:
		return true
	}
	return false
}

// TrendSignal is one normalized observation from a source.
type TrendSignal struct {
	Platform Platform `json:"platform"`
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Metadata carries platform specific fields. Reddit fills the vote, comment,
// community and URL fields; the trend feed fills region and magnitudes.
type Metadata struct {
	Upvotes           int      `json:"upvotes,omitempty"`
	CommentCount      int      `json:"commentCount,omitempty"`
	Community         string   `json:"community,omitempty"`
	SourceURL         string   `json:"sourceUrl,omitempty"`
	Region            string   `json:"region,omitempty"`
	RelatedMagnitudes []string `json:"relatedMagnitudes,omitempty"`
}

func (s TrendSignal) clone() TrendSignal {
	out := s
	out.Metadata.RelatedMagnitudes = slices.Clone(s.Metadata.RelatedMagnitudes)
	return out
}

// CloneSignals returns a deep copy of in.
func CloneSignals(in []TrendSignal) []TrendSignal {
	if in == nil {
		return nil
	}
	out := make([]TrendSignal, len(in))
	for i, s := range in {
		out[i] = s.clone()
	}
	return out
}

// TimeWindow is the recency window requested by the user.
type TimeWindow string

const (
	Window24h TimeWindow = "24h"
	Window7d  TimeWindow = "7d"
	Window30d TimeWindow = "30d"
)

// Location is the region requested for the trend feed.
type Location string

const (
	LocationCA        Location = "CA"
	LocationUS        Location = "US"
	LocationWorldwide Location = "worldwide"
)

// RequestParams are the user parameters an aggregation runs with.
type RequestParams struct {
	TimeWindow     TimeWindow `json:"timeWindow"`
	Location       Location   `json:"location"`
	Subreddits     []string   `json:"subreddits"`
	SocialKeywords []string   `json:"socialKeywords"`
}

// Clone returns a copy that shares no slices with p.
func (p RequestParams) Clone() RequestParams {
	out := p
	out.Subreddits = slices.Clone(p.Subreddits)
	out.SocialKeywords = slices.Clone(p.SocialKeywords)
	return out
}

// AggregationResult is the unified output of one aggregation.
type AggregationResult struct {
	Signals  []TrendSignal `json:"signals"`
	Warnings []string      `json:"warnings"`
}
