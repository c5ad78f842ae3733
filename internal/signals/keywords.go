package signals

import "strings"

// NormalizeKeywords splits each entry on commas, trims it, drops leading
// '#' characters, case-folds it and discards empties. Applying it twice is a no-op.
func NormalizeKeywords(raw []string) []string {
	var out []string
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			kw := strings.TrimSpace(part)
			kw = strings.TrimLeft(kw, "#")
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}

// KeywordSignals turns raw keyword text into user_keyword signals.
func KeywordSignals(raw []string) []TrendSignal {
	keywords := NormalizeKeywords(raw)
	out := make([]TrendSignal, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, TrendSignal{Platform: PlatformUserKeyword, Text: kw})
	}
	return out
}
