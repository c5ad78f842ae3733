package ideas

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"trendmine/internal/common/validation"
	"trendmine/internal/signals"
)

var (
	ErrNoJSONObject  = errors.New("no JSON object found in response")
	ErrSchemaInvalid = errors.New("response does not match idea schema")
)

const ideaListSchema = `{
  "type": "object",
  "required": ["ideas"],
  "properties": {
    "ideas": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "problem", "whoItHelps", "whyNow", "mvpPlan", "platforms", "topKeywords", "evidence", "confidenceScore", "theme"],
        "properties": {
          "title":           {"type": "string", "pattern": "\\S"},
          "problem":         {"type": "string", "pattern": "\\S"},
          "whoItHelps":      {"type": "string", "pattern": "\\S"},
          "whyNow":          {"type": "string", "pattern": "\\S"},
          "mvpPlan":         {"type": "array", "minItems": 1, "items": {"type": "string", "pattern": "\\S"}},
          "platforms":       {"type": "array", "items": {"type": "string"}},
          "topKeywords":     {"type": "array", "items": {"type": "string"}},
          "evidence":        {"type": "array", "items": {"type": "string"}},
          "confidenceScore": {"type": "number", "minimum": 0, "maximum": 100},
          "theme":           {"type": "string", "pattern": "\\S"}
        }
      }
    }
  }
}`

var replySchema = validation.MustSchema(ideaListSchema)

// platformAliases maps display labels the model may echo back to platforms.
var platformAliases = map[string]signals.Platform{
	"reddit":        signals.PlatformReddit,
	"trend_feed":    signals.PlatformTrendFeed,
	"trend feed":    signals.PlatformTrendFeed,
	"google trends": signals.PlatformTrendFeed,
	"google_trends": signals.PlatformTrendFeed,
	"user_keyword":  signals.PlatformUserKeyword,
	"user keyword":  signals.PlatformUserKeyword,
	"keywords":      signals.PlatformUserKeyword,
	"tiktok/ig":     signals.PlatformUserKeyword,
	"tiktok_ig":     signals.PlatformUserKeyword,
}

// ExtractJSONObject returns the first balanced {...} region of s. Braces
// inside JSON strings are ignored.
func ExtractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSONObject
}

func stripCodeFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// parseReply extracts, validates and decodes the idea list from model output.
func parseReply(content string) ([]rawIdea, error) {
	obj, err := ExtractJSONObject(stripCodeFences(content))
	if err != nil {
		return nil, err
	}

	result, err := replySchema.ValidateBytes([]byte(obj))
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrSchemaInvalid, strings.Join(result.GetErrorMessages(), "; "))
	}

	var list rawIdeaList
	if err := json.Unmarshal([]byte(obj), &list); err != nil {
		return nil, err
	}
	return list.Ideas, nil
}

// NormalizePlatforms maps labels to platforms, drops unknown and duplicate
// entries and keeps only those in allowed. The result is never nil.
func NormalizePlatforms(labels []string, allowed map[signals.Platform]bool) []signals.Platform {
	out := []signals.Platform{}
	seen := make(map[signals.Platform]bool)
	for _, label := range labels {
		p, ok := platformAliases[strings.ToLower(strings.TrimSpace(label))]
		if !ok || !allowed[p] || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// roundScore rounds to the nearest integer within 0..100.
func roundScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
