package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"hashtag and trailing comma", []string{"#AI, modest fashion,"}, []string{"ai", "modest fashion"}},
		{"multiple entries", []string{" Vegan ", "#meal prep", ""}, []string{"vegan", "meal prep"}},
		{"only separators", []string{", ,#,"}, nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKeywords(tt.input))
		})
	}
}

func TestNormalizeKeywords_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"#AI, modest fashion,"},
		{"##double", " # spaced ", "MiXeD Case"},
	}

	for _, in := range inputs {
		once := NormalizeKeywords(in)
		assert.Equal(t, once, NormalizeKeywords(once))
	}
}

func TestKeywordSignals(t *testing.T) {
	out := KeywordSignals([]string{"#Pickleball"})

	assert.Equal(t, []TrendSignal{{Platform: PlatformUserKeyword, Text: "pickleball"}}, out)
}
