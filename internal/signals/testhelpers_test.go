package signals

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trendmine/internal/common/logger"
)

func listingJSON(community string, n int) string {
	children := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		children = append(children, map[string]interface{}{
			"data": map[string]interface{}{
				"title":        fmt.Sprintf("%s post %d", community, i),
				"selftext":     "",
				"ups":          100 + i,
				"num_comments": i,
				"subreddit":    community,
				"permalink":    fmt.Sprintf("/r/%s/comments/%d/", community, i),
			},
		})
	}
	body, _ := json.Marshal(map[string]interface{}{
		"data": map[string]interface{}{"children": children},
	})
	return string(body)
}

// redditServer serves n posts for every community except those in failing.
func redditServer(t *testing.T, n int, failing ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "r" || parts[2] != "top.json" {
			http.NotFound(w, r)
			return
		}
		community := parts[1]
		seen = append(seen, community)
		for _, f := range failing {
			if f == community {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingJSON(community, n)))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func feedXML(titles []string, magnitudes []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<rss version="2.0" xmlns:ht="https://trends.google.com/trends/trendingsearches/daily"><channel>`)
	b.WriteString(`<title><![CDATA[Daily Search Trends]]></title>`)
	for i, title := range titles {
		b.WriteString(`<item><title><![CDATA[` + title + `]]></title>`)
		if i < len(magnitudes) && magnitudes[i] != "" {
			b.WriteString(`<ht:approx_traffic>` + magnitudes[i] + `</ht:approx_traffic>`)
		}
		b.WriteString(`<link>https://trends.google.com</link></item>`)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func feedServer(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var geos []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geos = append(geos, r.URL.Query().Get("geo"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &geos
}

func newTestReddit(baseURL string, log logger.Logger) *RedditClient {
	return NewRedditClient(&RedditConfig{BaseURL: baseURL}, log)
}

func newTestFeed(baseURL string, log logger.Logger) *TrendFeedClient {
	return NewTrendFeedClient(&TrendFeedConfig{BaseURL: baseURL}, log)
}
