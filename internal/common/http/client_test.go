package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SetsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := NewClient(time.Second, WithUserAgent("TrendMine/1.0"))
	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "TrendMine/1.0", got)
}

func TestClient_IntervalSpacesRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(time.Second, WithInterval(50*time.Millisecond))

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, server.URL, nil)
		require.NoError(t, err)
		resp, err := c.DoWithContext(context.Background(), req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_LimiterHonorsCancellation(t *testing.T) {
	c := NewClient(time.Second, WithInterval(time.Hour))

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)
	require.NoError(t, err)

	// First token is available immediately, second wait must fail fast.
	c.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.DoWithContext(ctx, req)
	assert.Error(t, err)
}
