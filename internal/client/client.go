// Package client calls the TrendMine HTTP API. It satisfies the
// orchestrator's SignalFetcher and IdeaGenerator.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	commonhttp "trendmine/internal/common/http"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

const (
	aggregatePath = "/api/v1/signals/aggregate"
	generatePath  = "/api/v1/ideas/generate"
)

// APIError is a non-2xx answer from the API. Message is the server's error text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *commonhttp.Client
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    commonhttp.NewClient(timeout, commonhttp.WithUserAgent("trendmine-cli")),
		logger:  log.With(map[string]interface{}{"component": "api-client"}),
	}
}

func (c *Client) FetchSignals(ctx context.Context, params signals.RequestParams) (*signals.AggregationResult, error) {
	var out signals.AggregationResult
	if err := c.post(ctx, aggregatePath, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateIdeas(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error) {
	var out ideas.GenerationResult
	body := struct {
		Signals []signals.TrendSignal `json:"signals"`
	}{Signals: in}
	if err := c.post(ctx, generatePath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("api call finished", map[string]interface{}{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return &APIError{Status: status, Message: body.Error}
	}
	return &APIError{Status: status, Message: fmt.Sprintf("API error: %d", status)}
}
