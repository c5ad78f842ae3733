package ideas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "trendmine/internal/common/errors"
	commonhttp "trendmine/internal/common/http"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/metrics"
	"trendmine/internal/signals"
)

const (
	WarningNoSignals = "No trend signals provided"
	APIKeyName       = "GENERATOR_API_KEY"

	serviceName        = "AI API"
	completionsPath    = "/v1/chat/completions"
	maxLoggedBodyBytes = 2048
)

// Config configures the idea generator.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Publisher receives every successful generation result.
type Publisher interface {
	PublishGenerated(ctx context.Context, result *GenerationResult) error
}

// Generator turns trend signals into business ideas with one upstream call.
type Generator struct {
	config    *Config
	client    *commonhttp.Client
	logger    logger.Logger
	publisher Publisher
	now       func() time.Time
}

type Option func(*Generator)

// WithPublisher announces successful generations. Publish failures are logged only.
func WithPublisher(p Publisher) Option {
	return func(g *Generator) { g.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(cfg *Config, log logger.Logger, opts ...Option) *Generator {
	c := *cfg
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}

	g := &Generator{
		config: &c,
		client: commonhttp.NewClient(c.Timeout),
		logger: logger.Component(log, "generator"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a prompt from in, calls the generation service once and
// returns the parsed ideas. Empty input returns a single warning and makes
// no call. Upstream and parse failures are returned as *errors.StandardError.
func (g *Generator) Generate(ctx context.Context, in []signals.TrendSignal) (*GenerationResult, error) {
	if len(in) == 0 {
		skipped := apperrors.NewInputInvalidError("empty signal set")
		g.logger.Warn("generation skipped", map[string]interface{}{"code": string(skipped.Code)})
		metrics.GenerationFailures.WithLabelValues(string(skipped.Code)).Inc()
		return &GenerationResult{
			Ideas:       []BusinessIdea{},
			Warnings:    []string{skipped.Message},
			GeneratedAt: g.now().UTC(),
		}, nil
	}

	if g.config.APIKey == "" {
		err := apperrors.NewConfigMissingError(APIKeyName)
		g.logger.Error("generator credential missing", map[string]interface{}{"key": APIKeyName})
		metrics.GenerationFailures.WithLabelValues(string(err.Code)).Inc()
		return nil, err
	}

	ctx, span := otel.Tracer("trendmine/ideas").Start(ctx, "ideas.Generate")
	defer span.End()
	span.SetAttributes(attribute.Int("signals", len(in)))

	start := time.Now()
	defer func() {
		metrics.PipelineDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	}()

	ideas, err := g.generate(ctx, in)
	if err != nil {
		std := apperrors.AsStandard(err)
		metrics.GenerationFailures.WithLabelValues(string(std.Code)).Inc()
		span.SetAttributes(attribute.String("error.code", string(std.Code)))
		span.SetStatus(codes.Error, string(std.Code))
		return nil, std
	}

	result := &GenerationResult{
		Ideas:       ideas,
		Warnings:    []string{},
		GeneratedAt: g.now().UTC(),
	}
	metrics.IdeasGenerated.Add(float64(len(ideas)))

	g.logger.Info("ideas generated", map[string]interface{}{
		"signals": len(in),
		"ideas":   len(ideas),
	})

	if g.publisher != nil {
		if err := g.publisher.PublishGenerated(ctx, result); err != nil {
			g.logger.Warn("failed to publish generation event", map[string]interface{}{"error": err})
		}
	}

	return result, nil
}

func (g *Generator) generate(ctx context.Context, in []signals.TrendSignal) ([]BusinessIdea, error) {
	content, err := g.complete(ctx, in)
	if err != nil {
		return nil, err
	}

	raw, err := parseReply(content)
	if err != nil {
		g.logger.Error("failed to parse generator reply", map[string]interface{}{
			"error":   err,
			"content": truncate(content, maxLoggedBodyBytes),
		})
		return nil, apperrors.NewResponseParseFailedError(err)
	}

	allowed := make(map[signals.Platform]bool)
	for _, s := range in {
		allowed[s.Platform] = true
	}

	out := make([]BusinessIdea, 0, len(raw))
	for _, r := range raw {
		out = append(out, BusinessIdea{
			ID:              uuid.NewString(),
			Title:           strings.TrimSpace(r.Title),
			Problem:         strings.TrimSpace(r.Problem),
			WhoItHelps:      strings.TrimSpace(r.WhoItHelps),
			WhyNow:          strings.TrimSpace(r.WhyNow),
			MVPPlan:         trimAll(r.MVPPlan),
			Platforms:       NormalizePlatforms(r.Platforms, allowed),
			TopKeywords:     nonNil(r.TopKeywords),
			Evidence:        nonNil(r.Evidence),
			ConfidenceScore: roundScore(r.ConfidenceScore),
			Theme:           strings.TrimSpace(r.Theme),
		})
	}
	return out, nil
}

// complete sends the chat request and returns the first choice's content.
func (g *Generator) complete(ctx context.Context, in []signals.TrendSignal) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt()},
			{Role: "user", Content: BuildUserPrompt(in)},
		},
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewUpstreamFailureError(serviceName, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.DoWithContext(ctx, req)
	if err != nil {
		g.logger.Error("generator request failed", map[string]interface{}{"error": err})
		return "", apperrors.NewUpstreamFailureError(serviceName, 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamFailureError(serviceName, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("generator returned error status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   truncate(string(payload), maxLoggedBodyBytes),
		})
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", apperrors.NewRateLimitedError(serviceName)
		case http.StatusPaymentRequired:
			return "", apperrors.NewQuotaExhaustedError(serviceName)
		default:
			return "", apperrors.NewUpstreamFailureError(serviceName, resp.StatusCode, nil)
		}
	}

	var chat chatResponse
	if err := json.Unmarshal(payload, &chat); err != nil {
		g.logger.Error("generator reply is not valid JSON", map[string]interface{}{
			"error": err,
			"body":  truncate(string(payload), maxLoggedBodyBytes),
		})
		return "", apperrors.NewResponseParseFailedError(err)
	}
	if len(chat.Choices) == 0 {
		return "", apperrors.NewResponseParseFailedError(ErrNoJSONObject)
	}
	return chat.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
