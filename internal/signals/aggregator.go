package signals

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "trendmine/internal/common/errors"
	"trendmine/internal/common/logger"
	"trendmine/internal/common/metrics"
)

const (
	WarningRedditFailed    = "Reddit data fetch failed"
	WarningTrendFeedFailed = "Google Trends data fetch failed"
)

// RedditSource fetches community signals.
type RedditSource interface {
	Fetch(ctx context.Context, communities []string, window TimeWindow) ([]TrendSignal, error)
}

// TrendSource fetches regional trend signals.
type TrendSource interface {
	Fetch(ctx context.Context, location Location) ([]TrendSignal, error)
}

// Aggregator runs both sources concurrently and merges their output with
// the user's keywords. It never fails; a failed source becomes a warning.
type Aggregator struct {
	reddit RedditSource
	trends TrendSource
	logger logger.Logger
}

func NewAggregator(reddit RedditSource, trends TrendSource, log logger.Logger) *Aggregator {
	return &Aggregator{
		reddit: reddit,
		trends: trends,
		logger: logger.Component(log, "aggregator"),
	}
}

// Aggregate returns reddit, trend feed and keyword signals in that order.
// Warnings are ordered reddit first.
func (a *Aggregator) Aggregate(ctx context.Context, params RequestParams) AggregationResult {
	ctx, span := otel.Tracer("trendmine/signals").Start(ctx, "signals.Aggregate")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.PipelineDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	}()

	var (
		redditSignals, trendSignals []TrendSignal
		redditErr, trendErr         error
		g                           errgroup.Group
	)

	communities := append([]string(nil), params.Subreddits...)

	g.Go(func() error {
		redditSignals, redditErr = guard(func() ([]TrendSignal, error) {
			return a.reddit.Fetch(ctx, communities, params.TimeWindow)
		})
		return nil
	})
	g.Go(func() error {
		trendSignals, trendErr = guard(func() ([]TrendSignal, error) {
			return a.trends.Fetch(ctx, params.Location)
		})
		return nil
	})
	_ = g.Wait()

	result := AggregationResult{
		Signals:  []TrendSignal{},
		Warnings: []string{},
	}

	if redditErr != nil {
		a.degrade(span, PlatformReddit, redditErr)
		result.Warnings = append(result.Warnings, WarningRedditFailed)
		redditSignals = nil
	} else {
		metrics.SourceFetches.WithLabelValues(string(PlatformReddit), "ok").Inc()
	}

	if trendErr != nil {
		a.degrade(span, PlatformTrendFeed, trendErr)
		result.Warnings = append(result.Warnings, WarningTrendFeedFailed)
		trendSignals = nil
	} else {
		metrics.SourceFetches.WithLabelValues(string(PlatformTrendFeed), "ok").Inc()
	}

	keywordSignals := KeywordSignals(params.SocialKeywords)

	result.Signals = append(result.Signals, redditSignals...)
	result.Signals = append(result.Signals, trendSignals...)
	result.Signals = append(result.Signals, keywordSignals...)

	metrics.SignalsCollected.WithLabelValues(string(PlatformReddit)).Add(float64(len(redditSignals)))
	metrics.SignalsCollected.WithLabelValues(string(PlatformTrendFeed)).Add(float64(len(trendSignals)))
	metrics.SignalsCollected.WithLabelValues(string(PlatformUserKeyword)).Add(float64(len(keywordSignals)))

	span.SetAttributes(
		attribute.Int("signals", len(result.Signals)),
		attribute.Int("warnings", len(result.Warnings)),
	)

	a.logger.Info("aggregation completed", map[string]interface{}{
		"reddit":    len(redditSignals),
		"trendFeed": len(trendSignals),
		"keywords":  len(keywordSignals),
		"warnings":  len(result.Warnings),
	})

	return result
}

// degrade records a failed source. The aggregation itself still succeeds.
func (a *Aggregator) degrade(span trace.Span, source Platform, err error) {
	degraded := apperrors.NewSourceDegradedError(string(source), err)
	a.logger.Warn("source degraded", map[string]interface{}{
		"source": string(source),
		"code":   string(degraded.Code),
		"error":  err,
	})
	span.RecordError(degraded)
	metrics.SourceFetches.WithLabelValues(string(source), "degraded").Inc()
}

// guard converts a panic inside fn into an error.
func guard(fn func() ([]TrendSignal, error)) (out []TrendSignal, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return fn()
}
