package orchestrator

import (
	"context"

	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

// Local runs both pipelines in process.
type Local struct {
	Aggregator *signals.Aggregator
	Generator  *ideas.Generator
}

func (l *Local) FetchSignals(ctx context.Context, params signals.RequestParams) (*signals.AggregationResult, error) {
	result := l.Aggregator.Aggregate(ctx, params)
	return &result, nil
}

func (l *Local) GenerateIdeas(ctx context.Context, in []signals.TrendSignal) (*ideas.GenerationResult, error) {
	return l.Generator.Generate(ctx, in)
}
