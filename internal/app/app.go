// Package app builds the pipelines and stores the binaries share from config.
package app

import (
	"context"

	"trendmine/internal/common/config"
	"trendmine/internal/common/database"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/session"
	"trendmine/internal/signals"
)

// NewAggregator wires both network sources from the sources section.
func NewAggregator(cfg *config.Config, log logger.Logger) *signals.Aggregator {
	src := cfg.Sources

	reddit := signals.NewRedditClient(&signals.RedditConfig{
		BaseURL:           src.Reddit.BaseURL,
		UserAgent:         src.UserAgent,
		MaxCommunities:    src.Reddit.MaxCommunities,
		PostsPerCommunity: src.Reddit.PostsPerCommunity,
		RequestInterval:   config.GetDuration(src.Reddit.RequestInterval),
		Timeout:           config.GetDuration(src.Reddit.Timeout),
	}, logger.Component(log, "reddit"))

	feed := signals.NewTrendFeedClient(&signals.TrendFeedConfig{
		BaseURL:   src.TrendFeed.BaseURL,
		UserAgent: src.UserAgent,
		MaxItems:  src.TrendFeed.MaxItems,
		Timeout:   config.GetDuration(src.TrendFeed.Timeout),
	}, logger.Component(log, "trend_feed"))

	return signals.NewAggregator(reddit, feed, log)
}

func NewGenerator(cfg *config.Config, log logger.Logger, opts ...ideas.Option) *ideas.Generator {
	return ideas.NewGenerator(&ideas.Config{
		BaseURL:     cfg.Generator.BaseURL,
		APIKey:      cfg.Generator.APIKey,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		Timeout:     config.GetDuration(cfg.Generator.Timeout),
	}, log, opts...)
}

// NewSessionStore returns a Redis-backed store when Redis is configured and
// reachable, otherwise an in-memory store. The returned func releases the
// Redis connection.
func NewSessionStore(ctx context.Context, cfg *config.Config, log logger.Logger) (session.Store, func()) {
	if cfg.Database.Redis.Address == "" {
		log.Info("redis not configured, session kept in memory", nil)
		return session.NewMemoryStore(), func() {}
	}

	rc, err := database.Connect(ctx, cfg.Database.Redis)
	if err != nil {
		log.Warn("redis unavailable, session kept in memory", map[string]interface{}{"error": err})
		return session.NewMemoryStore(), func() {}
	}

	return session.NewRedisStore(rc.Client, cfg.Session.Key, log), func() { _ = rc.Close() }
}
