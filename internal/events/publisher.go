// Package events announces generation results on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

// IdeasGenerated is the payload published after each successful generation.
type IdeasGenerated struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	IdeaCount   int           `json:"ideaCount"`
	Ideas       []IdeaSummary `json:"ideas"`
}

type IdeaSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Theme           string `json:"theme"`
	ConfidenceScore int    `json:"confidenceScore"`
}

type Publisher struct {
	conn    Conn
	subject string
	logger  logger.Logger
}

func NewPublisher(conn Conn, subject string, log logger.Logger) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  log.With(map[string]interface{}{"component": "events", "subject": subject}),
	}
}

// PublishGenerated implements ideas.Publisher.
func (p *Publisher) PublishGenerated(ctx context.Context, result *ideas.GenerationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(NewIdeasGenerated(result))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}

	p.logger.Debug("generation event published", map[string]interface{}{"ideas": len(result.Ideas)})
	return nil
}

func NewIdeasGenerated(result *ideas.GenerationResult) IdeasGenerated {
	ev := IdeasGenerated{
		GeneratedAt: result.GeneratedAt,
		IdeaCount:   len(result.Ideas),
		Ideas:       make([]IdeaSummary, 0, len(result.Ideas)),
	}
	for _, idea := range result.Ideas {
		ev.Ideas = append(ev.Ideas, IdeaSummary{
			ID:              idea.ID,
			Title:           idea.Title,
			Theme:           idea.Theme,
			ConfidenceScore: idea.ConfidenceScore,
		})
	}
	return ev
}

// Connect dials NATS with the configured reconnect policy.
func Connect(cfg config.NATSConfig, log logger.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("trendmine"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(config.GetDuration(cfg.ReconnectWait)),
		nats.Timeout(config.GetDuration(cfg.ConnectTimeout)),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", map[string]interface{}{"error": err})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", map[string]interface{}{"url": nc.ConnectedUrl()})
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed", nil)
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}
	return nc, nil
}
