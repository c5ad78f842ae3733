package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.subject = subj
	f.data = data
	return f.err
}

func sampleResult() *ideas.GenerationResult {
	return &ideas.GenerationResult{
		Ideas: []ideas.BusinessIdea{
			{ID: "a", Title: "Solar kits", Theme: "Energy", ConfidenceScore: 72},
			{ID: "b", Title: "Remote payroll", Theme: "Work", ConfidenceScore: 55},
		},
		Warnings:    []string{},
		GeneratedAt: time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestPublishGenerated(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "trendmine.ideas.generated", logger.NewTestLogger(t))

	require.NoError(t, p.PublishGenerated(context.Background(), sampleResult()))

	assert.Equal(t, "trendmine.ideas.generated", conn.subject)
	var ev IdeasGenerated
	require.NoError(t, json.Unmarshal(conn.data, &ev))
	assert.Equal(t, 2, ev.IdeaCount)
	assert.Equal(t, "Solar kits", ev.Ideas[0].Title)
	assert.Equal(t, 55, ev.Ideas[1].ConfidenceScore)
	assert.True(t, ev.GeneratedAt.Equal(time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)))
}

func TestPublishGenerated_ConnError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	p := NewPublisher(conn, "s", logger.NewNoOpLogger())

	err := p.PublishGenerated(context.Background(), sampleResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
}

func TestPublishGenerated_CancelledContext(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, "s", logger.NewNoOpLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.PublishGenerated(ctx, sampleResult()), context.Canceled)
	assert.Nil(t, conn.data)
}

func TestNewIdeasGenerated_Empty(t *testing.T) {
	ev := NewIdeasGenerated(&ideas.GenerationResult{})

	assert.Equal(t, 0, ev.IdeaCount)
	assert.NotNil(t, ev.Ideas)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(config.NATSConfig{
		URL:            "nats://127.0.0.1:1",
		MaxReconnects:  0,
		ReconnectWait:  10,
		ConnectTimeout: 200,
	}, logger.NewNoOpLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to connect to NATS")
}

var _ ideas.Publisher = (*Publisher)(nil)
