package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"trendmine/internal/common/logger"
)

func TestTracerProvider_LogsFinishedSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp := NewTracerProvider(logger.NewZapAdapter(zap.New(core)))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "signals.Aggregate")
	span.SetAttributes(attribute.Int("signals", 3))
	span.End()

	entries := logs.FilterMessage("span finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "signals.Aggregate", fields["span"])
	assert.Equal(t, "3", fields["signals"])
	assert.NotEmpty(t, fields["trace_id"])
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
}

func TestTracerProvider_FailedSpanLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tp := NewTracerProvider(logger.NewZapAdapter(zap.New(core)))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "ideas.Generate")
	span.SetStatus(codes.Error, "UPSTREAM_RATE_LIMITED")
	span.End()

	entries := logs.FilterMessage("span failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "UPSTREAM_RATE_LIMITED", entries[0].ContextMap()["status"])
}
