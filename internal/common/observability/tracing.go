package observability

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"trendmine/internal/common/logger"
)

// NewTracerProvider returns a provider whose finished spans are written to
// log: failed spans at Warn, the rest at Debug.
func NewTracerProvider(log logger.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&spanLogger{log: log}),
	)
}

type spanLogger struct {
	log logger.Logger
}

func (p *spanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *spanLogger) OnEnd(s sdktrace.ReadOnlySpan) {
	fields := map[string]interface{}{
		"span":     s.Name(),
		"trace_id": s.SpanContext().TraceID().String(),
		"duration": s.EndTime().Sub(s.StartTime()),
	}
	for _, kv := range s.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}

	if st := s.Status(); st.Code == codes.Error {
		fields["status"] = st.Description
		p.log.Warn("span failed", fields)
		return
	}
	p.log.Debug("span finished", fields)
}

func (p *spanLogger) Shutdown(context.Context) error   { return nil }
func (p *spanLogger) ForceFlush(context.Context) error { return nil }
