package logger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_WritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"pipeline": "aggregate"})

	log.Warn("source failed", map[string]interface{}{
		"source": "reddit",
		"error":  errors.New("status 503"),
	})

	entries := logs.All()
	assert.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "aggregate", ctx["pipeline"])
	assert.Equal(t, "reddit", ctx["source"])
	assert.Equal(t, "status 503", ctx["error"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestNew_LevelSelection(t *testing.T) {
	l := New("error", "json")
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))

	d := New("debug", "console")
	assert.True(t, d.Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.WithError(errors.New("x")).Info("ignored", nil)
	})
}

func TestZapWrapper_RedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := Component(NewZapAdapter(zap.New(core)), "generator")

	log.Info("calling upstream", map[string]interface{}{
		"api_key":       "sk-live-123",
		"Authorization": "Bearer sk-live-123",
		"model":         "gpt-4o-mini",
		"elapsed":       1500 * time.Millisecond,
	})

	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, Redacted, ctx["api_key"])
	assert.Equal(t, Redacted, ctx["Authorization"])
	assert.Equal(t, "gpt-4o-mini", ctx["model"])
	assert.Equal(t, "generator", ctx["component"])
	assert.Equal(t, 1500*time.Millisecond, ctx["elapsed"])
}

func TestNew_CaseInsensitiveOptions(t *testing.T) {
	l := New("WARN", "JSON")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
