package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"trendmine/internal/common/config"
	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/session"
)

func TestNewSessionStore_Memory(t *testing.T) {
	store, closeFn := NewSessionStore(context.Background(), &config.Config{}, logger.NewTestLogger(t))
	defer closeFn()

	assert.IsType(t, &session.MemoryStore{}, store)
}

func TestNewSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: mr.Addr()}},
		Session:  config.SessionConfig{Key: "k"},
	}

	store, closeFn := NewSessionStore(context.Background(), cfg, logger.NewTestLogger(t))
	defer closeFn()

	require.IsType(t, &session.RedisStore{}, store)
	require.NoError(t, store.Save(context.Background(), &session.CachedSession{Ideas: []ideas.BusinessIdea{}}))
	assert.True(t, mr.Exists("k"))
}

func TestNewSessionStore_UnreachableFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{Database: config.DatabaseConfig{Redis: config.RedisConfig{Address: addr}}}
	store, closeFn := NewSessionStore(context.Background(), cfg, logger.NewTestLogger(t))
	defer closeFn()

	assert.IsType(t, &session.MemoryStore{}, store)
}

func TestNewGenerator_EmptyInputNeedsNoKey(t *testing.T) {
	gen := NewGenerator(&config.Config{}, logger.NewTestLogger(t))

	result, err := gen.Generate(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{ideas.WarningNoSignals}, result.Warnings)
}

func TestNewGenerator_TagsComponentOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gen := NewGenerator(&config.Config{}, logger.NewZapAdapter(zap.New(core)))

	_, err := gen.Generate(context.Background(), nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("generation skipped").All()
	require.Len(t, entries, 1)

	var component int
	for _, f := range entries[0].Context {
		if f.Key == "component" {
			component++
		}
	}
	assert.Equal(t, 1, component)
}
