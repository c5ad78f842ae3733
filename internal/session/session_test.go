package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

func sampleSession() *CachedSession {
	return &CachedSession{
		Ideas: []ideas.BusinessIdea{{
			ID:              "0b7e6c1e-7a43-4a5c-9f0b-1f6c1f1e2d3a",
			Title:           "CRM Lite",
			Problem:         "p",
			WhoItHelps:      "w",
			WhyNow:          "n",
			MVPPlan:         []string{"a", "b"},
			Platforms:       []signals.Platform{signals.PlatformReddit},
			TopKeywords:     []string{"crm"},
			Evidence:        []string{"Need a CRM"},
			ConfidenceScore: 80,
			Theme:           "tools",
		}},
		Warnings:    []string{"Google Trends data fetch failed"},
		GeneratedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
		Params: signals.RequestParams{
			TimeWindow:     signals.Window7d,
			Location:       signals.LocationCA,
			Subreddits:     []string{"startups"},
			SocialKeywords: []string{"ai"},
		},
	}
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "", logger.NewTestLogger(t)), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))
	assert.True(t, mr.Exists(DefaultKey))
	assert.Equal(t, time.Duration(0), mr.TTL(DefaultKey))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_Missing(t *testing.T) {
	store, _ := newMiniredisStore(t)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Corrupt(t *testing.T) {
	store, mr := newMiniredisStore(t)
	require.NoError(t, mr.Set(DefaultKey, "{not json"))

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestRedisStore_Clear(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleSession()))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists(DefaultKey))
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, "custom", logger.NewNoOpLogger())
	ctx := context.Background()

	mock.ExpectGet("custom").SetErr(errors.New("connection refused"))
	_, err := store.Load(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectDel("custom").SetErr(errors.New("connection refused"))
	assert.Error(t, store.Clear(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
