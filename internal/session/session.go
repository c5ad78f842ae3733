// Package session persists the orchestrator's last successful generation.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trendmine/internal/common/logger"
	"trendmine/internal/ideas"
	"trendmine/internal/signals"
)

const DefaultKey = "trendmine_results"

var (
	ErrNotFound = errors.New("no cached session")
	ErrCorrupt  = errors.New("cached session is corrupt")
)

// CachedSession is the last GenerationResult plus the parameters that produced it.
type CachedSession struct {
	Ideas       []ideas.BusinessIdea  `json:"ideas"`
	Warnings    []string              `json:"warnings"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Params      signals.RequestParams `json:"params"`
}

// Store reads, writes and discards the single cached session.
type Store interface {
	Load(ctx context.Context) (*CachedSession, error)
	Save(ctx context.Context, s *CachedSession) error
	Clear(ctx context.Context) error
}

// RedisStore keeps the session as JSON text under one fixed key. It never expires.
type RedisStore struct {
	client redis.Cmdable
	key    string
	logger logger.Logger
}

func NewRedisStore(client redis.Cmdable, key string, log logger.Logger) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: log.With(map[string]interface{}{"component": "session", "key": key}),
	}
}

func (s *RedisStore) Load(ctx context.Context) (*CachedSession, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, cs *CachedSession) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.logger.Debug("session saved", map[string]interface{}{"ideas": len(cs.Ideas)})
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// MemoryStore holds the session in process. It is used when no Redis is configured.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*CachedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, ErrNotFound
	}
	return decode(m.raw)
}

func (m *MemoryStore) Save(ctx context.Context, cs *CachedSession) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

func decode(raw []byte) (*CachedSession, error) {
	var cs CachedSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &cs, nil
}
