package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendmine/internal/common/config"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 4, client.Client.Options().PoolSize)
	assert.Equal(t, 3*time.Second, client.Client.Options().DialTimeout)
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.RedisConfig{Address: addr, DialTimeout: 200})
	assert.Error(t, err)
}

func TestNewRedis_AppliesConfig(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Address: "127.0.0.1:6379", PoolSize: 8, OpTimeout: 500})
	require.NoError(t, err)
	defer client.Close()

	opts := client.Client.Options()
	assert.Equal(t, 8, opts.PoolSize)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, clientName, opts.ClientName)
}

func TestNewRedis_MissingAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}
