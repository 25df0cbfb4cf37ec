package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ats-score-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis 连接 REDIS_ADDRESS (默认 localhost:6379), 不可用时跳过
func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}
	cfg := config.DefaultConfig().Redis
	cfg.Address = addr
	cfg.DB = 15

	r, err := NewRedisAdapter(&cfg)
	if err != nil {
		t.Skipf("Redis不可用, 跳过: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestNewRedisAdapterValidation(t *testing.T) {
	_, err := NewRedisAdapter(nil)
	assert.Error(t, err)

	_, err = NewRedisAdapter(&config.RedisConfig{})
	assert.Error(t, err)
}

func TestEmbeddingVectorKey(t *testing.T) {
	assert.Equal(t, "app:embedding:vector:text-embedding-v3:abc123", EmbeddingVectorKey("text-embedding-v3", "abc123"))
}

func TestEmbeddingVectorRoundTrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()
	textMD5 := "test-md5-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { r.Client.Del(ctx, EmbeddingVectorKey("unit", textMD5)) })

	_, _, err := r.GetEmbeddingVector(ctx, "unit", textMD5)
	assert.True(t, errors.Is(err, ErrNotFound), "未写入时应返回 ErrNotFound")

	vector := []float64{0.1, -0.2, 0.3}
	require.NoError(t, r.SetEmbeddingVector(ctx, "unit", textMD5, vector, "unit-v1", time.Minute))

	got, version, err := r.GetEmbeddingVector(ctx, "unit", textMD5)
	require.NoError(t, err)
	assert.Equal(t, vector, got)
	assert.Equal(t, "unit-v1", version)

	ttl, err := r.Client.TTL(ctx, EmbeddingVectorKey("unit", textMD5)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewStorageWithoutRedis(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, s.Redis)
	assert.NoError(t, s.Close())

	_, err = NewStorage(context.Background(), nil)
	assert.Error(t, err)
}
