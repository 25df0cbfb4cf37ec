package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"ats-score-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheEntry struct {
	vector  []float64
	version string
	ttl     time.Duration
}

// memoryCache 内存版 VectorCache
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]cacheEntry)}
}

func (m *memoryCache) GetEmbeddingVector(_ context.Context, model, textMD5 string) ([]float64, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, "", m.getErr
	}
	e, ok := m.entries[model+":"+textMD5]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return e.vector, e.version, nil
}

func (m *memoryCache) SetEmbeddingVector(_ context.Context, model, textMD5 string, vector []float64, modelVersion string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[model+":"+textMD5] = cacheEntry{vector: vector, version: modelVersion, ttl: ttl}
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestCachedEmbedderHitAndMiss(t *testing.T) {
	inner := &stubEmbedder{dims: 3}
	cache := newMemoryCache()
	c, err := NewCachedEmbedder(inner, cache, "unit", WithCacheLogger(quietLogger()), WithCacheTTL(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, c.GetDimensions())

	ctx := context.Background()
	first, err := c.EmbedStrings(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, inner.calls)
	assert.Len(t, cache.entries, 2)
	for _, e := range cache.entries {
		assert.Equal(t, "unit@3", e.version)
		assert.Equal(t, time.Hour, e.ttl)
	}

	second, err := c.EmbedStrings(ctx, []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "全部命中缓存")
	assert.Equal(t, first[1], second[0])

	_, err = c.EmbedStrings(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "只为未命中的文本调用一次")
	assert.Len(t, cache.entries, 3)
}

func TestCachedEmbedderVersionMismatch(t *testing.T) {
	inner := &stubEmbedder{dims: 2}
	cache := newMemoryCache()
	c, err := NewCachedEmbedder(inner, cache, "unit", WithCacheLogger(quietLogger()))
	require.NoError(t, err)

	_, err = c.EmbedStrings(context.Background(), []string{"x"})
	require.NoError(t, err)
	for k, e := range cache.entries {
		e.version = "unit@1024"
		e.vector = []float64{9, 9}
		cache.entries[k] = e
	}

	out, err := c.EmbedStrings(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, []float64{1, 0}, out[0], "旧版本向量不应被使用")
}

func TestCachedEmbedderCacheFailuresAreNotFatal(t *testing.T) {
	inner := &stubEmbedder{dims: 2}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	c, err := NewCachedEmbedder(inner, cache, "unit", WithCacheLogger(quietLogger()))
	require.NoError(t, err)

	out, err := c.EmbedStrings(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedEmbedderInnerFailure(t *testing.T) {
	c, err := NewCachedEmbedder(&stubEmbedder{dims: 2, err: fmt.Errorf("quota exceeded")}, newMemoryCache(), "unit",
		WithCacheLogger(quietLogger()))
	require.NoError(t, err)

	_, err = c.EmbedStrings(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestNewCachedEmbedderValidation(t *testing.T) {
	_, err := NewCachedEmbedder(nil, newMemoryCache(), "unit")
	assert.Error(t, err)
	_, err = NewCachedEmbedder(&stubEmbedder{dims: 1}, nil, "unit")
	assert.Error(t, err)
	_, err = NewCachedEmbedder(&stubEmbedder{dims: 1}, newMemoryCache(), "")
	assert.Error(t, err)
}
