package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"ats-score-go/internal/storage"
	"ats-score-go/pkg/utils"

	"github.com/cloudwego/eino/components/embedding"
)

// CachedEmbedder 为 TextEmbedder 增加按文本 MD5 的向量缓存
// 缓存读写失败只记录日志, 不影响主流程
type CachedEmbedder struct {
	embedder     TextEmbedder
	cache        VectorCache
	model        string
	modelVersion string
	ttl          time.Duration
	logger       *log.Logger
}

// CacheOption CachedEmbedder 的配置选项
type CacheOption func(*CachedEmbedder)

// WithCacheLogger 设置日志记录器
func WithCacheLogger(logger *log.Logger) CacheOption {
	return func(c *CachedEmbedder) {
		c.logger = logger
	}
}

// WithCacheTTL 设置缓存过期时间
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedEmbedder) {
		c.ttl = ttl
	}
}

// NewCachedEmbedder 创建带缓存的向量器
func NewCachedEmbedder(embedder TextEmbedder, cache VectorCache, model string, options ...CacheOption) (*CachedEmbedder, error) {
	if embedder == nil {
		return nil, fmt.Errorf("TextEmbedder 不能为空")
	}
	if cache == nil {
		return nil, fmt.Errorf("VectorCache 不能为空")
	}
	if model == "" {
		return nil, fmt.Errorf("embeddingModel 不能为空")
	}

	c := &CachedEmbedder{
		embedder:     embedder,
		cache:        cache,
		model:        model,
		modelVersion: fmt.Sprintf("%s@%d", model, embedder.GetDimensions()),
		ttl:          24 * time.Hour,
		logger:       log.New(os.Stdout, "[CachedEmbedder] ", log.LstdFlags|log.Lshortfile),
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// GetDimensions 返回底层向量器维度
func (c *CachedEmbedder) GetDimensions() int {
	return c.embedder.GetDimensions()
}

// EmbedStrings 先查缓存, 未命中的文本合并成一次调用后回写缓存
func (c *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))

	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = utils.CalculateMD5([]byte(text))
		vector, version, err := c.cache.GetEmbeddingVector(ctx, c.model, keys[i])
		switch {
		case err == nil && len(vector) > 0 && version == c.modelVersion:
			out[i] = vector
			continue
		case err == nil && len(vector) > 0:
			c.logger.Printf("缓存向量模型版本不匹配 (缓存: %s, 当前: %s)，将重新生成", version, c.modelVersion)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			c.logger.Printf("读取向量缓存失败 key=%s: %v. 将继续生成新向量", keys[i], err)
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vectors, err := c.embedder.EmbedStrings(ctx, missTexts, opts...)
	if err != nil {
		return nil, fmt.Errorf("文本向量化失败: %w", err)
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("向量数量不匹配: 期望 %d, 实际 %d", len(missTexts), len(vectors))
	}

	for j, i := range missIdx {
		out[i] = vectors[j]
		if len(vectors[j]) == 0 {
			continue
		}
		if err := c.cache.SetEmbeddingVector(ctx, c.model, keys[i], vectors[j], c.modelVersion, c.ttl); err != nil {
			c.logger.Printf("写入向量缓存失败 key=%s: %v", keys[i], err)
		}
	}
	return out, nil
}
