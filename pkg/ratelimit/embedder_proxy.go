package ratelimit

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"
)

// Embedder 被限流的向量模型
type Embedder interface {
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)
	GetDimensions() int
}

// RateLimitedEmbedder 对向量模型的调用进行限流的代理
// 每次 EmbedStrings 消耗一个令牌, 失败直接返回, 不重试
type RateLimitedEmbedder struct {
	original    Embedder
	rateLimiter *TokenBucket
}

// NewRateLimitedEmbedder 创建限流代理, 容量为 QPM 的一半以允许少量突发
func NewRateLimitedEmbedder(original Embedder, qpm int) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2),
	}
}

// EmbedStrings 等待令牌后调用原始模型
func (rl *RateLimitedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if err := rl.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return rl.original.EmbedStrings(ctx, texts, opts...)
}

// GetDimensions 代理维度查询
func (rl *RateLimitedEmbedder) GetDimensions() int {
	return rl.original.GetDimensions()
}

// WithEmbeddingRateLimit qpm <= 0 时原样返回, 否则包一层限流
func WithEmbeddingRateLimit(original Embedder, qpm int) Embedder {
	if qpm <= 0 {
		return original
	}
	return NewRateLimitedEmbedder(original, qpm)
}
