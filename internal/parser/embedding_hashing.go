package parser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/cloudwego/eino/components/embedding"
)

// HashingEmbedder 基于特征哈希的本地句向量
// 一元词与相邻二元词映射到固定维度的带符号桶中, 结果做 L2 归一化
// 相同文本总是得到相同向量, 不依赖任何外部服务
type HashingEmbedder struct {
	dimensions int
	model      string
}

// NewHashingEmbedder 创建哈希向量器
func NewHashingEmbedder(dimensions int, model string) (*HashingEmbedder, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("向量维度必须为正数, 当前为 %d", dimensions)
	}
	if model == "" {
		model = "hashing-v1"
	}
	return &HashingEmbedder{dimensions: dimensions, model: model}, nil
}

// GetDimensions 返回向量维度
func (h *HashingEmbedder) GetDimensions() int {
	return h.dimensions
}

// Model 返回模型标识
func (h *HashingEmbedder) Model() string {
	return h.model
}

// EmbedStrings 实现 eino embedding.Embedder 接口
// 没有任何词元的文本得到零向量
func (h *HashingEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embed(text)
	}
	return out, nil
}

func (h *HashingEmbedder) embed(text string) []float64 {
	vec := make([]float64, h.dimensions)
	tokens := tokenize(text)

	for i, tok := range tokens {
		h.accumulate(vec, tok, 1.0)
		if i > 0 {
			h.accumulate(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (h *HashingEmbedder) accumulate(vec []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	bucket := sum % uint64(h.dimensions)
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

// tokenize 按字母数字切分并转小写, 保留 + 和 # 以区分 c++ / c#
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
