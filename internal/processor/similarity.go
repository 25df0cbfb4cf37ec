package processor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"ats-score-go/internal/logger"
)

// EmbeddingSimilarityScorer 用句向量的余弦相似度给两段文本打分
type EmbeddingSimilarityScorer struct {
	embedder TextEmbedder
}

// NewEmbeddingSimilarityScorer 创建评分器
func NewEmbeddingSimilarityScorer(embedder TextEmbedder) (*EmbeddingSimilarityScorer, error) {
	if embedder == nil {
		return nil, NewModelUnavailableError("similarity_init", fmt.Errorf("TextEmbedder 不能为空"))
	}
	return &EmbeddingSimilarityScorer{embedder: embedder}, nil
}

// Similarity 返回 max(0, round(clamp(cos, -1, 1) × 100, 2))
// 任一输入为空时返回 0 而不调用模型
func (s *EmbeddingSimilarityScorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		logger.Ctx(ctx).Warn().
			Err(NewInvalidInputError("similarity", "空文本")).
			Bool("a_empty", strings.TrimSpace(a) == "").
			Bool("b_empty", strings.TrimSpace(b) == "").
			Msg("相似度输入为空, 返回 0")
		return 0, nil
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{a, b})
	if err != nil {
		return 0, NewModelUnavailableError("embed", err)
	}
	if len(vectors) != 2 {
		return 0, NewModelUnavailableError("embed", fmt.Errorf("期望 2 个向量, 实际 %d", len(vectors)))
	}

	cos, err := CosineSimilarity(vectors[0], vectors[1])
	if err != nil {
		return 0, NewModelUnavailableError("cosine", err)
	}
	return ScoreFromCosine(cos), nil
}

// CosineSimilarity 计算余弦相似度, 任一向量为零向量时返回 0
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("向量维度不一致: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// ScoreFromCosine 将余弦值截断到 [-1, 1], 放大到百分制并保留两位小数
// 负相关记为 0, 分数始终落在 [0, 100] 且随余弦值单调不减
func ScoreFromCosine(cos float64) float64 {
	if math.IsNaN(cos) {
		return 0
	}
	cos = math.Max(-1, math.Min(1, cos))
	return math.Max(0, math.Round(cos*100*100)/100)
}
