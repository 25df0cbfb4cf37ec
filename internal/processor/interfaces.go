package processor

import (
	"context"
	"io"
	"time"

	"ats-score-go/internal/types"

	"github.com/cloudwego/eino/components/embedding"
)

//
// PDF解析相关接口
//

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	// uri 仅用于日志和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

//
// 向量嵌入相关接口
//

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)
type TextEmbedder interface {
	// EmbedStrings 将文本转换为向量表示, 输出与输入一一对应
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)

	// GetDimensions 返回嵌入向量的维度
	GetDimensions() int
}

// VectorCache 向量缓存, 由 storage.Redis 实现
type VectorCache interface {
	GetEmbeddingVector(ctx context.Context, model, textMD5 string) ([]float64, string, error)
	SetEmbeddingVector(ctx context.Context, model, textMD5 string, vector []float64, modelVersion string, ttl time.Duration) error
}

//
// 技能抽取相关接口
//

// InputMode 技能抽取器期望的输入形式
type InputMode int

const (
	// InputNormalized 规范化后的文本 (小写, 单空格)
	InputNormalized InputMode = iota
	// InputRaw 原始文本, 保留大小写供实体识别使用
	InputRaw
)

// SkillExtractor 技能抽取策略
type SkillExtractor interface {
	// ExtractSkills 返回文本中出现的技能集合, 元素均为小写
	ExtractSkills(ctx context.Context, text string) (types.SkillSet, error)

	// InputMode 声明期望的输入形式
	InputMode() InputMode

	// Name 策略名称, 用于日志和结果
	Name() string
}

// EntityRecognizer 命名实体识别器
type EntityRecognizer interface {
	RecognizeEntities(ctx context.Context, text string) ([]types.Entity, error)
}

//
// 相似度评分接口
//

// SimilarityScorer 计算两段文本的语义相似度分数
type SimilarityScorer interface {
	// Similarity 返回 [0, 100] 区间内保留两位小数的分数
	Similarity(ctx context.Context, a, b string) (float64, error)
}
