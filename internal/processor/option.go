package processor

import (
	"ats-score-go/internal/storage"
)

// Components ScoringService 依赖的组件, 未注入的由配置构建
type Components struct {
	PDFExtractor     PDFExtractor     // PDF文本提取
	Embedder         TextEmbedder     // 句向量模型
	EntityRecognizer EntityRecognizer // 命名实体识别, 仅 entity 策略使用
	SkillExtractor   SkillExtractor   // 技能抽取策略
	Storage          *storage.Storage // 可选的缓存存储
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// WithPDFExtractor 设置PDF提取器组件
func WithPDFExtractor(extractor PDFExtractor) ComponentOpt {
	return func(c *Components) {
		c.PDFExtractor = extractor
	}
}

// WithEmbedder 设置句向量模型, 不再按配置构建
func WithEmbedder(embedder TextEmbedder) ComponentOpt {
	return func(c *Components) {
		c.Embedder = embedder
	}
}

// WithEntityRecognizer 设置实体识别器
func WithEntityRecognizer(recognizer EntityRecognizer) ComponentOpt {
	return func(c *Components) {
		c.EntityRecognizer = recognizer
	}
}

// WithSkillExtractor 直接指定技能抽取策略, 忽略 skills.strategy
func WithSkillExtractor(extractor SkillExtractor) ComponentOpt {
	return func(c *Components) {
		c.SkillExtractor = extractor
	}
}

// WithStorage 设置存储组件
func WithStorage(storage *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = storage
	}
}
