package processor

import (
	"context"
	"fmt"
	"time"

	"ats-score-go/internal/config"
	"ats-score-go/internal/constants"
	"ats-score-go/internal/logger"
	"ats-score-go/internal/parser"
	"ats-score-go/internal/types"
	"ats-score-go/pkg/ratelimit"
)

// ScoringService 进程级评分服务
// 模型在创建时加载一次, 之后只读, 可被所有请求共享
type ScoringService struct {
	pdfExtractor PDFExtractor
	pipeline     *ScoringPipeline
	embedder     TextEmbedder
	extractor    SkillExtractor
	cfg          *config.Config
}

// NewScoringService 按配置构建所有组件并做一次预热
// 任何模型无法加载或预热失败都返回 ErrModelUnavailable
func NewScoringService(ctx context.Context, cfg *config.Config, opts ...ComponentOpt) (*ScoringService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	components := Components{}
	for _, opt := range opts {
		opt(&components)
	}

	var err error
	if components.PDFExtractor == nil {
		components.PDFExtractor, err = BuildPDFExtractor(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("初始化PDF解析器失败: %w", err)
		}
	}

	if components.Embedder == nil {
		components.Embedder, err = BuildTextEmbedder(cfg, components)
		if err != nil {
			return nil, err
		}
	}

	if components.SkillExtractor == nil {
		components.SkillExtractor, err = BuildSkillExtractor(cfg, components.EntityRecognizer)
		if err != nil {
			return nil, err
		}
	}

	scorer, err := NewEmbeddingSimilarityScorer(components.Embedder)
	if err != nil {
		return nil, err
	}
	pipeline, err := NewScoringPipeline(components.SkillExtractor, scorer)
	if err != nil {
		return nil, err
	}

	svc := &ScoringService{
		pdfExtractor: components.PDFExtractor,
		pipeline:     pipeline,
		embedder:     components.Embedder,
		extractor:    components.SkillExtractor,
		cfg:          cfg,
	}
	if err := svc.warmUp(ctx); err != nil {
		return nil, err
	}

	logger.Info().
		Str("embedding_provider", cfg.Embedding.Provider).
		Str("embedding_model", cfg.Embedding.Model).
		Int("dimensions", components.Embedder.GetDimensions()).
		Str("strategy", components.SkillExtractor.Name()).
		Msg("评分服务初始化完成")
	return svc, nil
}

// warmUp 用探测文本走一遍向量模型和技能抽取, 把加载失败暴露在启动阶段
func (s *ScoringService) warmUp(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.EmbeddingTimeout()+5*time.Second)
	defer cancel()

	vectors, err := s.embedder.EmbedStrings(ctx, []string{constants.WarmupProbeText})
	if err != nil {
		return NewModelUnavailableError("warmup_embedding", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return NewModelUnavailableError("warmup_embedding", fmt.Errorf("预热返回空向量"))
	}
	if _, err := s.extractor.ExtractSkills(ctx, constants.WarmupProbeText); err != nil {
		return NewModelUnavailableError("warmup_skills", err)
	}
	return nil
}

// Strategy 当前技能抽取策略
func (s *ScoringService) Strategy() string {
	return s.pipeline.Strategy()
}

// Vocabulary 关键词策略的词表; entity 策略返回 nil
func (s *ScoringService) Vocabulary() []string {
	if k, ok := s.extractor.(*KeywordSkillExtractor); ok {
		return k.Vocabulary()
	}
	return nil
}

// Score 对纯文本简历和 JD 打分
func (s *ScoringService) Score(ctx context.Context, resumeText, jobText string) (*types.ScoreResult, error) {
	return s.pipeline.Score(ctx, resumeText, jobText)
}

// ExtractText 从 PDF 字节中提取文本, 解析失败视为抽取失败
func (s *ScoringService) ExtractText(ctx context.Context, pdfData []byte, filename string) (string, error) {
	text, metadata, err := s.pdfExtractor.ExtractTextFromBytes(ctx, pdfData, filename)
	if err != nil {
		return "", NewExtractionErrorWithCause("pdf_extract", err)
	}
	logger.Ctx(ctx).Debug().
		Str("filename", filename).
		Interface("page_count", metadata["page_count"]).
		Interface("empty_pages", metadata["empty_pages"]).
		Int("text_length", len(text)).
		Msg("PDF文本提取完成")
	return text, nil
}

// ScoreDocument 提取 PDF 简历文本后打分
func (s *ScoringService) ScoreDocument(ctx context.Context, pdfData []byte, filename, jobText string) (*types.ScoreResult, error) {
	resumeText, err := s.ExtractText(ctx, pdfData, filename)
	if err != nil {
		return nil, err
	}
	return s.Score(ctx, resumeText, jobText)
}

// BuildPDFExtractor 按 pdf.provider 构建 PDF 解析器
func BuildPDFExtractor(ctx context.Context, cfg *config.Config) (PDFExtractor, error) {
	switch cfg.PDF.Provider {
	case config.PDFProviderTika:
		return parser.NewTikaPDFExtractor(cfg.PDF.TikaURL,
			parser.WithTikaLogger(logger.Std("[TikaPDF] ")),
			parser.WithTikaTimeout(cfg.PDFTimeout()),
		)
	case config.PDFProviderEino, "":
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(logger.Std("[EinoPDF] ")),
			parser.WithEinoTimeout(cfg.PDFTimeout()),
		)
	default:
		return nil, fmt.Errorf("未知的 pdf.provider: %q", cfg.PDF.Provider)
	}
}

// BuildTextEmbedder 按 embedding.provider 构建向量模型, 依次叠加限流和缓存
func BuildTextEmbedder(cfg *config.Config, components Components) (TextEmbedder, error) {
	var base ratelimit.Embedder
	switch cfg.Embedding.Provider {
	case config.EmbeddingProviderAliyun:
		aliyun, err := parser.NewAliyunEmbedder(cfg.Embedding.APIKey, cfg.Embedding,
			parser.WithAliyunLogger(logger.Std("[AliyunEmbedder] ")))
		if err != nil {
			return nil, NewModelUnavailableError("embedder_init", err)
		}
		base = aliyun
	case config.EmbeddingProviderHashing:
		hashing, err := parser.NewHashingEmbedder(cfg.Embedding.Dimensions, cfg.Embedding.Model)
		if err != nil {
			return nil, NewModelUnavailableError("embedder_init", err)
		}
		base = hashing
	default:
		return nil, NewModelUnavailableError("embedder_init", fmt.Errorf("未知的 embedding.provider: %q", cfg.Embedding.Provider))
	}

	var embedder TextEmbedder = ratelimit.WithEmbeddingRateLimit(base, cfg.Embedding.QPM)

	if components.Storage != nil && components.Storage.Redis != nil {
		cached, err := NewCachedEmbedder(embedder, components.Storage.Redis, cfg.Embedding.Model,
			WithCacheTTL(cfg.EmbeddingCacheTTL()),
			WithCacheLogger(logger.Std("[CachedEmbedder] ")),
		)
		if err != nil {
			return nil, fmt.Errorf("初始化向量缓存失败: %w", err)
		}
		embedder = cached
	}
	return embedder, nil
}

// BuildSkillExtractor 按 skills.strategy 构建技能抽取策略
// recognizer 为 nil 且策略为 entity 时按配置加载 NER 模型
func BuildSkillExtractor(cfg *config.Config, recognizer EntityRecognizer) (SkillExtractor, error) {
	switch cfg.Skills.Strategy {
	case config.SkillStrategyKeyword, "":
		return NewKeywordSkillExtractor(), nil
	case config.SkillStrategyEntity:
		if recognizer == nil {
			prose, err := parser.NewProseEntityRecognizer(cfg.Skills.NERModelPath)
			if err != nil {
				return nil, NewModelUnavailableError("ner_init", err)
			}
			recognizer = prose
		}
		return NewEntitySkillExtractor(recognizer, cfg.Skills.EntityLabels)
	default:
		return nil, fmt.Errorf("未知的 skills.strategy: %q", cfg.Skills.Strategy)
	}
}
