package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ats-score-go/internal/logger"
	"ats-score-go/internal/tracing"
	"ats-score-go/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var pipelineTracer = otel.Tracer("ats-score-go/processor")

// ScoringPipeline 串起规范化, 技能抽取和相似度评分
// 无内部可变状态, 可被多个请求并发使用
type ScoringPipeline struct {
	extractor SkillExtractor
	scorer    SimilarityScorer
}

// NewScoringPipeline 创建评分流水线
func NewScoringPipeline(extractor SkillExtractor, scorer SimilarityScorer) (*ScoringPipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("SkillExtractor 不能为空")
	}
	if scorer == nil {
		return nil, fmt.Errorf("SimilarityScorer 不能为空")
	}
	return &ScoringPipeline{extractor: extractor, scorer: scorer}, nil
}

// Strategy 返回当前技能抽取策略名称
func (p *ScoringPipeline) Strategy() string {
	return p.extractor.Name()
}

// Score 对一份简历文本和一份 JD 文本打分
// 规范化后任一文本为空时返回 ErrExtraction; 简历技能, JD 技能和相似度三者并行计算
func (p *ScoringPipeline) Score(ctx context.Context, resumeRaw, jobRaw string) (*types.ScoreResult, error) {
	ctx, span := pipelineTracer.Start(ctx, "ScoringPipeline.Score")
	defer span.End()
	start := time.Now()

	normResume := NormalizeText(resumeRaw)
	if normResume == "" {
		err := NewExtractionError("score", "简历规范化后为空")
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return nil, err
	}
	normJob := NormalizeText(jobRaw)
	if normJob == "" {
		err := NewExtractionError("score", "岗位描述规范化后为空")
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return nil, err
	}

	resumeInput, jobInput := normResume, normJob
	if p.extractor.InputMode() == InputRaw {
		resumeInput, jobInput = resumeRaw, jobRaw
	}

	var (
		resumeSkills types.SkillSet
		jobSkills    types.SkillSet
		matchScore   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		skills, err := p.extractor.ExtractSkills(gctx, resumeInput)
		if err != nil {
			return fmt.Errorf("简历技能抽取失败: %w", err)
		}
		resumeSkills = skills
		return nil
	})
	g.Go(func() error {
		skills, err := p.extractor.ExtractSkills(gctx, jobInput)
		if err != nil {
			return fmt.Errorf("岗位技能抽取失败: %w", err)
		}
		jobSkills = skills
		return nil
	})
	g.Go(func() error {
		score, err := p.scorer.Similarity(gctx, normResume, normJob)
		if err != nil {
			return fmt.Errorf("相似度计算失败: %w", err)
		}
		matchScore = score
		return nil
	})
	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err, errorTypeOf(err))
		return nil, err
	}

	matched := jobSkills.Intersect(resumeSkills)
	missing := jobSkills.Difference(resumeSkills)

	result := &types.ScoreResult{
		MatchScore:           matchScore,
		MatchedSkills:        matched.Sorted(),
		MissingSkills:        missing.Sorted(),
		NormalizedResumeText: normResume,
		ResumeSkills:         resumeSkills.Sorted(),
		JobSkills:            jobSkills.Sorted(),
		Strategy:             p.extractor.Name(),
	}

	span.SetAttributes(
		attribute.String("skills.strategy", result.Strategy),
		attribute.Float64("match.score", result.MatchScore),
		attribute.Int("skills.matched", len(result.MatchedSkills)),
		attribute.Int("skills.missing", len(result.MissingSkills)),
		attribute.String("resume.preview", tracing.SafeResumeContent(normResume)),
	)
	logger.Ctx(ctx).Info().
		Str("strategy", result.Strategy).
		Float64("match_score", result.MatchScore).
		Int("matched", len(result.MatchedSkills)).
		Int("missing", len(result.MissingSkills)).
		Dur("elapsed", time.Since(start)).
		Msg("简历评分完成")
	return result, nil
}

func errorTypeOf(err error) tracing.ErrorType {
	switch {
	case errors.Is(err, ErrExtraction):
		return tracing.ErrorTypeExtraction
	case errors.Is(err, ErrModelUnavailable):
		return tracing.ErrorTypeModel
	case errors.Is(err, ErrInvalidInput):
		return tracing.ErrorTypeValidation
	default:
		return tracing.ErrorTypeInternal
	}
}
