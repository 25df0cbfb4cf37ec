package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"ats-score-go/internal/constants"
	"ats-score-go/internal/logger"
	"ats-score-go/internal/metrics"
	"ats-score-go/internal/processor"
	"ats-score-go/internal/report"
	"ats-score-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const pageTitle = "ATS Resume Score Checker"

//go:embed templates/*.html
var templateFS embed.FS

// ScoreService ScoreHandler 依赖的评分服务, 由 processor.ScoringService 实现
type ScoreService interface {
	ScoreDocument(ctx context.Context, pdfData []byte, filename, jobText string) (*types.ScoreResult, error)
	Strategy() string
	Vocabulary() []string
}

// ScoreResponse POST /api/v1/score 的响应体
type ScoreResponse struct {
	RequestID string `json:"request_id"`
	report.ScoreView
}

// SkillsResponse GET /api/v1/skills 的响应体
type SkillsResponse struct {
	Strategy   string   `json:"strategy"`
	Vocabulary []string `json:"vocabulary"`
}

// ScoreHandler 处理上传表单和评分接口
type ScoreHandler struct {
	service        ScoreService
	maxUploadBytes int64
	templates      *template.Template
	metrics        *metrics.Metrics
}

// HandlerOption ScoreHandler 的配置选项
type HandlerOption func(*ScoreHandler)

// WithMetrics 记录评分结果指标
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *ScoreHandler) {
		h.metrics = m
	}
}

// NewScoreHandler 创建 ScoreHandler 并解析页面模板
func NewScoreHandler(service ScoreService, maxUploadBytes int, opts ...HandlerOption) (*ScoreHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("ScoreService 不能为空")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("解析页面模板失败: %w", err)
	}
	h := &ScoreHandler{
		service:        service,
		maxUploadBytes: int64(maxUploadBytes),
		templates:      tmpl,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Metrics 返回指标集合, 未启用时为 nil
func (h *ScoreHandler) Metrics() *metrics.Metrics {
	return h.metrics
}

// Templates 返回页面模板, 供路由注册到 hertz
func (h *ScoreHandler) Templates() *template.Template {
	return h.templates
}

// HandleIndex 上传表单
// GET /
func (h *ScoreHandler) HandleIndex(ctx context.Context, c *app.RequestContext) {
	c.HTML(consts.StatusOK, "index.html", utils.H{"Title": pageTitle})
}

// HandleScoreForm 处理表单提交并渲染结果页
// POST /score
func (h *ScoreHandler) HandleScoreForm(ctx context.Context, c *app.RequestContext) {
	result, err := h.score(ctx, c)
	if err != nil {
		c.HTML(statusOf(err), "index.html", utils.H{
			"Title":          pageTitle,
			"Error":          userMessage(err),
			"JobDescription": c.PostForm("job_description"),
		})
		return
	}
	c.HTML(consts.StatusOK, "result.html", utils.H{
		"Title": pageTitle,
		"View":  report.BuildView(result),
	})
}

// HandleScoreAPI JSON 评分接口
// POST /api/v1/score
func (h *ScoreHandler) HandleScoreAPI(ctx context.Context, c *app.RequestContext) {
	result, err := h.score(ctx, c)
	if err != nil {
		c.JSON(statusOf(err), utils.H{
			"error":      userMessage(err),
			"request_id": RequestIDFrom(c),
		})
		return
	}
	c.JSON(consts.StatusOK, ScoreResponse{
		RequestID: RequestIDFrom(c),
		ScoreView: report.BuildView(result),
	})
}

// HandleSkills 返回技能词表和当前策略
// GET /api/v1/skills
func (h *ScoreHandler) HandleSkills(ctx context.Context, c *app.RequestContext) {
	vocab := h.service.Vocabulary()
	if vocab == nil {
		vocab = []string{}
	}
	c.JSON(consts.StatusOK, SkillsResponse{
		Strategy:   h.service.Strategy(),
		Vocabulary: vocab,
	})
}

// HandleHealth 健康检查
// GET /api/v1/health
func (h *ScoreHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// score 调用 doScore 并记录指标
func (h *ScoreHandler) score(ctx context.Context, c *app.RequestContext) (*types.ScoreResult, error) {
	result, err := h.doScore(ctx, c)
	if h.metrics != nil {
		if err != nil {
			h.metrics.ObserveError(errorKind(err))
		} else {
			h.metrics.ObserveScore(result.Strategy, result.MatchScore, len(result.MatchedSkills), len(result.MissingSkills))
		}
	}
	return result, err
}

// doScore 读取并校验上传内容, 然后调用评分服务
func (h *ScoreHandler) doScore(ctx context.Context, c *app.RequestContext) (*types.ScoreResult, error) {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return nil, processor.NewInvalidInputError("upload", "resume file is required")
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return nil, processor.NewInvalidInputError("upload",
			fmt.Sprintf("file size %d exceeds the %d byte limit", fileHeader.Size, h.maxUploadBytes))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if !bytes.HasPrefix(data, []byte(constants.PDFMagic)) {
		return nil, processor.NewInvalidInputError("upload", "uploaded file is not a PDF")
	}

	jobText := c.PostForm("job_description")
	logger.Ctx(ctx).Info().
		Str("filename", fileHeader.Filename).
		Int("file_size", len(data)).
		Int("job_length", len(jobText)).
		Msg("收到评分请求")

	result, err := h.service.ScoreDocument(ctx, data, fileHeader.Filename, jobText)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("filename", fileHeader.Filename).Msg("评分失败")
		return nil, err
	}
	return result, nil
}

// statusOf 错误到 HTTP 状态码的映射
func statusOf(err error) int {
	switch {
	case errors.Is(err, processor.ErrInvalidInput):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrExtraction):
		return consts.StatusUnprocessableEntity
	default:
		return consts.StatusInternalServerError
	}
}

// errorKind 指标使用的错误类别
func errorKind(err error) string {
	switch {
	case errors.Is(err, processor.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, processor.ErrExtraction):
		return "extraction"
	case errors.Is(err, processor.ErrModelUnavailable):
		return "model_unavailable"
	default:
		return "internal"
	}
}

// userMessage 返回可以展示给用户的错误信息, 内部错误不暴露细节
func userMessage(err error) string {
	var scoreErr *processor.ScoreError
	switch {
	case errors.Is(err, processor.ErrInvalidInput) && errors.As(err, &scoreErr):
		return strings.TrimSpace(scoreErr.Detail)
	case errors.Is(err, processor.ErrExtraction):
		return "could not extract text from the resume or job description"
	default:
		return "internal error"
	}
}
