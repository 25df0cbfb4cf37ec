package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"ats-score-go/internal/api/handler"
	"ats-score-go/internal/api/router"
	"ats-score-go/internal/config"
	"ats-score-go/internal/constants"
	"ats-score-go/internal/metrics"
	"ats-score-go/internal/processor"
	"ats-score-go/internal/testutil"
	"ats-score-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScoreService 记录请求并返回预设结果
type fakeScoreService struct {
	result  *types.ScoreResult
	err     error
	gotPDF  []byte
	gotJob  string
	gotName string
}

func (f *fakeScoreService) ScoreDocument(_ context.Context, pdfData []byte, filename, jobText string) (*types.ScoreResult, error) {
	f.gotPDF, f.gotName, f.gotJob = pdfData, filename, jobText
	return f.result, f.err
}

func (f *fakeScoreService) Strategy() string { return "keyword" }

func (f *fakeScoreService) Vocabulary() []string { return constants.SkillVocabulary }

func newTestEngine(t *testing.T, svc handler.ScoreService, maxUploadBytes int, opts ...handler.HandlerOption) *server.Hertz {
	t.Helper()
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	scoreHandler, err := handler.NewScoreHandler(svc, maxUploadBytes, opts...)
	require.NoError(t, err)
	router.RegisterRoutes(h, scoreHandler)
	return h
}

// createMultipartForm 构造 resume + job_description 表单, file 为 nil 时不附带文件
func createMultipartForm(t *testing.T, file []byte, jobDescription string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if file != nil {
		part, err := writer.CreateFormFile("resume", "resume.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("job_description", jobDescription))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postScore(h *server.Hertz, path string, body *bytes.Buffer, contentType string, headers ...ut.Header) *ut.ResponseRecorder {
	headers = append(headers, ut.Header{Key: "Content-Type", Value: contentType})
	return ut.PerformRequest(h.Engine, "POST", path, &ut.Body{Body: body, Len: body.Len()}, headers...)
}

func sampleResult() *types.ScoreResult {
	return &types.ScoreResult{
		MatchScore:           73.46,
		MatchedSkills:        []string{"python", "sql"},
		MissingSkills:        []string{"tableau"},
		NormalizedResumeText: "python and sql developer",
		Strategy:             "keyword",
	}
}

func TestHandleScoreAPI_Success(t *testing.T) {
	svc := &fakeScoreService{result: sampleResult()}
	h := newTestEngine(t, svc, 1<<20)

	pdf := testutil.BuildPDF("Python and SQL developer")
	body, contentType := createMultipartForm(t, pdf, "Looking for Python, SQL, Tableau")
	resp := postScore(h, "/api/v1/score", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got handler.ScoreResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, 73.46, got.Score)
	assert.Equal(t, "73.46%", got.ScoreText)
	assert.Equal(t, []string{"python", "sql"}, got.MatchedSkills)
	assert.Equal(t, "tableau", got.MissingSkillsText)
	assert.Equal(t, "python and sql developer", got.ResumePreview)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, got.RequestID, resp.Header().Get(constants.RequestIDHeader))

	assert.Equal(t, pdf, svc.gotPDF)
	assert.Equal(t, "resume.pdf", svc.gotName)
	assert.Equal(t, "Looking for Python, SQL, Tableau", svc.gotJob)
}

func TestHandleScoreAPI_KeepsClientRequestID(t *testing.T) {
	h := newTestEngine(t, &fakeScoreService{result: sampleResult()}, 1<<20)
	body, contentType := createMultipartForm(t, testutil.BuildPDF("python"), "python")

	resp := postScore(h, "/api/v1/score", body, contentType, ut.Header{Key: constants.RequestIDHeader, Value: "req-42"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "req-42", resp.Header().Get(constants.RequestIDHeader))
}

func TestHandleScoreAPI_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		file       []byte
		maxUpload  int
		wantStatus int
	}{
		{"缺少文件", nil, 1 << 20, http.StatusBadRequest},
		{"不是PDF", []byte("PK\x03\x04 not a pdf"), 1 << 20, http.StatusBadRequest},
		{"超过大小上限", testutil.BuildPDF("python"), 16, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeScoreService{result: sampleResult()}
			h := newTestEngine(t, svc, tt.maxUpload)
			body, contentType := createMultipartForm(t, tt.file, "python")

			resp := postScore(h, "/api/v1/score", body, contentType)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Nil(t, svc.gotPDF, "校验失败时不调用评分服务")

			var payload map[string]string
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
			assert.NotEmpty(t, payload["request_id"])
		})
	}
}

func TestHandleScoreAPI_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"抽取失败", processor.NewExtractionError("score", "简历规范化后为空"), http.StatusUnprocessableEntity},
		{"模型不可用", processor.NewModelUnavailableError("embed", errors.New("timeout")), http.StatusInternalServerError},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestEngine(t, &fakeScoreService{err: tt.err}, 1<<20)
			body, contentType := createMultipartForm(t, testutil.BuildPDF(""), "python")

			resp := postScore(h, "/api/v1/score", body, contentType)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.NotContains(t, resp.Body.String(), "timeout", "内部错误细节不返回给客户端")
		})
	}
}

func TestHandleScoreForm_RendersResult(t *testing.T) {
	h := newTestEngine(t, &fakeScoreService{result: &types.ScoreResult{
		MatchScore:           12.5,
		MatchedSkills:        []string{},
		MissingSkills:        []string{"tableau"},
		NormalizedResumeText: "gardener",
	}}, 1<<20)
	body, contentType := createMultipartForm(t, testutil.BuildPDF("gardener"), "tableau")

	resp := postScore(h, "/score", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code)
	html := resp.Body.String()
	assert.Contains(t, html, "Match Score: 12.5%")
	assert.Contains(t, html, constants.NoMatchedSkillsMessage)
	assert.Contains(t, html, "tableau")
	assert.Contains(t, html, "gardener")
}

func TestHandleScoreForm_ShowsErrorOnForm(t *testing.T) {
	h := newTestEngine(t, &fakeScoreService{}, 1<<20)
	body, contentType := createMultipartForm(t, []byte("hello"), "<script>alert(1)</script>")

	resp := postScore(h, "/score", body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	html := resp.Body.String()
	assert.Contains(t, html, "ATS Resume Score Checker")
	assert.NotContains(t, html, "<script>alert(1)</script>", "模板转义用户输入")
}

func TestHandleIndexSkillsHealth(t *testing.T) {
	h := newTestEngine(t, &fakeScoreService{}, 1<<20)

	resp := ut.PerformRequest(h.Engine, "GET", "/", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `name="resume"`)
	assert.Contains(t, resp.Body.String(), `name="job_description"`)

	resp = ut.PerformRequest(h.Engine, "GET", "/api/v1/skills", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var skills handler.SkillsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &skills))
	assert.Equal(t, "keyword", skills.Strategy)
	assert.Equal(t, constants.SkillVocabulary, skills.Vocabulary)

	resp = ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	svc := &fakeScoreService{result: sampleResult()}
	h := newTestEngine(t, svc, 1<<20, handler.WithMetrics(metrics.New()))

	body, contentType := createMultipartForm(t, testutil.BuildPDF("python"), "python")
	require.Equal(t, http.StatusOK, postScore(h, "/api/v1/score", body, contentType).Code)
	body, contentType = createMultipartForm(t, []byte("not a pdf"), "python")
	require.Equal(t, http.StatusBadRequest, postScore(h, "/api/v1/score", body, contentType).Code)

	resp := ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	text := resp.Body.String()
	assert.Contains(t, text, `ats_match_score_count{strategy="keyword"} 1`)
	assert.Contains(t, text, `ats_score_errors_total{kind="invalid_input"} 1`)
	assert.Contains(t, text, `http_requests_total{method="POST",path="/api/v1/score",status_code="200"} 1`)
}

func TestMetricsDisabledByDefault(t *testing.T) {
	h := newTestEngine(t, &fakeScoreService{}, 1<<20)
	resp := ut.PerformRequest(h.Engine, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

// 使用真实的评分服务走完整链路: PDF 解析, 技能抽取和哈希向量相似度
func TestHandleScoreAPI_EndToEnd(t *testing.T) {
	svc, err := processor.NewScoringService(context.Background(), config.OfflineConfig())
	require.NoError(t, err)
	h := newTestEngine(t, svc, 1<<20)

	body, contentType := createMultipartForm(t, testutil.BuildPDF("Experienced Python and SQL developer"), "Looking for Python, SQL, Tableau")
	resp := postScore(h, "/api/v1/score", body, contentType)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var got handler.ScoreResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, []string{"python", "sql"}, got.MatchedSkills)
	assert.Equal(t, []string{"tableau"}, got.MissingSkills)
	assert.GreaterOrEqual(t, got.Score, 0.0)
	assert.LessOrEqual(t, got.Score, 100.0)
	assert.Equal(t, "keyword", got.Strategy)

	// 只有图片的 PDF 提取不到文本
	body, contentType = createMultipartForm(t, testutil.BuildPDF(""), "python")
	resp = postScore(h, "/api/v1/score", body, contentType)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
