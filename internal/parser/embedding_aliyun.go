package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"ats-score-go/internal/config"

	"github.com/cloudwego/eino/components/embedding"
)

// AliyunEmbedder 通过 OpenAI 兼容的 /embeddings 接口生成句向量
// 实现 cloudwego/eino embedding.Embedder 接口
type AliyunEmbedder struct {
	apiKey     string
	model      string
	dimensions int
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

// AliyunOption AliyunEmbedder 的可选配置
type AliyunOption func(*AliyunEmbedder)

// WithAliyunLogger 配置日志记录器
func WithAliyunLogger(logger *log.Logger) AliyunOption {
	return func(a *AliyunEmbedder) {
		a.logger = logger
	}
}

// WithAliyunHTTPClient 替换默认 HTTP 客户端
func WithAliyunHTTPClient(client *http.Client) AliyunOption {
	return func(a *AliyunEmbedder) {
		a.httpClient = client
	}
}

// NewAliyunEmbedder 创建新的 Embedder
func NewAliyunEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig, opts ...AliyunOption) (*AliyunEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-v3"
	}
	baseURL := embeddingCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/embeddings"
	}
	timeout := time.Duration(embeddingCfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	embedder := &AliyunEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: embeddingCfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     log.New(os.Stderr, "[AliyunEmbedder] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(embedder)
	}
	return embedder, nil
}

// GetDimensions 返回嵌入器配置的维度
func (a *AliyunEmbedder) GetDimensions() int {
	return a.dimensions
}

// Model 返回默认模型名, 用于缓存键的版本区分
func (a *AliyunEmbedder) Model() string {
	return a.model
}

// AliyunOpenAIEmbeddingRequest 请求结构 (OpenAI compatible)
type AliyunOpenAIEmbeddingRequest struct {
	Input          interface{} `json:"input"` // string or []string
	Model          string      `json:"model"`
	Dimensions     int         `json:"dimensions,omitempty"`
	EncodingFormat string      `json:"encoding_format,omitempty"`
}

// AliyunOpenAIEmbeddingResponse 响应结构 (OpenAI compatible)
type AliyunOpenAIEmbeddingResponse struct {
	Object string                  `json:"object"`
	Data   []AliyunOpenAIDataEntry `json:"data"`
	Model  string                  `json:"model"`
	Usage  AliyunOpenAIUsage       `json:"usage"`
	ID     string                  `json:"id,omitempty"`
	Error  *AliyunOpenAIError      `json:"error,omitempty"`
}

// AliyunOpenAIDataEntry part of the response
type AliyunOpenAIDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// AliyunOpenAIUsage part of the response
type AliyunOpenAIUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// AliyunOpenAIError for API-level errors returned with 200 OK
type AliyunOpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本转换为向量, 结果与输入顺序一一对应
func (a *AliyunEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := embedding.GetCommonOptions(&embedding.Options{}, opts...)
	effectiveModel := a.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	var inputBody interface{}
	if len(texts) == 1 {
		inputBody = texts[0]
	} else {
		inputBody = texts
	}
	reqBody := AliyunOpenAIEmbeddingRequest{
		Input:          inputBody,
		Model:          effectiveModel,
		Dimensions:     a.dimensions,
		EncodingFormat: "float",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var wrapped struct {
			Error *AliyunOpenAIError `json:"error"`
		}
		if json.Unmarshal(body, &wrapped) == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
			return nil, fmt.Errorf("API调用失败, 状态码: %d, 类型: %s, 错误: %s, Code: %s",
				resp.StatusCode, wrapped.Error.Type, wrapped.Error.Message, wrapped.Error.Code)
		}
		return nil, fmt.Errorf("API调用失败, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsedResp AliyunOpenAIEmbeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("解析响应JSON失败: %w", err)
	}
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("API返回错误: 类型=%s, 消息='%s', Code=%s",
			parsedResp.Error.Type, parsedResp.Error.Message, parsedResp.Error.Code)
	}
	if len(parsedResp.Data) != len(texts) {
		return nil, fmt.Errorf("API返回向量数量不匹配: 期望 %d, 实际 %d", len(texts), len(parsedResp.Data))
	}

	sort.SliceStable(parsedResp.Data, func(i, j int) bool {
		return parsedResp.Data[i].Index < parsedResp.Data[j].Index
	})
	outputEmbeddings := make([][]float64, len(parsedResp.Data))
	for i, dataEntry := range parsedResp.Data {
		if len(dataEntry.Embedding) == 0 {
			return nil, fmt.Errorf("API返回第 %d 个向量为空", dataEntry.Index)
		}
		outputEmbeddings[i] = dataEntry.Embedding
	}

	a.logger.Printf("embedded %d texts with %s in %s, dim=%d, tokens=%d, first=%s",
		len(texts), effectiveModel, time.Since(start), len(outputEmbeddings[0]),
		parsedResp.Usage.TotalTokens, truncateEmbedding(outputEmbeddings[0]))
	return outputEmbeddings, nil
}

// truncateEmbedding 截断嵌入向量的字符串表示形式
func truncateEmbedding(vector []float64) string {
	const maxLen = 6
	const showEachSide = 3

	if len(vector) <= maxLen {
		return fmt.Sprintf("%v", vector)
	}

	var truncated []string
	for i := 0; i < showEachSide; i++ {
		truncated = append(truncated, fmt.Sprintf("%.4f", vector[i]))
	}
	truncated = append(truncated, "...")
	for i := len(vector) - showEachSide; i < len(vector); i++ {
		truncated = append(truncated, fmt.Sprintf("%.4f", vector[i]))
	}
	return fmt.Sprintf("[%s]", strings.Join(truncated, ", "))
}
