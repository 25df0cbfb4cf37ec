package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 逐页提取文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *log.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = logger
	}
}

// WithEinoTimeout 配置单次解析超时
func WithEinoTimeout(timeout time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 按页解析, 由 ExtractTextFromReader 按页序拼接并跳过无文本的页
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  log.New(os.Stderr, "[PDF解析器] ", log.LstdFlags),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		e.logger.Printf("PDF文件大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	return e.ExtractTextFromReader(ctx, file, filePath)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri)
}

// ExtractTextFromReader 从 io.Reader 中提取文本
// 返回: 按页序拼接的文本, 元数据 (page_count, empty_pages, text_length, processing_duration_ms), 错误
// 整份文档没有可提取文本时返回空串且不报错, 是否视为失败由调用方决定
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	extraMeta := map[string]interface{}{
		"source_uri": uri,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("从Reader提取PDF失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", nil, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}

	fullContent, emptyPages := joinPages(docs)

	metadata := make(map[string]interface{}, len(extraMeta)+4)
	for k, v := range extraMeta {
		metadata[k] = v
	}
	metadata["page_count"] = len(docs)
	metadata["empty_pages"] = emptyPages
	metadata["text_length"] = len(fullContent)
	metadata["processing_duration_ms"] = duration.Milliseconds()

	if emptyPages > 0 {
		e.logger.Printf("跳过 %d/%d 个无文本页面 (URI: %s)", emptyPages, len(docs), uri)
	}
	e.logger.Printf("PDF提取完成: %d 页, %d 个字符 (用时 %.2f秒)", len(docs), len(fullContent), duration.Seconds())
	return fullContent, metadata, nil
}

// joinPages 按页序拼接页面文本, 只含空白的页不参与拼接
func joinPages(pages []*schema.Document) (string, int) {
	texts := make([]string, len(pages))
	for i, page := range pages {
		if page != nil {
			texts[i] = page.Content
		}
	}
	return joinPageTexts(texts)
}

// joinPageTexts 按页序拼接文本, 只含空白的页不参与拼接, 返回拼接结果和空页数量
func joinPageTexts(pages []string) (string, int) {
	var sb strings.Builder
	empty := 0
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			empty++
			continue
		}
		sb.WriteString(page)
	}
	return sb.String(), empty
}
