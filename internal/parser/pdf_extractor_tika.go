package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// TikaPDFExtractor 基于 Apache Tika 服务的 PDF 解析器
// 请求 XHTML 输出, 按 <div class="page"> 拆页后与 Eino 解析器一样按页拼接
type TikaPDFExtractor struct {
	serverURL string
	client    *http.Client
	logger    *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.logger = logger
	}
}

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		if timeout > 0 {
			e.client.Timeout = timeout
		}
	}
}

// WithTikaHTTPClient 替换HTTP客户端
func WithTikaHTTPClient(client *http.Client) TikaOption {
	return func(e *TikaPDFExtractor) {
		if client != nil {
			e.client = client
		}
	}
}

// NewTikaPDFExtractor 创建一个新的Tika PDF解析器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) (*TikaPDFExtractor, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("tika server url 不能为空")
	}
	extractor := &TikaPDFExtractor{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *TikaPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF文件失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, filePath)
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri)
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/html")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", nil, fmt.Errorf("tika服务器返回错误状态码: %d, %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	pages, err := tikaPages(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("解析Tika响应失败: %w", err)
	}
	text, empty := joinPageTexts(pages)

	metadata := map[string]interface{}{
		"source_uri":             uri,
		"page_count":             len(pages),
		"empty_pages":            empty,
		"text_length":            len(text),
		"processing_duration_ms": time.Since(startTime).Milliseconds(),
	}
	e.logger.Printf("PDF文本提取完成: %d 页 (%d 页无文本), %d 字符, 用时 %v", len(pages), empty, len(text), time.Since(startTime))
	return text, metadata, nil
}

// tikaPages 从 Tika 的 XHTML 输出中按页取出文本
// 没有分页标记时整个 body 视为一页
func tikaPages(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var pages []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "page") {
			pages = append(pages, nodeText(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(pages) == 0 {
		if body := findElement(doc, "body"); body != nil {
			pages = append(pages, nodeText(body))
		}
	}
	return pages, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// nodeText 拼接节点下的全部文本, 段落之间补一个换行
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "br" || n.Data == "li") {
			sb.WriteByte('\n')
		}
	}
	walk(n)
	return sb.String()
}
