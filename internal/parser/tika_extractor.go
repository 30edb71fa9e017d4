package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/tracing"
)

// Tika是独立进程，调用链在这里跨服务边界
var tikaTracer = otel.Tracer("resume-match-go/parser/tika")

// TikaDocumentExtractor 基于Apache Tika服务器的文档提取器。
// 提取工作交给独立的Tika进程，适合需要OCR或覆盖更多办公格式的部署，
// 与进程内的 LocalDocumentExtractor 二选一，由配置决定。
type TikaDocumentExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取PDF链接注释文本
	extractAnnotations bool
	// 日志记录
	logger *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaDocumentExtractor)

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaDocumentExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaDocumentExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaDocumentExtractor) {
		e.Client.Timeout = timeout
	}
}

// 确保TikaDocumentExtractor实现了DocumentExtractor接口
var _ DocumentExtractor = (*TikaDocumentExtractor)(nil)

// NewTikaDocumentExtractor 创建一个新的Tika文档提取器
func NewTikaDocumentExtractor(serverURL string, options ...TikaOption) *TikaDocumentExtractor {
	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	extractor := &TikaDocumentExtractor{
		ServerURL:          serverURL,
		Client:             client,
		extractAnnotations: true, // 默认提取注释文本
		logger:             log.New(os.Stderr, "[TikaDoc] ", log.LstdFlags),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor
}

// ExtractFromFile 从本地文件提取纯文本
func (e *TikaDocumentExtractor) ExtractFromFile(ctx context.Context, path string) (string, error) {
	startTime := time.Now()
	e.logger.Printf("开始处理文档文件: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开文档 %s 失败: %w", path, err)
	}
	defer file.Close()

	// 获取文件大小，用于日志记录
	if fileInfo, statErr := file.Stat(); statErr == nil {
		e.logger.Printf("文档大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	text, err := e.ExtractFromReader(ctx, file, filepath.Base(path))

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("文档处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", err
	}

	e.logger.Printf("文档处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, nil
}

// ExtractFromReader 从io.Reader提取纯文本
func (e *TikaDocumentExtractor) ExtractFromReader(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("读取文档内容失败: %w", err)
	}
	return e.ExtractFromBytes(ctx, data, filename)
}

// ExtractFromBytes 把文档内容发送到Tika服务器的 /tika 端点并取回纯文本
func (e *TikaDocumentExtractor) ExtractFromBytes(ctx context.Context, data []byte, filename string) (string, error) {
	startTime := time.Now()

	ctx, span := tikaTracer.Start(ctx, "Tika.Extract",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("document.filename", filename),
			attribute.Int("http.request.body.size", len(data)),
		))
	defer span.End()

	url := fmt.Sprintf("%s/tika", e.ServerURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	req.Header.Set("Content-Type", tikaContentType(filename))
	req.Header.Set("Accept", "text/plain")
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filename)
	}
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	// 注入trace context
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := e.Client.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return "", fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
		tracing.RecordHTTPError(span, err, resp.StatusCode)
		return "", err
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeParser)
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}

	span.SetAttributes(attribute.Int("document.text_length", len(textBytes)))
	span.SetStatus(codes.Ok, "")

	e.logger.Printf("Tika提取完成: %d 个字符 (用时 %.2f秒)", len(textBytes), time.Since(startTime).Seconds())
	return string(textBytes), nil
}

// tikaContentType 根据扩展名给出Content-Type，未知格式交给Tika自行嗅探
func tikaContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".doc":
		return "application/msword"
	case ".txt", ".text", ".md":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
