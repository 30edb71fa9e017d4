package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"
)

// DocumentExtractor 文档文本提取器接口 - 与processor包中定义相同
type DocumentExtractor interface {
	// ExtractFromFile 从本地文件提取纯文本
	ExtractFromFile(ctx context.Context, path string) (string, error)
	// ExtractFromReader 从数据流提取纯文本，filename 用于识别格式
	ExtractFromReader(ctx context.Context, r io.Reader, filename string) (string, error)
	// ExtractFromBytes 从字节切片提取纯文本
	ExtractFromBytes(ctx context.Context, data []byte, filename string) (string, error)
}

// 默认单文件大小上限
const defaultMaxDocumentSize = 20 << 20 // 20MB

var xmlTagRe = regexp.MustCompile(`<[^>]*>`)

// xml 实体还原，docx 正文抽取后使用
var xmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// LocalDocumentExtractor 进程内文档提取器。
// 按扩展名分发到对应格式的解析实现，扩展名缺失时回退到魔数嗅探：
//   - .txt  UTF-8 纯文本，剥离 BOM
//   - .pdf  逐页提取纯文本，跳过空页
//   - .docx 读取正文 XML 并剥离标签
type LocalDocumentExtractor struct {
	maxSizeBytes int64
	logger       zerolog.Logger
}

// DocumentOption 配置 LocalDocumentExtractor 的函数选项
type DocumentOption func(*LocalDocumentExtractor)

// WithMaxSizeBytes 设置单文件大小上限。
func WithMaxSizeBytes(n int64) DocumentOption {
	return func(e *LocalDocumentExtractor) {
		if n > 0 {
			e.maxSizeBytes = n
		}
	}
}

// WithExtractorLogger 设置提取器使用的日志记录器。
func WithExtractorLogger(logger zerolog.Logger) DocumentOption {
	return func(e *LocalDocumentExtractor) {
		e.logger = logger
	}
}

// NewLocalDocumentExtractor 创建进程内文档提取器。
func NewLocalDocumentExtractor(opts ...DocumentOption) *LocalDocumentExtractor {
	e := &LocalDocumentExtractor{
		maxSizeBytes: defaultMaxDocumentSize,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ DocumentExtractor = (*LocalDocumentExtractor)(nil)

// ExtractFromFile 从本地文件提取纯文本。
func (e *LocalDocumentExtractor) ExtractFromFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return e.ExtractFromBytes(ctx, data, filepath.Base(path))
}

// ExtractFromReader 从数据流提取纯文本。
func (e *LocalDocumentExtractor) ExtractFromReader(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxSizeBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read document stream: %w", err)
	}
	return e.ExtractFromBytes(ctx, data, filename)
}

// ExtractFromBytes 从字节切片提取纯文本。
func (e *LocalDocumentExtractor) ExtractFromBytes(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if int64(len(data)) > e.maxSizeBytes {
		return "", fmt.Errorf("document %s exceeds size limit of %d bytes", filename, e.maxSizeBytes)
	}
	if len(data) == 0 {
		return "", nil
	}

	format := detectFormat(filename, data)
	e.logger.Debug().
		Str("filename", filename).
		Str("format", format).
		Int("size", len(data)).
		Msg("开始提取文档文本")

	switch format {
	case "txt":
		return extractPlainText(data)
	case "pdf":
		return extractPDFText(data)
	case "docx":
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("unsupported document type for %s", filename)
	}
}

// detectFormat 根据扩展名识别格式，缺失时按魔数嗅探。
func detectFormat(filename string, data []byte) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md":
		return "txt"
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "pdf"
	}
	// docx 是 zip 容器
	if bytes.HasPrefix(data, []byte("PK")) {
		return "docx"
	}
	if utf8.Valid(data) {
		return "txt"
	}
	return ""
}

func extractPlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM
	if !utf8.Valid(data) {
		return "", fmt.Errorf("plain text document is not valid UTF-8")
	}
	return string(data), nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页失败不中断整份文档
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no extractable text in pdf")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}
	defer reader.Close()

	content := reader.Editable().GetContent()
	// 段落结束标签换为换行，再剥离其余标签
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = xmlTagRe.ReplaceAllString(content, "")
	content = xmlEntityReplacer.Replace(content)
	return strings.TrimSpace(content), nil
}
