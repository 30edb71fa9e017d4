package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDetectFormat 测试扩展名识别与魔数嗅探回退
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		data     []byte
		want     string
	}{
		{"resume.txt", nil, "txt"},
		{"resume.TEXT", nil, "txt"},
		{"notes.md", nil, "txt"},
		{"resume.pdf", nil, "pdf"},
		{"resume.docx", nil, "docx"},
		// 无扩展名时按魔数嗅探
		{"upload", []byte("%PDF-1.7 rest"), "pdf"},
		{"upload", []byte("PK\x03\x04zipdata"), "docx"},
		{"upload", []byte("plain words"), "txt"},
		{"upload", []byte{0xFF, 0xFE, 0x00}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectFormat(tt.filename, tt.data), tt.filename)
	}
}

// TestExtractPlainText 测试纯文本提取与 BOM 剥离
func TestExtractPlainText(t *testing.T) {
	e := NewLocalDocumentExtractor()
	ctx := context.Background()

	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hello resume")...)
	text, err := e.ExtractFromBytes(ctx, data, "resume.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello resume", text)

	// 空内容不报错
	text, err = e.ExtractFromBytes(ctx, nil, "resume.txt")
	require.NoError(t, err)
	assert.Empty(t, text)

	_, err = e.ExtractFromBytes(ctx, []byte{0xFF, 0xFE}, "resume.txt")
	assert.ErrorContains(t, err, "not valid UTF-8")
}

// TestExtractFromBytesGuards 测试大小上限、取消与不支持的格式
func TestExtractFromBytesGuards(t *testing.T) {
	t.Run("size limit", func(t *testing.T) {
		e := NewLocalDocumentExtractor(WithMaxSizeBytes(8))
		_, err := e.ExtractFromBytes(context.Background(), []byte("0123456789"), "big.txt")
		assert.ErrorContains(t, err, "exceeds size limit")
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewLocalDocumentExtractor().ExtractFromBytes(ctx, []byte("x"), "a.txt")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := NewLocalDocumentExtractor().ExtractFromBytes(context.Background(), []byte{0xFF, 0xFE, 0xFD}, "binary.bin")
		assert.ErrorContains(t, err, "unsupported document type")
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := NewLocalDocumentExtractor().ExtractFromBytes(context.Background(), []byte("junk data"), "broken.pdf")
		assert.ErrorContains(t, err, "failed to open pdf")
	})

	t.Run("corrupt docx", func(t *testing.T) {
		_, err := NewLocalDocumentExtractor().ExtractFromBytes(context.Background(), []byte("not a zip"), "broken.docx")
		assert.ErrorContains(t, err, "failed to open docx")
	})
}

// TestExtractFromReader 测试流式读取及其上限控制
func TestExtractFromReader(t *testing.T) {
	e := NewLocalDocumentExtractor()
	text, err := e.ExtractFromReader(context.Background(), strings.NewReader("line one\nline two"), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", text)

	limited := NewLocalDocumentExtractor(WithMaxSizeBytes(4))
	_, err = limited.ExtractFromReader(context.Background(), strings.NewReader("0123456789"), "big.txt")
	assert.ErrorContains(t, err, "exceeds size limit")
}

// TestExtractFromFile 测试本地文件读取
func TestExtractFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))

	text, err := NewLocalDocumentExtractor().ExtractFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "file body", text)

	_, err = NewLocalDocumentExtractor().ExtractFromFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "failed to read document")
}

// TestExtractDocxText 用内存构造的最小 docx 验证正文抽取与实体还原
func TestExtractDocxText(t *testing.T) {
	const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document><w:body>` +
		`<w:p><w:r><w:t>John &amp; Jane</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Engineer</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	text, err := NewLocalDocumentExtractor().ExtractFromBytes(context.Background(), buf.Bytes(), "resume.docx")
	require.NoError(t, err)
	assert.Equal(t, "John & Jane\nEngineer", text)
}
