// Package document 定义文档分块的领域类型
package document

import (
	"path/filepath"
	"strings"
)

// 元数据键
const (
	MetaSource = "source"
	MetaTitle  = "title"
)

// Chunk 文本分块，检索与生成的最小上下文单元
type Chunk struct {
	Content  string
	Metadata map[string]string
}

// NewChunk 创建分块，元数据为 nil 时初始化为空表
func NewChunk(content string, metadata map[string]string) Chunk {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Chunk{Content: content, Metadata: metadata}
}

// Source 返回分块来源，未知时为空串
func (c Chunk) Source() string {
	return c.Metadata[MetaSource]
}

// Type 文档类型（封闭集合）
type Type int

const (
	TypeUnknown Type = iota
	TypePDF
	TypePlainText
	TypeWord
	TypeHTML
	TypeMarkdown
)

// String 实现 fmt.Stringer
func (t Type) String() string {
	switch t {
	case TypePDF:
		return "pdf"
	case TypePlainText:
		return "text"
	case TypeWord:
		return "word"
	case TypeHTML:
		return "html"
	case TypeMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// extTypes 扩展名到文档类型的映射表
var extTypes = map[string]Type{
	".pdf":      TypePDF,
	".txt":      TypePlainText,
	".docx":     TypeWord,
	".html":     TypeHTML,
	".htm":      TypeHTML,
	".md":       TypeMarkdown,
	".markdown": TypeMarkdown,
}

// TypeForPath 按扩展名判定文档类型，无法识别时返回 TypeUnknown
func TypeForPath(path string) Type {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extTypes[ext]; ok {
		return t
	}
	return TypeUnknown
}
