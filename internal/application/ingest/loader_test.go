package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ali-assistant-api/internal/domain/document"
	pkgerrors "ali-assistant-api/pkg/errors"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText([]byte("  hello world \n"), document.TypePlainText)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractTextMarkdown(t *testing.T) {
	text, err := ExtractText([]byte("# Title\n\nBody"), document.TypeMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", text)
}

func TestExtractTextHTML(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>.a{}</style></head>
<body><h1>Title</h1><p>First   paragraph</p><p>Second</p></body></html>`

	text, err := ExtractText([]byte(html), document.TypeHTML)
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "First paragraph")
	assert.Contains(t, text, "Second")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, ".a{}")
}

func TestExtractTextUnknownType(t *testing.T) {
	_, err := ExtractText([]byte("data"), document.TypeUnknown)
	require.Error(t, err)

	require.True(t, pkgerrors.IsAppError(err))
	appErr := pkgerrors.AsAppError(err)
	assert.Equal(t, pkgerrors.CodeUnsupportedDocument, appErr.Code)
}

func TestExtractTextWord(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(docXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := ExtractText(buf.Bytes(), document.TypeWord)
	require.NoError(t, err)

	assert.Contains(t, text, "First paragraph")
	assert.Contains(t, text, "Second paragraph")
	// 段落以换行分隔
	assert.Contains(t, text, "First paragraph\nSecond paragraph")
}

func TestExtractTextWordInvalid(t *testing.T) {
	_, err := ExtractText([]byte("not a zip"), document.TypeWord)
	require.Error(t, err)
}

func TestExtractTextPDFInvalid(t *testing.T) {
	_, err := ExtractText([]byte("not a pdf"), document.TypePDF)
	require.Error(t, err)
}
