package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"ali-assistant-api/internal/domain/document"
	"ali-assistant-api/internal/infrastructure/webfetch"
	pkgerrors "ali-assistant-api/pkg/errors"
)

type extractFunc func(data []byte) (string, error)

// extractors 按文档类型分派的正文提取表
var extractors = map[document.Type]extractFunc{
	document.TypePlainText: extractPlainText,
	document.TypeMarkdown:  extractPlainText,
	document.TypeHTML:      extractHTML,
	document.TypePDF:       extractPDF,
	document.TypeWord:      extractWord,
}

// ExtractText 按文档类型提取纯文本，未知类型返回带码错误
func ExtractText(data []byte, t document.Type) (string, error) {
	fn, ok := extractors[t]
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeUnsupportedDocument,
			fmt.Sprintf("unsupported document type: %s", t))
	}
	text, err := fn(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func extractPlainText(data []byte) (string, error) {
	return string(data), nil
}

func extractHTML(data []byte) (string, error) {
	return webfetch.ExtractText(string(data))
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// extractWord 解包 docx（zip），从 word/document.xml 中收集 w:t 文本，按段落换行
func extractWord(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open docx document: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	defer docXML.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(docXML)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse docx document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
