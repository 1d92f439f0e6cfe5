// Package ingest 提供文档加载、切分与入库的应用服务
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ali-assistant-api/internal/domain/document"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/logger"
	"ali-assistant-api/pkg/metrics"
)

// Inserter 应用层对索引写入能力的最小依赖（port）
type Inserter interface {
	Insert(ctx context.Context, chunks []document.Chunk) error
}

// Service 文档摄取服务
type Service struct {
	splitter *Splitter
	inserter Inserter
}

func NewService(inserter Inserter, chunkSize, chunkOverlap int) *Service {
	return &Service{
		splitter: NewSplitter(chunkSize, chunkOverlap),
		inserter: inserter,
	}
}

// IngestBytes 摄取一份内存中的文档，按文件名判定类型，返回写入的分块数
func (s *Service) IngestBytes(ctx context.Context, filename string, data []byte) (int, error) {
	docType := document.TypeForPath(filename)
	if docType == document.TypeUnknown {
		metrics.IngestFilesTotal.WithLabelValues(docType.String(), "rejected").Inc()
		return 0, pkgerrors.New(pkgerrors.CodeUnsupportedDocument,
			fmt.Sprintf("unsupported file extension: %s", filepath.Ext(filename)))
	}

	text, err := ExtractText(data, docType)
	if err != nil {
		metrics.IngestFilesTotal.WithLabelValues(docType.String(), "error").Inc()
		if pkgerrors.IsAppError(err) {
			return 0, err
		}
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeIngestFailed, "failed to extract document text")
	}

	parts := s.splitter.Split(text)
	if len(parts) == 0 {
		logger.Info(ctx, "document has no text, nothing to ingest", "file", filename)
		metrics.IngestFilesTotal.WithLabelValues(docType.String(), "ok").Inc()
		return 0, nil
	}

	base := filepath.Base(filename)
	chunks := make([]document.Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, document.NewChunk(part, map[string]string{
			document.MetaSource: base,
			document.MetaTitle:  base,
		}))
	}

	if err := s.inserter.Insert(ctx, chunks); err != nil {
		metrics.IngestFilesTotal.WithLabelValues(docType.String(), "error").Inc()
		return 0, err
	}

	metrics.IngestFilesTotal.WithLabelValues(docType.String(), "ok").Inc()
	metrics.IngestChunksTotal.WithLabelValues(docType.String()).Add(float64(len(chunks)))
	logger.Info(ctx, "document ingested", "file", base, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestFile 摄取磁盘上的单个文档
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeFileNotFound,
			fmt.Sprintf("failed to read file: %s", path))
	}
	return s.IngestBytes(ctx, path, data)
}

// IngestDirectory 遍历目录摄取所有受支持的文档。
// 单个文件失败记录日志后跳过，不中断整体摄取。
func (s *Service) IngestDirectory(ctx context.Context, dir string) (files int, chunks int, err error) {
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if document.TypeForPath(path) == document.TypeUnknown {
			logger.Debug(ctx, "skipping unsupported file", "file", path)
			return nil
		}

		n, err := s.IngestFile(ctx, path)
		if err != nil {
			logger.Warn(ctx, "failed to ingest file, skipping", "file", path, "error", err.Error())
			return nil
		}
		files++
		chunks += n
		return nil
	})
	if walkErr != nil {
		return files, chunks, pkgerrors.Wrap(walkErr, pkgerrors.CodeIngestFailed,
			fmt.Sprintf("failed to walk directory: %s", dir))
	}
	return files, chunks, nil
}
