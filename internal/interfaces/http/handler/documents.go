package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"ali-assistant-api/internal/domain/document"
	"ali-assistant-api/internal/interfaces/http/dto"
	pkgerrors "ali-assistant-api/pkg/errors"
)

// Ingestor 文档摄取接口
type Ingestor interface {
	IngestBytes(ctx context.Context, filename string, data []byte) (int, error)
}

// IndexAdmin 向量索引管理接口
type IndexAdmin interface {
	Search(ctx context.Context, query string, topK int) ([]document.Chunk, error)
	Clear(ctx context.Context) error
}

// DocumentHandler 文档摄取与索引管理处理器
type DocumentHandler struct {
	ingestor       Ingestor
	index          IndexAdmin
	maxUploadBytes int64
	defaultTopK    int
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(ingestor Ingestor, index IndexAdmin, maxUploadBytes int64, defaultTopK int) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	if defaultTopK <= 0 {
		defaultTopK = 100
	}
	return &DocumentHandler{
		ingestor:       ingestor,
		index:          index,
		maxUploadBytes: maxUploadBytes,
		defaultTopK:    defaultTopK,
	}
}

// Upload 上传并摄取文档
// POST /v1/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "file is required").WithError(err))
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "file too large"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "failed to open file").WithError(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeIngestFailed, "failed to read file").WithError(err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "file too large"))
		return
	}

	chunks, err := h.ingestor.IngestBytes(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	dto.Created(c, dto.IngestResponse{File: fileHeader.Filename, Chunks: chunks})
}

// Clear 清空向量索引
// DELETE /v1/documents
func (h *DocumentHandler) Clear(c *gin.Context) {
	if err := h.index.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	dto.NoContent(c)
}

// Search 直接检索向量索引，用于调试召回质量
// POST /v1/retrieval/search
func (h *DocumentHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, pkgerrors.New(pkgerrors.CodeInvalidParam, "invalid request body").WithError(err))
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = h.defaultTopK
	}

	chunks, err := h.index.Search(c.Request.Context(), req.Query, topK)
	if err != nil {
		respondError(c, err)
		return
	}

	hits := make([]dto.SearchHit, 0, len(chunks))
	for _, ch := range chunks {
		hits = append(hits, dto.SearchHit{
			Source:  ch.Metadata[document.MetaSource],
			Title:   ch.Metadata[document.MetaTitle],
			Content: ch.Content,
		})
	}

	dto.Success(c, dto.SearchResponse{Hits: hits})
}
