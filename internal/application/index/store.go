// Package index 提供语料向量索引的应用服务
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"ali-assistant-api/internal/domain/document"
	pkgerrors "ali-assistant-api/pkg/errors"
	"ali-assistant-api/pkg/logger"
)

const defaultEmbeddingBatch = 16

// Store 语料向量索引服务。
// 检索路径对存储故障做降级（返回空结果），嵌入故障按错误上抛；
// 写入路径（摄取/清空）不降级，失败即报错。
type Store struct {
	embedder embedding.Embedder
	vector   VectorRepository

	embeddingBatchSize int
}

// NewStore 创建索引服务
func NewStore(embedder embedding.Embedder, vectorRepo VectorRepository, embeddingBatchSize int) *Store {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Store{
		embedder:           embedder,
		vector:             vectorRepo,
		embeddingBatchSize: bs,
	}
}

// Enabled 索引能力是否可用
func (s *Store) Enabled() bool {
	return s != nil && s.embedder != nil && s.vector != nil
}

// Ready 确保集合可用；集合不存在时创建，不做破坏性操作
func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.vector == nil {
		return ErrIndexDisabled
	}
	return s.vector.EnsurePersonaChunks(ctx)
}

// Search 按查询文本检索语料分块，结果按相似度降序。
// 集合缺失、为空或不可达时返回空结果而非错误；嵌入失败返回带码错误。
func (s *Store) Search(ctx context.Context, query string, topK int) ([]document.Chunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidParam, "query is required")
	}
	if topK <= 0 {
		topK = 10
	}

	if !s.Enabled() {
		logger.Debug(ctx, "vector index disabled, returning empty result")
		return []document.Chunk{}, nil
	}

	vec, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.CodeEmbeddingFailed, "failed to embed query")
	}

	if err := s.vector.EnsurePersonaChunks(ctx); err != nil {
		logger.Warn(ctx, "vector index unavailable, returning empty result", "error", err.Error())
		return []document.Chunk{}, nil
	}

	hits, err := s.vector.SearchChunks(ctx, vec, topK)
	if err != nil {
		logger.Warn(ctx, "vector search failed, returning empty result", "error", err.Error())
		return []document.Chunk{}, nil
	}

	chunks := make([]document.Chunk, 0, len(hits))
	for _, h := range hits {
		if h == nil || strings.TrimSpace(h.Text) == "" {
			continue
		}
		chunks = append(chunks, document.NewChunk(h.Text, map[string]string{
			document.MetaSource: h.Source,
			document.MetaTitle:  h.Title,
		}))
	}
	return chunks, nil
}

// Insert 将分块写入索引：嵌入（按批）、确保集合、插入并刷盘
func (s *Store) Insert(ctx context.Context, chunks []document.Chunk) error {
	if !s.Enabled() {
		return pkgerrors.Wrap(ErrIndexDisabled, pkgerrors.CodeVectorDBError, "vector index not configured")
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, 0, len(chunks))
	records := make([]*VectorRecord, 0, len(chunks))
	for _, c := range chunks {
		text := strings.TrimSpace(c.Content)
		if text == "" {
			continue
		}
		texts = append(texts, text)
		records = append(records, &VectorRecord{
			ID:     uuid.NewString(),
			Source: c.Metadata[document.MetaSource],
			Title:  c.Metadata[document.MetaTitle],
			Text:   text,
		})
	}
	if len(records) == 0 {
		return nil
	}

	vectors, err := s.embedBatch(ctx, texts)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeEmbeddingFailed, "failed to embed chunks")
	}
	for i := range records {
		records[i].Vector = vectors[i]
	}

	if err := s.vector.EnsurePersonaChunks(ctx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeVectorDBError, "failed to ensure collection")
	}
	if err := s.vector.InsertChunks(ctx, records); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeVectorDBError, "failed to insert chunks")
	}
	return nil
}

// Clear 清空索引；之后的检索表现为空索引
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.vector == nil {
		return pkgerrors.Wrap(ErrIndexDisabled, pkgerrors.CodeVectorDBError, "vector index not configured")
	}
	if err := s.vector.DropChunks(ctx); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeVectorDBError, "failed to clear index")
	}
	return nil
}

func (s *Store) embedQuery(ctx context.Context, query string) ([]float32, error) {
	v64, err := s.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}

func (s *Store) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.embeddingBatchSize {
		end := start + s.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := s.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(v64) != end-start {
			return nil, fmt.Errorf("embedding result count mismatch: got %d, want %d", len(v64), end-start)
		}
		for _, vec := range v64 {
			v32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				v32 = append(v32, float32(x))
			}
			out = append(out, v32)
		}
	}
	return out, nil
}
