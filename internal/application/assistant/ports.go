package assistant

import (
	"context"

	"ali-assistant-api/internal/domain/document"
)

// Generator 应用层对文本生成能力的最小依赖（port）
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextSearcher 应用层对向量检索能力的最小依赖（port）
type ContextSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]document.Chunk, error)
}

// WebRetriever 应用层对联网检索能力的最小依赖（port）
type WebRetriever interface {
	Retrieve(ctx context.Context, query string) []document.Chunk
}
