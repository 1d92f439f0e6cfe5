package index

import "context"

// VectorRepository 定义应用层对“向量存储/检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsurePersonaChunks(ctx context.Context) error
	SearchChunks(ctx context.Context, queryVector []float32, topK int) ([]*VectorHit, error)
	InsertChunks(ctx context.Context, records []*VectorRecord) error
	DropChunks(ctx context.Context) error
}

type VectorRecord struct {
	ID     string
	Vector []float32
	Source string
	Title  string
	Text   string
}

type VectorHit struct {
	ID     string
	Score  float32
	Source string
	Title  string
	Text   string
}
