package index

import "errors"

var (
	// ErrIndexDisabled 表示向量索引能力未配置（Milvus 或 Embedder 不可用）。
	ErrIndexDisabled = errors.New("vector index is disabled")
)
