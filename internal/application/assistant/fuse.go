package assistant

import "ali-assistant-api/internal/domain/document"

// Fuse 融合向量与联网上下文：向量结果在前，联网结果在后，
// 保留各自内部顺序，不去重、不重排。
func Fuse(vectorHits, webHits []document.Chunk) []document.Chunk {
	fused := make([]document.Chunk, 0, len(vectorHits)+len(webHits))
	fused = append(fused, vectorHits...)
	fused = append(fused, webHits...)
	return fused
}
