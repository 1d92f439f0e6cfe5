package milvus

import (
	"context"

	"ali-assistant-api/internal/application/index"
)

// IndexVectorRepository 将 Repository 适配为应用层 index.VectorRepository port
type IndexVectorRepository struct {
	repo *Repository
}

func NewIndexVectorRepository(repo *Repository) *IndexVectorRepository {
	return &IndexVectorRepository{repo: repo}
}

var _ index.VectorRepository = (*IndexVectorRepository)(nil)

func (r *IndexVectorRepository) EnsurePersonaChunks(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return index.ErrIndexDisabled
	}
	return r.repo.EnsurePersonaChunks(ctx)
}

func (r *IndexVectorRepository) SearchChunks(ctx context.Context, queryVector []float32, topK int) ([]*index.VectorHit, error) {
	if r == nil || r.repo == nil {
		return nil, index.ErrIndexDisabled
	}

	out, err := r.repo.SearchChunks(ctx, queryVector, topK)
	if err != nil {
		return nil, err
	}

	hits := make([]*index.VectorHit, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		hits = append(hits, &index.VectorHit{
			ID:     v.ID,
			Score:  v.Score,
			Source: v.Source,
			Title:  v.Title,
			Text:   v.TextContent,
		})
	}
	return hits, nil
}

func (r *IndexVectorRepository) InsertChunks(ctx context.Context, records []*index.VectorRecord) error {
	if r == nil || r.repo == nil {
		return index.ErrIndexDisabled
	}
	if len(records) == 0 {
		return nil
	}

	out := make([]*ChunkRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		if rec == nil {
			continue
		}
		out = append(out, &ChunkRecord{
			ID:          rec.ID,
			Vector:      rec.Vector,
			Source:      rec.Source,
			Title:       rec.Title,
			TextContent: rec.Text,
		})
	}
	return r.repo.InsertChunks(ctx, out)
}

func (r *IndexVectorRepository) DropChunks(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return index.ErrIndexDisabled
	}
	return r.repo.DropChunks(ctx)
}
