// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionPersonaChunks 人设语料分块集合
	CollectionPersonaChunks = "persona_chunks"

	// DefaultVectorDimension 默认向量维度
	DefaultVectorDimension = 1024
)

// PersonaChunksSchema 语料分块 Collection Schema
func PersonaChunksSchema(dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &entity.Schema{
		CollectionName: CollectionPersonaChunks,
		Description:    "Persona corpus chunks for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// ChunkRecord 语料分块数据结构
type ChunkRecord struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	TextContent string    `json:"text_content"`
}
