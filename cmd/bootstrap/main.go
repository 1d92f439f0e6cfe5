// Package main 初始化向量索引：批量摄取本地知识库目录
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ali-assistant-api/internal/application/index"
	"ali-assistant-api/internal/application/ingest"
	"ali-assistant-api/internal/config"
	"ali-assistant-api/internal/infrastructure/embedding"
	"ali-assistant-api/internal/infrastructure/persistence/milvus"
	"ali-assistant-api/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	var (
		dataDir = flag.String("data", "", "directory of documents to ingest (defaults to ingest.data_dir)")
		clear   = flag.Bool("clear", false, "drop the existing collection before ingesting")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)

	dir := *dataDir
	if dir == "" {
		dir = cfg.Ingest.DataDir
	}

	// 摄取走管理路径，Milvus 是硬依赖
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to milvus", err)
	}
	defer milvusClient.Close()

	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}

	repo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
	store := index.NewStore(embedder, milvus.NewIndexVectorRepository(repo), cfg.Embedding.BatchSize)

	if *clear {
		log.Info("clearing existing collection")
		if err := store.Clear(ctx); err != nil {
			logger.Fatal(ctx, "failed to clear collection", err)
		}
	}

	svc := ingest.NewService(store, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

	files, chunks, err := svc.IngestDirectory(ctx, dir)
	if err != nil {
		logger.Fatal(ctx, "ingest failed", err)
	}

	log.Info("bootstrap complete", "dir", dir, "files", files, "chunks", chunks)
}
