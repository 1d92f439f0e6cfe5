// Package main 助手 API 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ali-assistant-api/internal/application/assistant"
	"ali-assistant-api/internal/application/index"
	"ali-assistant-api/internal/application/ingest"
	"ali-assistant-api/internal/application/webretrieval"
	"ali-assistant-api/internal/config"
	"ali-assistant-api/internal/infrastructure/embedding"
	"ali-assistant-api/internal/infrastructure/llm"
	"ali-assistant-api/internal/infrastructure/persistence/milvus"
	redisclient "ali-assistant-api/internal/infrastructure/persistence/redis"
	"ali-assistant-api/internal/infrastructure/voice"
	"ali-assistant-api/internal/infrastructure/webfetch"
	"ali-assistant-api/internal/infrastructure/websearch"
	"ali-assistant-api/internal/interfaces/http/handler"
	"ali-assistant-api/internal/interfaces/http/router"
	"ali-assistant-api/pkg/logger"
	"ali-assistant-api/pkg/tracer"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting assistant-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// Milvus 不可达时检索降级为空结果，不阻塞启动
	var milvusClient *milvus.Client
	if mc, err := milvus.NewClient(ctx, &cfg.Vector.Milvus); err != nil {
		log.Warn("milvus unavailable, vector retrieval degraded", "error", err)
	} else {
		milvusClient = mc
		defer milvusClient.Close()
	}

	// Redis 只服务限流与搜索缓存，失败降级
	var redisCli *redisclient.Client
	if rc, err := redisclient.NewClient(&cfg.Cache.Redis); err != nil {
		log.Warn("redis unavailable, rate limiting and search cache disabled", "error", err)
	} else {
		redisCli = rc
		defer redisCli.Close()
	}

	// Embedding 与 LLM 是问答的硬依赖
	embedder, err := embedding.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}

	llmFactory := llm.NewEinoFactory(cfg)
	gateway := llm.NewGateway(llmFactory, cfg.LLM.DefaultProvider)

	// 向量索引
	var vectorRepo *milvus.IndexVectorRepository
	if milvusClient != nil {
		repo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
		vectorRepo = milvus.NewIndexVectorRepository(repo)
	} else {
		vectorRepo = milvus.NewIndexVectorRepository(nil)
	}
	store := index.NewStore(embedder, vectorRepo, cfg.Embedding.BatchSize)

	// 文档摄取
	ingestSvc := ingest.NewService(store, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

	// 联网检索
	var searcher webretrieval.Searcher
	if cfg.WebSearch.Tavily.APIKey != "" {
		client := websearch.NewClient(&cfg.WebSearch.Tavily)
		if redisCli != nil {
			searcher = websearch.NewCachedSearcher(client, redisclient.NewCache(redisCli), 0)
		} else {
			searcher = client
		}
	} else {
		log.Warn("tavily api key not set, live web search disabled")
	}

	fetcher := webfetch.NewFetcher(cfg.WebSearch.FetchTimeout)
	splitter := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	retriever := webretrieval.NewRetriever(searcher, fetcher, splitter, webRetrievalOptions(cfg))

	// 问答管线
	pipeline := assistant.NewPipeline(gateway, store, retriever, cfg.Assistant.TopK, cfg.Assistant.MaxContextChunks)

	// 语音（可选）
	var transcriber handler.Transcriber
	var synthesizer handler.Synthesizer
	if cfg.Voice.APIKey != "" {
		vc := voice.NewClient(&cfg.Voice)
		transcriber = vc
		synthesizer = vc
	} else {
		log.Warn("voice api key not set, voice endpoints disabled")
	}

	// HTTP 层
	handlers := router.Handlers{
		Health:    handler.NewHealthHandler(redisCli, milvusClient),
		Assistant: handler.NewAssistantHandler(pipeline, synthesizer, cfg.Assistant.WebSearchDefault),
		Voice:     handler.NewVoiceHandler(transcriber, synthesizer),
		Document:  handler.NewDocumentHandler(ingestSvc, store, cfg.Ingest.MaxUploadBytes, cfg.Assistant.TopK),
	}

	var rawRedis *goredis.Client
	if redisCli != nil {
		rawRedis = redisCli.Redis()
	}
	r := router.New(cfg, handlers, rawRedis)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}

// webRetrievalOptions 组装联网检索配置，未配置时回退到内置默认
func webRetrievalOptions(cfg *config.Config) webretrieval.Options {
	triggers := cfg.WebSearch.TriggerKeywords
	if len(triggers) == 0 {
		triggers = webretrieval.DefaultTriggerKeywords
	}

	overrides := webretrieval.DefaultOverrideResults
	if len(cfg.WebSearch.Overrides) > 0 {
		overrides = make([]websearch.Result, 0, len(cfg.WebSearch.Overrides))
		for _, o := range cfg.WebSearch.Overrides {
			overrides = append(overrides, websearch.Result{
				Title:   o.Title,
				URL:     o.URL,
				Content: o.Content,
			})
		}
	}

	snapshots := webretrieval.DefaultSnapshotRules(cfg.Ingest.DataDir)
	if len(cfg.WebSearch.Snapshots) > 0 {
		snapshots = make([]webretrieval.SnapshotRule, 0, len(cfg.WebSearch.Snapshots))
		for _, s := range cfg.WebSearch.Snapshots {
			snapshots = append(snapshots, webretrieval.SnapshotRule{
				Pattern: s.Pattern,
				File:    s.File,
			})
		}
	}

	return webretrieval.Options{
		TriggerKeywords: triggers,
		Overrides:       overrides,
		Snapshots:       snapshots,
		Concurrency:     cfg.WebSearch.FetchConcurrency,
	}
}
