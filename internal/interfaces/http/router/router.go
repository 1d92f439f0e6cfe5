// Package router 提供 HTTP 路由配置
package router

import (
	"ali-assistant-api/internal/config"
	"ali-assistant-api/internal/interfaces/http/handler"
	"ali-assistant-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// Handlers 路由所需的全部处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Assistant *handler.AssistantHandler
	Voice     *handler.VoiceHandler
	Document  *handler.DocumentHandler
}

// New 创建路由器
func New(cfg *config.Config, handlers Handlers, redisClient *redis.Client) *Router {
	// 生产环境使用 Release 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine: engine,
		cfg:    cfg,
	}

	r.setupMiddleware(redisClient)
	r.setupRoutes(handlers)

	return r
}

// Engine 获取 Gin 引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 注册全局中间件，顺序即执行顺序
func (r *Router) setupMiddleware(redisClient *redis.Client) {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))
	r.engine.Use(middleware.Trace(r.cfg.App.Name))
	r.engine.Use(middleware.TraceContext())
	r.engine.Use(middleware.Metrics())
	r.engine.Use(middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, redisClient))
}

// setupRoutes 注册路由
func (r *Router) setupRoutes(h Handlers) {
	// 健康检查
	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	// Prometheus 指标
	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	{
		assistant := v1.Group("/assistant")
		{
			assistant.POST("/ask", h.Assistant.Ask)
			assistant.POST("/ask-voice", h.Assistant.AskVoice)
		}

		voice := v1.Group("/voice")
		{
			voice.POST("/transcriptions", h.Voice.Transcribe)
			voice.POST("/speech", h.Voice.Speak)
		}

		documents := v1.Group("/documents")
		{
			documents.POST("", h.Document.Upload)
			documents.DELETE("", h.Document.Clear)
		}

		retrieval := v1.Group("/retrieval")
		{
			retrieval.POST("/search", h.Document.Search)
		}
	}
}
