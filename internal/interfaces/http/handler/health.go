// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	milvusclient "ali-assistant-api/internal/infrastructure/persistence/milvus"
	redisclient "ali-assistant-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	redisClient  *redisclient.Client
	milvusClient *milvusclient.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(redisClient *redisclient.Client, milvusClient *milvusclient.Client) *HealthHandler {
	return &HealthHandler{
		redisClient:  redisClient,
		milvusClient: milvusClient,
	}
}

// Health 基础健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready 就绪检查，探测依赖组件
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)

	// Redis 只服务限流，失败降级不拦截就绪
	if h.redisClient != nil {
		if err := h.redisClient.HealthCheck(ctx); err != nil {
			checks["redis"] = "degraded: " + err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	// Milvus 不可达时检索降级为空结果，服务仍可回答
	if h.milvusClient != nil {
		if err := h.milvusClient.HealthCheck(ctx); err != nil {
			checks["milvus"] = "degraded: " + err.Error()
		} else {
			checks["milvus"] = "ok"
		}
	}

	// 全部依赖均可降级，就绪检查只上报状态不拦截流量
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Live 存活检查
// GET /live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
