package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumaker/internal/api/middleware"
	"resumaker/internal/config"
	"resumaker/internal/metrics"
	"resumaker/internal/storage"
	"resumaker/internal/store"
)

// Deps 汇总路由所需的依赖；Queue、Objects、Redis 可为 nil，对应功能会降级。
type Deps struct {
	Config  *config.Config
	Store   *store.Service
	Queue   TaskEnqueuer
	Objects storage.ObjectStore
	Redis   *redis.Client
	Logger  *slog.Logger
}

// NewRouter 构建 Gin 路由引擎，挂载通用中间件、健康检查与指标端点。
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
		metrics.GinMiddleware(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	RegisterRoutes(router, deps)
	return router
}
