package routers

import (
	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/middleware"
	"github.com/haierkeys/fast-roadmap-service/internal/routers/api_router"
	"github.com/haierkeys/fast-roadmap-service/pkg/limiter"
	"github.com/haierkeys/fast-roadmap-service/pkg/util"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// NewRouter 创建对外 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	api_router.PublishVars(appContainer)

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		if cfg.RateLimit.Enabled {
			interval, _ := util.ParseDuration(cfg.RateLimit.FillInterval)
			api.Use(middleware.RateLimiter(limiter.NewIPLimiter(limiter.BucketRule{
				FillInterval: interval,
				Capacity:     cfg.RateLimit.Capacity,
				Quantum:      1,
			}), appContainer.Logger()))
		}
		api.Use(middleware.ContextTimeout(cfg.GetContextTimeout()))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		roadmapHandler := api_router.NewRoadmapHandler(appContainer)
		snapshotHandler := api_router.NewSnapshotHandler(appContainer)
		systemHandler := api_router.NewSystemHandler(appContainer)

		api.GET("/version", systemHandler.ServerVersion)
		api.GET("/health", systemHandler.Health)
		api.GET("/server/status", systemHandler.Status)

		api.GET("/roadmap", roadmapHandler.List)
		api.POST("/roadmap/node", roadmapHandler.CreateNode)
		api.PUT("/roadmap/node/:id", roadmapHandler.UpdateNode)
		api.DELETE("/roadmap/node/:id", roadmapHandler.DeleteNode)
		api.POST("/roadmap/node/:id/branch", roadmapHandler.CreateBranch)
		api.GET("/roadmap/export", roadmapHandler.Export)
		api.POST("/roadmap/import", roadmapHandler.Import)

		api.POST("/roadmap/snapshot", snapshotHandler.Create)
		api.GET("/roadmap/snapshots", snapshotHandler.List)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
