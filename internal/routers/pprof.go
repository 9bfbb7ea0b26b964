package routers

import (
	"net/http/pprof"

	"github.com/haierkeys/fast-roadmap-service/internal/middleware"
	"github.com/haierkeys/fast-roadmap-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// DefaultPrefix url prefix of pprof
	DefaultPrefix = "/debug/pprof"
)

// runtimeProfiles pprof.Handler 支持的运行时 profile
var runtimeProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouterWithLogger 私有路由，只应监听内网地址
// 始终提供 /debug/vars（含 roadmap_nodes）与 /metrics（节点操作计数），debug 模式下额外挂载 pprof
func NewPrivateRouterWithLogger(runMode string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(logger))

	r.GET("/debug/vars", api_router.Expvar)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if runMode != gin.DebugMode {
		return r
	}

	p := r.Group(DefaultPrefix)
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.Match([]string{"GET", "POST"}, "/symbol", gin.WrapF(pprof.Symbol))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range runtimeProfiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	logger.Debug("pprof enabled", zap.String("prefix", DefaultPrefix))
	return r
}
