package middleware

import (
	"time"

	"github.com/haierkeys/fast-roadmap-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AccessLogWithLogger 记录每个请求的访问日志
// 健康检查记录为 debug，其余为 info；带 :id 参数的路由额外记录节点 ID
func AccessLogWithLogger(lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		level := zapcore.InfoLevel
		if route == "/api/health" {
			level = zapcore.DebugLevel
		}
		ce := lg.Check(level, c.Request.Method+" "+c.Request.URL.Path)
		if ce == nil {
			return
		}

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.Duration("time-cost", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			logger.TraceID(GetTraceIDFromGin(c)),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, logger.NodeID(id))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("errors", errs.String()))
		}
		ce.Write(fields...)
	}
}
