package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryWithLogger 创建带日志器的 Recovery 中间件（支持依赖注入）
func RecoveryWithLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			errorMsg := fmt.Sprintf("%v", err)
			fields := []zap.Field{
				zap.String("router", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("query", c.Request.URL.RawQuery),
				zap.String("ip", c.ClientIP()),
				zap.String("traceId", GetTraceIDFromGin(c)),
				zap.String("stack", string(debug.Stack())), // 错误堆栈
			}
			if e, ok := err.(error); ok {
				logger.Error("Recovered from panic", append(fields, zap.Error(e))...)
			} else {
				logger.Error("Recovered from unknown panic", append(fields, zap.String("panic_value", errorMsg))...)
			}

			// 返回统一的错误响应
			app.NewResponse(c).ToResponse(code.ErrorServerInternal.WithDetails(errorMsg))
			c.Abort()
		}()

		c.Next()
	}
}
