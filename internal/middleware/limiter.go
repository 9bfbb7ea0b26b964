package middleware

import (
	"strconv"

	"github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	"github.com/haierkeys/fast-roadmap-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitRemainingHeader 响应头，返回本次请求后桶内剩余令牌数
const RateLimitRemainingHeader = "X-RateLimit-Remaining"

// RateLimiter 每个请求从对应令牌桶取 1 个令牌，取不到时返回 429 码
// 编辑器拖动节点会产生连续的 PUT，桶容量需要覆盖一次拖动
func RateLimiter(l limiter.Face, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := l.Key(c)
		bucket, ok := l.GetBucket(key)
		if !ok {
			c.Next()
			return
		}

		if bucket.TakeAvailable(1) == 0 {
			logger.Debug("rate limited",
				zap.String("key", key),
				zap.String("path", c.FullPath()),
				zap.String("traceId", GetTraceIDFromGin(c)))
			c.Header(RateLimitRemainingHeader, "0")
			app.NewResponse(c).ToResponse(code.ErrorTooManyRequests)
			c.Abort()
			return
		}
		c.Header(RateLimitRemainingHeader, strconv.FormatInt(bucket.Available(), 10))
		c.Next()
	}
}
