// Package limiter token bucket rate limiting keyed per request
// Package limiter 按请求维度划分的令牌桶限流
package limiter

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
}

// BucketRule 令牌桶规则
type BucketRule struct {
	// FillInterval 每隔多久放入 Quantum 个令牌
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}

// IPLimiter 每个客户端 IP 一个令牌桶，首次访问时创建
type IPLimiter struct {
	rule    BucketRule
	mu      sync.Mutex
	buckets map[string]*ratelimit.Bucket
}

var _ Face = (*IPLimiter)(nil)

func NewIPLimiter(rule BucketRule) *IPLimiter {
	if rule.Quantum <= 0 {
		rule.Quantum = 1
	}
	return &IPLimiter{rule: rule, buckets: make(map[string]*ratelimit.Bucket)}
}

func (l *IPLimiter) Key(c *gin.Context) string {
	return c.ClientIP()
}

func (l *IPLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = ratelimit.NewBucketWithQuantum(l.rule.FillInterval, l.rule.Capacity, l.rule.Quantum)
		l.buckets[key] = b
	}
	return b, true
}
