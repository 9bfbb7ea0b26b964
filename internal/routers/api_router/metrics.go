package api_router

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/app"

	"github.com/gin-gonic/gin"
)

var (
	publishOnce sync.Once
	expvarApp   atomic.Pointer[app.App]
)

// PublishVars 注册路线图相关的 expvar 指标
// expvar 名称全局唯一，多次调用只会切换数据来源
func PublishVars(a *app.App) {
	expvarApp.Store(a)
	publishOnce.Do(func() {
		expvar.Publish("roadmap_nodes", expvar.Func(func() any {
			cur := expvarApp.Load()
			if cur == nil {
				return 0
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n, err := cur.NodeService.Count(ctx)
			if err != nil {
				return -1
			}
			return n
		}))
		expvar.Publish("uptime_seconds", expvar.Func(func() any {
			if cur := expvarApp.Load(); cur != nil {
				return int64(time.Since(cur.StartTime).Seconds())
			}
			return 0
		}))
	})
}

// Expvar 导出系统运行时指标
// 将 expvar 中登记的全部变量以 JSON 对象写入响应
func Expvar(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	first := true
	fmt.Fprintf(c.Writer, "{\n")
	expvar.Do(func(kv expvar.KeyValue) {
		if !first {
			fmt.Fprintf(c.Writer, ",\n")
		}
		first = false
		fmt.Fprintf(c.Writer, "%q: %s", kv.Key, kv.Value.String())
	})
	fmt.Fprintf(c.Writer, "\n}\n")
}
