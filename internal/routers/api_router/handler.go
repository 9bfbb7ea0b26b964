// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/middleware"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"go.uber.org/zap"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// logError 记录带 Trace ID 的错误日志，业务码错误（如节点不存在）降级为 warn
func (h *Handler) logError(ctx context.Context, method string, err error) {
	traceID := middleware.GetTraceID(ctx)
	var c *code.Code
	if errors.As(err, &c) && c.Code() != code.ErrorServerInternal.Code() && c.Code() != code.ErrorDBQuery.Code() && c.Code() != code.ErrorDBWrite.Code() {
		h.App.Logger().Warn(method,
			zap.Error(err),
			zap.String("traceId", traceID),
		)
		return
	}
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("traceId", traceID),
	)
}
