package api_router

import (
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	pkgapp "github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	apperrors "github.com/haierkeys/fast-roadmap-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

// SystemHandler 版本、健康检查与运行状态处理器
type SystemHandler struct {
	*Handler
}

// NewSystemHandler 创建 SystemHandler 实例
func NewSystemHandler(a *app.App) *SystemHandler {
	return &SystemHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string  `json:"status"`   // "healthy" 或 "unhealthy"
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // "connected" 或 "error"
}

// ServerVersion retrieves server version information
// @Summary Get server version info
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=pkgapp.VersionInfo} "Success"
// @Router /api/version [get]
func (h *SystemHandler) ServerVersion(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.Version()))
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态，包括数据库连接
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=HealthResponse}
// @Router /api/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  h.App.Version().Version,
		Uptime:   time.Since(h.App.StartTime).Seconds(),
		Database: "connected",
	}

	if err := h.App.DB.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		response.Status = "unhealthy"
		response.Database = "error"
		pkgapp.NewResponse(c).ToResponse(code.Failed.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}

// Status 进程、主机与存储状态
// @Summary 服务器状态
// @Tags System
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ServerStatusDTO} "Success"
// @Router /api/server/status [get]
func (h *SystemHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()
	data, err := h.App.StatusService.Status(ctx)
	if err != nil {
		h.logError(ctx, "SystemHandler.Status", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	_ = copier.Copy(&data.WorkerPool, h.App.WorkerPool().GetMetrics())
	_ = copier.Copy(&data.WriteQueue, h.App.WriteQueueManager().GetMetrics())
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(data))
}
