package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/internal/service"
	pkgapp "github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	apperrors "github.com/haierkeys/fast-roadmap-service/pkg/errors"
	"github.com/haierkeys/fast-roadmap-service/pkg/workerpool"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SnapshotHandler 快照 API 路由处理器
type SnapshotHandler struct {
	*Handler
}

// NewSnapshotHandler 创建 SnapshotHandler 实例
func NewSnapshotHandler(a *app.App) *SnapshotHandler {
	return &SnapshotHandler{Handler: NewHandler(a)}
}

// Create 立即写入一份快照
// @Summary 创建快照
// @Tags 快照
// @Accept json
// @Produce json
// @Param params body dto.SnapshotCreateRequest false "快照参数"
// @Success 200 {object} pkgapp.Res{data=dto.SnapshotDTO} "成功"
// @Router /api/roadmap/snapshot [post]
func (h *SnapshotHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.SnapshotCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("SnapshotHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}
	trigger := params.Trigger
	if trigger == "" {
		trigger = service.SnapshotTriggerAPI
	}

	ctx := c.Request.Context()
	var snap *dto.SnapshotDTO
	// 快照写盘在 Worker Pool 中执行，池满时直接拒绝
	err := h.App.SubmitTask(ctx, func(ctx context.Context) error {
		var err error
		snap, err = h.App.SnapshotService.Snapshot(ctx, trigger)
		return err
	})
	if errors.Is(err, workerpool.ErrWorkerPoolFull) {
		h.App.Logger().Warn("SnapshotHandler.Create worker pool full", zap.Error(err))
		response.ToResponse(code.ErrorTooManyRequests)
		return
	}
	if err != nil {
		h.logError(ctx, "SnapshotHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(snap))
}

// List 快照记录列表
// @Summary 快照列表
// @Tags 快照
// @Produce json
// @Success 200 {object} pkgapp.Res{data=[]dto.SnapshotDTO} "成功"
// @Router /api/roadmap/snapshots [get]
func (h *SnapshotHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	list, err := h.App.SnapshotService.List(ctx)
	if err != nil {
		h.logError(ctx, "SnapshotHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(list))
}
