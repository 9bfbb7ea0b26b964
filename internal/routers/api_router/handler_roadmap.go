package api_router

import (
	"net/http"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/internal/service"
	pkgapp "github.com/haierkeys/fast-roadmap-service/pkg/app"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	apperrors "github.com/haierkeys/fast-roadmap-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImportBytes 导入文件大小上限
const maxImportBytes = 16 << 20

// RoadmapHandler 路线图 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type RoadmapHandler struct {
	*Handler
}

// NewRoadmapHandler 创建 RoadmapHandler 实例
func NewRoadmapHandler(a *app.App) *RoadmapHandler {
	return &RoadmapHandler{
		Handler: NewHandler(a),
	}
}

// List 获取全部节点
// @Summary 获取路线图
// @Description 按创建顺序返回全部节点
// @Tags 路线图
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.RoadmapDTO} "成功"
// @Router /api/roadmap [get]
func (h *RoadmapHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	nodes, err := h.App.NodeService.List(ctx)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.RoadmapDTO{Nodes: nodes}))
}

// CreateNode 创建或覆盖节点
// @Summary 创建节点
// @Description 未提供 ID 时生成 UUID，ID 已存在时整体覆盖
// @Tags 路线图
// @Accept json
// @Produce json
// @Param params body dto.NodeCreateRequest true "节点参数"
// @Success 200 {object} pkgapp.Res{data=dto.NodeResultDTO} "成功"
// @Router /api/roadmap/node [post]
func (h *RoadmapHandler) CreateNode(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NodeCreateRequest{}

	// 参数绑定和验证
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("RoadmapHandler.CreateNode.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}

	ctx := c.Request.Context()
	node, err := h.App.NodeService.Create(ctx, params)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.CreateNode", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.NodeResultDTO{Node: node}))
}

// UpdateNode 部分更新节点
// @Summary 更新节点
// @Description 仅更新请求体中出现的白名单字段
// @Tags 路线图
// @Accept json
// @Produce json
// @Param id path string true "节点 ID"
// @Param params body dto.NodeUpdateRequest true "更新字段"
// @Success 200 {object} pkgapp.Res{data=dto.NodeResultDTO} "成功"
// @Router /api/roadmap/node/{id} [put]
func (h *RoadmapHandler) UpdateNode(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.NodeUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("RoadmapHandler.UpdateNode.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}

	ctx := c.Request.Context()
	node, err := h.App.NodeService.Update(ctx, c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.UpdateNode", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.NodeResultDTO{Node: node}))
}

// DeleteNode 删除节点及其子树
// @Summary 删除节点
// @Description 从父节点移除引用并删除整棵子树
// @Tags 路线图
// @Produce json
// @Param id path string true "节点 ID"
// @Success 200 {object} pkgapp.Res{data=dto.DeleteResultDTO} "成功"
// @Router /api/roadmap/node/{id} [delete]
func (h *RoadmapHandler) DeleteNode(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	removed, err := h.App.NodeService.Delete(ctx, c.Param("id"))
	if err != nil {
		h.logError(ctx, "RoadmapHandler.DeleteNode", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.DeleteResultDTO{Deleted: removed}))
}

// CreateBranch 创建子节点
// @Summary 创建分支
// @Description 在父节点下创建子节点，位置根据已有子节点数量计算
// @Tags 路线图
// @Accept json
// @Produce json
// @Param id path string true "父节点 ID"
// @Param params body dto.BranchCreateRequest false "分支参数"
// @Success 200 {object} pkgapp.Res{data=dto.BranchDTO} "成功"
// @Router /api/roadmap/node/{id}/branch [post]
func (h *RoadmapHandler) CreateBranch(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.BranchCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Warn("RoadmapHandler.CreateBranch.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()...))
		return
	}

	ctx := c.Request.Context()
	res, err := h.App.NodeService.CreateBranch(ctx, c.Param("id"), params)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.CreateBranch", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(res))
}

// Export 下载 roadmap.json
// @Summary 导出路线图
// @Tags 路线图
// @Produce json
// @Success 200 {file} file "roadmap.json"
// @Router /api/roadmap/export [get]
func (h *RoadmapHandler) Export(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	body, err := service.ExportBytes(ctx, h.App.NodeService)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.Export", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToAttachment(roadmap.ExportFileName, "application/json; charset=utf-8", body)
}

// Import 用请求体中的 roadmap.json 替换全部节点
// @Summary 导入路线图
// @Tags 路线图
// @Accept json
// @Produce json
// @Success 200 {object} pkgapp.Res{data=dto.ImportResultDTO} "成功"
// @Router /api/roadmap/import [post]
func (h *RoadmapHandler) Import(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	n, err := h.App.NodeService.Import(ctx, body)
	if err != nil {
		h.logError(ctx, "RoadmapHandler.Import", err)
		apperrors.ErrorResponse(c, err)
		return
	}
	response.ToResponse(code.Success.WithData(dto.ImportResultDTO{Count: n}))
}
