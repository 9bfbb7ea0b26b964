// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultNodeTitle   = "New Node"
	defaultBranchTitle = "New Branch"
	defaultNodeColor   = "#3498db"

	branchOffsetX = 250
	branchStepY   = 120
	branchShiftY  = 60
)

var defaultNodePosition = domain.RoadmapPosition{X: 100, Y: 100}

// NodeService defines the roadmap node business service
// NodeService 路线图节点业务服务接口
type NodeService interface {
	// List 按创建顺序返回全部节点
	List(ctx context.Context) ([]*dto.RoadmapNodeDTO, error)

	// Get 根据节点 ID 获取节点
	Get(ctx context.Context, nodeID string) (*dto.RoadmapNodeDTO, error)

	// Create 创建节点，ID 已存在时整体覆盖并保留原有顺序
	Create(ctx context.Context, req *dto.NodeCreateRequest) (*dto.RoadmapNodeDTO, error)

	// Update 仅更新请求中提供的白名单字段
	Update(ctx context.Context, nodeID string, req *dto.NodeUpdateRequest) (*dto.RoadmapNodeDTO, error)

	// Delete 从父节点移除引用并删除整棵子树，返回被删除的 ID
	Delete(ctx context.Context, nodeID string) ([]string, error)

	// CreateBranch 在父节点下创建子节点
	CreateBranch(ctx context.Context, parentID string, req *dto.BranchCreateRequest) (*dto.BranchDTO, error)

	// Tree 以内存树的形式返回全部节点
	Tree(ctx context.Context) (*roadmap.Tree, error)

	// Export 写出 roadmap.json
	Export(ctx context.Context, w io.Writer) error

	// Import 用 roadmap.json 整体替换全部节点，返回导入数量
	Import(ctx context.Context, r io.Reader) (int, error)

	// Count 节点数量
	Count(ctx context.Context) (int64, error)
}

type nodeService struct {
	repo   domain.RoadmapNodeRepository
	logger *zap.Logger
	sf     *singleflight.Group
}

// NewNodeService 创建 NodeService 实例
func NewNodeService(repo domain.RoadmapNodeRepository, logger *zap.Logger) NodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &nodeService{
		repo:   repo,
		logger: logger,
		sf:     &singleflight.Group{},
	}
}

func (s *nodeService) List(ctx context.Context) ([]*dto.RoadmapNodeDTO, error) {
	v, err, _ := s.sf.Do("roadmap_list", func() (any, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	nodes := v.([]*domain.RoadmapNode)
	res := make([]*dto.RoadmapNodeDTO, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, s.domainToDTO(n))
	}
	return res, nil
}

func (s *nodeService) Get(ctx context.Context, nodeID string) (*dto.RoadmapNodeDTO, error) {
	n, err := s.repo.GetByNodeID(ctx, nodeID)
	if err != nil {
		return nil, s.notFoundOr(err, code.ErrorDBQuery)
	}
	return s.domainToDTO(n), nil
}

func (s *nodeService) Create(ctx context.Context, req *dto.NodeCreateRequest) (*dto.RoadmapNodeDTO, error) {
	node := &domain.RoadmapNode{
		NodeID:   req.ID,
		Title:    defaultNodeTitle,
		Color:    defaultNodeColor,
		Links:    []string{},
		Position: defaultNodePosition,
		Expanded: true,
		Children: []string{},
	}
	if node.NodeID == "" {
		node.NodeID = uuid.NewString()
	}
	if req.Title != nil {
		node.Title = *req.Title
	}
	if req.Description != nil {
		node.Description = *req.Description
	}
	if req.Color != nil {
		node.Color = *req.Color
	}
	if req.Links != nil {
		node.Links = req.Links
	}
	if req.Position != nil {
		node.Position = domain.RoadmapPosition{X: req.Position.X, Y: req.Position.Y}
	}
	if req.Expanded != nil {
		node.Expanded = *req.Expanded
	}
	if req.Children != nil {
		node.Children = req.Children
	}
	if req.Parent != nil {
		node.Parent = *req.Parent
	}
	if req.Level != nil {
		node.Level = *req.Level
	}

	var saved *domain.RoadmapNode
	err := s.repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		_, err := tx.GetByNodeID(ctx, node.NodeID)
		switch {
		case err == nil:
			saved, err = tx.Update(ctx, node)
		case errors.Is(err, domain.ErrNodeNotFound):
			saved, err = tx.Create(ctx, node)
		}
		return err
	})
	if err != nil {
		observe("create", err)
		return nil, code.ErrorNodeCreateFailed.WithDetails(err.Error())
	}
	observe("create", nil)
	s.logger.Debug("roadmap node saved", zap.String("nodeId", saved.NodeID))
	return s.domainToDTO(saved), nil
}

func (s *nodeService) Update(ctx context.Context, nodeID string, req *dto.NodeUpdateRequest) (*dto.RoadmapNodeDTO, error) {
	var saved *domain.RoadmapNode
	err := s.repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		node, err := tx.GetByNodeID(ctx, nodeID)
		if err != nil {
			return err
		}
		applyUpdate(node, req)
		saved, err = tx.Update(ctx, node)
		return err
	})
	observe("update", err)
	if err != nil {
		return nil, s.notFoundOr(err, code.ErrorNodeUpdateFailed)
	}
	return s.domainToDTO(saved), nil
}

func applyUpdate(node *domain.RoadmapNode, req *dto.NodeUpdateRequest) {
	if req.Title != nil {
		node.Title = *req.Title
	}
	if req.Description != nil {
		node.Description = *req.Description
	}
	if req.Color != nil {
		node.Color = *req.Color
	}
	if req.Links != nil {
		node.Links = *req.Links
	}
	if req.Position != nil {
		node.Position = domain.RoadmapPosition{X: req.Position.X, Y: req.Position.Y}
	}
	if req.Expanded != nil {
		node.Expanded = *req.Expanded
	}
	if req.Children != nil {
		node.Children = *req.Children
	}
	if req.Parent != nil {
		node.Parent = *req.Parent
	}
	if req.Level != nil {
		node.Level = *req.Level
	}
}

func (s *nodeService) Delete(ctx context.Context, nodeID string) ([]string, error) {
	var removed []string
	err := s.repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		node, err := tx.GetByNodeID(ctx, nodeID)
		if err != nil {
			return err
		}
		if node.Parent != "" {
			parent, err := tx.GetByNodeID(ctx, node.Parent)
			if err == nil && parent.HasChild(nodeID) {
				parent.Children = removeID(parent.Children, nodeID)
				if _, err := tx.Update(ctx, parent); err != nil {
					return err
				}
			} else if err != nil && !errors.Is(err, domain.ErrNodeNotFound) {
				return err
			}
		}

		removed, err = collectSubtree(ctx, tx, node)
		if err != nil {
			return err
		}
		return tx.DeleteByNodeIDs(ctx, removed)
	})
	observe("delete", err)
	if err != nil {
		return nil, s.notFoundOr(err, code.ErrorNodeDeleteFailed)
	}
	s.logger.Debug("roadmap subtree deleted", zap.String("nodeId", nodeID), zap.Int("count", len(removed)))
	return removed, nil
}

// collectSubtree walks children depth first, missing ids are skipped and each node is visited once
// collectSubtree 深度优先遍历子树，跳过不存在的 id，每个节点只访问一次
func collectSubtree(ctx context.Context, repo domain.RoadmapNodeRepository, root *domain.RoadmapNode) ([]string, error) {
	visited := map[string]struct{}{root.NodeID: {}}
	out := []string{root.NodeID}
	stack := reverseIDs(root.Children)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		n, err := repo.GetByNodeID(ctx, id)
		if errors.Is(err, domain.ErrNodeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, id)
		stack = append(stack, reverseIDs(n.Children)...)
	}
	return out, nil
}

func (s *nodeService) CreateBranch(ctx context.Context, parentID string, req *dto.BranchCreateRequest) (*dto.BranchDTO, error) {
	var child, parent *domain.RoadmapNode
	err := s.repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		p, err := tx.GetByNodeID(ctx, parentID)
		if errors.Is(err, domain.ErrNodeNotFound) {
			return domain.ErrParentNotFound
		}
		if err != nil {
			return err
		}

		c := &domain.RoadmapNode{
			NodeID:      req.ID,
			Title:       req.Title,
			Description: req.Description,
			Color:       req.Color,
			Links:       req.Links,
			Position:    branchPosition(p),
			Expanded:    true,
			Children:    []string{},
			Parent:      p.NodeID,
			Level:       p.Level + 1,
		}
		if c.NodeID == "" {
			c.NodeID = uuid.NewString()
		}
		if c.Title == "" {
			c.Title = defaultBranchTitle
		}
		if c.Color == "" {
			c.Color = p.Color
		}
		if c.Links == nil {
			c.Links = []string{}
		}

		if child, err = tx.Create(ctx, c); err != nil {
			return err
		}
		if !p.HasChild(child.NodeID) {
			p.Children = append(p.Children, child.NodeID)
		}
		parent, err = tx.Update(ctx, p)
		return err
	})
	observe("branch", err)
	if errors.Is(err, domain.ErrParentNotFound) {
		return nil, code.ErrorParentNotFound.WithDetails(parentID)
	}
	if err != nil {
		return nil, code.ErrorBranchFailed.WithDetails(err.Error())
	}
	return &dto.BranchDTO{Node: s.domainToDTO(child), Parent: s.domainToDTO(parent)}, nil
}

// branchPosition places the n-th child 250 to the right, stepping 60 down per existing child
// branchPosition 第 n 个子节点位于父节点右侧 250，每多一个已有子节点下移 60
func branchPosition(p *domain.RoadmapNode) domain.RoadmapPosition {
	n := float64(len(p.Children))
	return domain.RoadmapPosition{
		X: p.Position.X + branchOffsetX,
		Y: p.Position.Y + n*branchStepY - n*branchShiftY,
	}
}

func (s *nodeService) Tree(ctx context.Context) (*roadmap.Tree, error) {
	nodes, err := s.repo.List(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	t := roadmap.NewTree()
	for _, n := range nodes {
		t.Put(domainToRoadmap(n))
	}
	return t, nil
}

func (s *nodeService) Export(ctx context.Context, w io.Writer) error {
	t, err := s.Tree(ctx)
	if err != nil {
		return err
	}
	if err := roadmap.WriteJSON(w, t); err != nil {
		observe("export", err)
		return code.ErrorExportFailed.WithDetails(err.Error())
	}
	observe("export", nil)
	return nil
}

func (s *nodeService) Import(ctx context.Context, r io.Reader) (int, error) {
	t, err := roadmap.ReadJSON(r)
	if err != nil {
		observe("import", err)
		return 0, code.ErrorImportInvalid.WithDetails(err.Error())
	}
	nodes := make([]*domain.RoadmapNode, 0, t.Len())
	for _, n := range t.Nodes() {
		nodes = append(nodes, roadmapToDomain(n))
	}
	if err := s.repo.ReplaceAll(ctx, nodes); err != nil {
		observe("import", err)
		return 0, code.ErrorImportFailed.WithDetails(err.Error())
	}
	observe("import", nil)
	s.logger.Info("roadmap imported", zap.Int("count", len(nodes)))
	return len(nodes), nil
}

func (s *nodeService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return n, nil
}

func (s *nodeService) notFoundOr(err error, fallback *code.Code) error {
	if errors.Is(err, domain.ErrNodeNotFound) {
		return code.ErrorNodeNotFound
	}
	return fallback.WithDetails(err.Error())
}

func (s *nodeService) domainToDTO(n *domain.RoadmapNode) *dto.RoadmapNodeDTO {
	if n == nil {
		return nil
	}
	d := &dto.RoadmapNodeDTO{}
	if err := copier.CopyWithOption(d, n, copier.Option{DeepCopy: true}); err != nil {
		s.logger.Warn("copy roadmap node", zap.String("nodeId", n.NodeID), zap.Error(err))
	}
	d.Position = dto.PositionDTO{X: n.Position.X, Y: n.Position.Y}
	if n.Parent != "" {
		parent := n.Parent
		d.Parent = &parent
	}
	if d.Links == nil {
		d.Links = []string{}
	}
	if d.Children == nil {
		d.Children = []string{}
	}
	return d
}

// ExportBytes renders the stored roadmap into memory
// ExportBytes 将当前路线图导出到内存
func ExportBytes(ctx context.Context, svc NodeService) ([]byte, error) {
	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func domainToRoadmap(n *domain.RoadmapNode) *roadmap.Node {
	return &roadmap.Node{
		ID:          n.NodeID,
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Links:       append([]string{}, n.Links...),
		Position:    roadmap.Position{X: n.Position.X, Y: n.Position.Y},
		Expanded:    n.Expanded,
		Children:    append([]string{}, n.Children...),
		Parent:      n.Parent,
		Level:       n.Level,
	}
}

func roadmapToDomain(n *roadmap.Node) *domain.RoadmapNode {
	return &domain.RoadmapNode{
		NodeID:      n.ID,
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Links:       append([]string{}, n.Links...),
		Position:    domain.RoadmapPosition{X: n.Position.X, Y: n.Position.Y},
		Expanded:    n.Expanded,
		Children:    append([]string{}, n.Children...),
		Parent:      n.Parent,
		Level:       n.Level,
	}
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, c := range ids {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}

func reverseIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
