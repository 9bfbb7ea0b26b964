package domain

import "context"

// RoadmapNodeRepository 路线图节点仓储接口
type RoadmapNodeRepository interface {
	// GetByNodeID 根据节点 ID 获取节点，不存在时返回 ErrNodeNotFound
	GetByNodeID(ctx context.Context, nodeID string) (*RoadmapNode, error)

	// List 按创建顺序获取全部节点
	List(ctx context.Context) ([]*RoadmapNode, error)

	// Count 节点数量
	Count(ctx context.Context) (int64, error)

	// Create 创建节点
	Create(ctx context.Context, node *RoadmapNode) (*RoadmapNode, error)

	// Update 全量更新节点
	Update(ctx context.Context, node *RoadmapNode) (*RoadmapNode, error)

	// DeleteByNodeIDs 批量删除节点
	DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error

	// ReplaceAll 清空后按顺序写入全部节点
	ReplaceAll(ctx context.Context, nodes []*RoadmapNode) error

	// Transaction 在单个写事务中执行 fn，传入的仓储绑定该事务
	Transaction(ctx context.Context, fn func(tx RoadmapNodeRepository) error) error
}

// RoadmapSnapshotRepository 快照记录仓储接口
type RoadmapSnapshotRepository interface {
	// Create 创建快照记录
	Create(ctx context.Context, snapshot *RoadmapSnapshot) (*RoadmapSnapshot, error)

	// List 按时间倒序获取快照记录
	List(ctx context.Context) ([]*RoadmapSnapshot, error)

	// Delete 删除快照记录
	Delete(ctx context.Context, id int64) error
}
