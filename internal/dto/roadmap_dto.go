// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import "time"

// PositionDTO canvas coordinates of a node
// PositionDTO 节点在画布上的坐标
type PositionDTO struct {
	X float64 `json:"x" example:"50"`
	Y float64 `json:"y" example:"50"`
}

// NodeCreateRequest Request parameters for creating or replacing a node
// 创建或覆盖节点的请求参数
type NodeCreateRequest struct {
	ID          string       `json:"id" binding:"omitempty,max=128" example:"node_1"`       // Node ID, generated when empty // 节点 ID，为空时自动生成
	Title       *string      `json:"title" binding:"omitempty,max=255" example:"Root Node"` // Title // 标题
	Description *string      `json:"description" example:""`                                // Description // 描述
	Color       *string      `json:"color" binding:"omitempty,nodecolor" example:"#3498db"` // Accent color // 颜色
	Links       []string     `json:"links" binding:"omitempty,dive,max=2048"`               // Links // 链接
	Position    *PositionDTO `json:"position"`                                              // Position // 位置
	Expanded    *bool        `json:"expanded" example:"true"`                               // Expanded // 是否展开
	Children    []string     `json:"children"`                                              // Child IDs // 子节点 ID
	Parent      *string      `json:"parent"`                                                // Parent ID // 父节点 ID
	Level       *int         `json:"level" binding:"omitempty,min=0" example:"0"`           // Depth, 0 for roots // 层级，根节点为 0
}

// NodeUpdateRequest Request parameters for a partial node update, absent keys are left untouched
// 节点部分更新的请求参数，未提供的字段保持不变
type NodeUpdateRequest struct {
	Title       *string      `json:"title" binding:"omitempty,max=255"`
	Description *string      `json:"description"`
	Color       *string      `json:"color" binding:"omitempty,nodecolor"`
	Links       *[]string    `json:"links" binding:"omitempty,dive,max=2048"`
	Position    *PositionDTO `json:"position"`
	Expanded    *bool        `json:"expanded"`
	Children    *[]string    `json:"children"`
	Parent      *string      `json:"parent"`
	Level       *int         `json:"level" binding:"omitempty,min=0"`
}

// IsEmpty reports whether no whitelisted key was supplied
// IsEmpty 是否未提供任何可更新字段
func (r *NodeUpdateRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Color == nil && r.Links == nil &&
		r.Position == nil && r.Expanded == nil && r.Children == nil && r.Parent == nil && r.Level == nil
}

// BranchCreateRequest Request parameters for creating a child node
// 创建子节点的请求参数
type BranchCreateRequest struct {
	ID          string   `json:"id" binding:"omitempty,max=128"`                         // Child ID, generated when empty // 子节点 ID，为空时自动生成
	Title       string   `json:"title" binding:"omitempty,max=255" example:"New Branch"` // Title // 标题
	Description string   `json:"description"`                                            // Description // 描述
	Color       string   `json:"color" binding:"omitempty,nodecolor" example:"#e67e22"`  // Color, parent color when empty // 颜色，为空时继承父节点
	Links       []string `json:"links" binding:"omitempty,dive,max=2048"`                // Links // 链接
}

// SnapshotCreateRequest Request parameters for a manual snapshot
// 手动快照的请求参数
type SnapshotCreateRequest struct {
	Trigger string `json:"trigger" binding:"omitempty,oneof=manual api" example:"manual"`
}

// ---------------- DTO / Response ----------------

// RoadmapNodeDTO Roadmap node data transfer object
// RoadmapNodeDTO 路线图节点数据传输对象
type RoadmapNodeDTO struct {
	NodeID      string      `json:"id"`                  // Node ID // 节点 ID
	Title       string      `json:"title"`               // Title // 标题
	Description string      `json:"description"`         // Description // 描述
	Color       string      `json:"color"`               // Color // 颜色
	Links       []string    `json:"links"`               // Links // 链接
	Position    PositionDTO `json:"position" copier:"-"` // Position // 位置
	Expanded    bool        `json:"expanded"`            // Expanded // 是否展开
	Children    []string    `json:"children"`            // Child IDs // 子节点 ID
	Parent      *string     `json:"parent" copier:"-"`   // Parent ID, null for roots // 父节点 ID，根节点为 null
	Level       int         `json:"level"`               // Depth // 层级
	UpdatedAt   time.Time   `json:"updatedAt"`           // Updated time // 更新时间
}

// RoadmapDTO every node of the roadmap in creation order
// RoadmapDTO 按创建顺序排列的全部节点
type RoadmapDTO struct {
	Nodes []*RoadmapNodeDTO `json:"nodes"`
}

// NodeResultDTO single node response
// NodeResultDTO 单节点响应
type NodeResultDTO struct {
	Node *RoadmapNodeDTO `json:"node"`
}

// BranchDTO branch creation response, carries the updated parent
// BranchDTO 创建分支的响应，包含更新后的父节点
type BranchDTO struct {
	Node   *RoadmapNodeDTO `json:"node"`
	Parent *RoadmapNodeDTO `json:"parent"`
}

// DeleteResultDTO removed node ids, subtree included
// DeleteResultDTO 被删除的节点 ID（含子树）
type DeleteResultDTO struct {
	Deleted []string `json:"deleted"`
}

// ImportResultDTO import summary
// ImportResultDTO 导入结果
type ImportResultDTO struct {
	Count int `json:"count"`
}

// SnapshotDTO snapshot record
// SnapshotDTO 快照记录
type SnapshotDTO struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"fileName"`
	Path      string    `json:"path"`
	NodeCount int       `json:"nodeCount"`
	Size      int64     `json:"size"`
	Trigger   string    `json:"trigger"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServerStatusDTO process and host status
// ServerStatusDTO 进程与主机状态
type ServerStatusDTO struct {
	StartTime  time.Time        `json:"startTime"`  // Start time // 启动时间
	Uptime     float64          `json:"uptime"`     // Uptime (seconds) // 运行时间（秒）
	Nodes      int64            `json:"nodes"`      // Stored node count // 已存储节点数
	Runtime    RuntimeStatus    `json:"runtime"`    // Go runtime status // Go 运行时状态
	CPU        CPUStatus        `json:"cpu"`
	Memory     MemoryStatus     `json:"memory"`
	Host       HostStatus       `json:"host"`
	Process    ProcessStatus    `json:"process"`
	WorkerPool WorkerPoolStatus `json:"workerPool"` // Filled by the handler // 由处理器填充
	WriteQueue WriteQueueStatus `json:"writeQueue"` // Filled by the handler // 由处理器填充
}

// RuntimeStatus Go runtime information
type RuntimeStatus struct {
	NumGoroutine int    `json:"numGoroutine"`
	MemAlloc     uint64 `json:"memAlloc"`
	MemSys       uint64 `json:"memSys"`
	HeapInuse    uint64 `json:"heapInuse"`
	NumGC        uint32 `json:"numGc"`
}

// CPUStatus CPU information
type CPUStatus struct {
	ModelName    string    `json:"modelName"`
	LogicalCores int       `json:"logicalCores"`
	Percent      []float64 `json:"percent"`
	Load1        float64   `json:"load1"`
	Load5        float64   `json:"load5"`
	Load15       float64   `json:"load15"`
}

// MemoryStatus memory information
type MemoryStatus struct {
	Total       uint64  `json:"total"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"usedPercent"`
}

// HostStatus host identification
type HostStatus struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernelVersion"`
	Uptime        uint64 `json:"uptime"`
}

// ProcessStatus current process
type ProcessStatus struct {
	PID           int32   `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float32 `json:"memoryPercent"`
	RSS           uint64  `json:"rss"`
}

// WorkerPoolStatus background task pool counters
// WorkerPoolStatus 后台任务池计数
type WorkerPoolStatus struct {
	MaxWorkers    int   `json:"maxWorkers"`
	ActiveCount   int64 `json:"activeCount"`
	QueuedCount   int   `json:"queuedCount"`
	QueueCapacity int   `json:"queueCapacity"`
	Completed     int64 `json:"completed"`
	Failed        int64 `json:"failed"`
	IsClosed      bool  `json:"isClosed"`
}

// WriteQueueStatus per-key write queue counters
type WriteQueueStatus struct {
	QueueCapacity int   `json:"queueCapacity"`
	ActiveQueues  int   `json:"activeQueues"`
	Executed      int64 `json:"executed"`
	IsClosed      bool  `json:"isClosed"`
}
