// Package domain 定义领域模型和接口
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNodeNotFound 节点不存在
	ErrNodeNotFound = errors.New("roadmap node not found")
	// ErrParentNotFound 父节点不存在
	ErrParentNotFound = errors.New("roadmap parent node not found")
)

// RoadmapPosition 节点画布坐标
type RoadmapPosition struct {
	X float64
	Y float64
}

// RoadmapNode 路线图节点领域模型
type RoadmapNode struct {
	// ID 自增主键，决定列表顺序
	ID          int64
	NodeID      string
	Title       string
	Description string
	Color       string
	Links       []string
	Position    RoadmapPosition
	Expanded    bool
	Children    []string
	Parent      string
	Level       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasChild 判断是否包含子节点
func (n *RoadmapNode) HasChild(nodeID string) bool {
	for _, c := range n.Children {
		if c == nodeID {
			return true
		}
	}
	return false
}

// RoadmapSnapshot 路线图快照记录
type RoadmapSnapshot struct {
	ID        int64
	FileName  string
	Path      string
	NodeCount int
	Size      int64
	Trigger   string
	CreatedAt time.Time
}
