package model

import "time"

const TableNameRoadmapNode = "roadmap_node"

// RoadmapNode mapped from table <roadmap_node>
type RoadmapNode struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	NodeID      string    `gorm:"column:node_id;size:128;not null;uniqueIndex:idx_roadmap_node_node_id" json:"nodeId" form:"nodeId"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title" form:"title"`
	Description string    `gorm:"column:description;type:text" json:"description" form:"description"`
	Color       string    `gorm:"column:color;size:64" json:"color" form:"color"`
	Links       []string  `gorm:"column:links;type:text;serializer:json" json:"links" form:"links"`
	X           float64   `gorm:"column:x" json:"x" form:"x"`
	Y           float64   `gorm:"column:y" json:"y" form:"y"`
	Expanded    bool      `gorm:"column:expanded" json:"expanded" form:"expanded"`
	Children    []string  `gorm:"column:children;type:text;serializer:json" json:"children" form:"children"`
	Parent      string    `gorm:"column:parent;size:128;index:idx_roadmap_node_parent" json:"parent" form:"parent"`
	Level       int       `gorm:"column:level;not null" json:"level" form:"level"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt" form:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt" form:"updatedAt"`
}

// TableName RoadmapNode's table name
func (*RoadmapNode) TableName() string {
	return TableNameRoadmapNode
}
