package model

import "time"

const TableNameRoadmapSnapshot = "roadmap_snapshot"

// RoadmapSnapshot mapped from table <roadmap_snapshot>
type RoadmapSnapshot struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	FileName  string    `gorm:"column:file_name;size:255;not null" json:"fileName" form:"fileName"`
	Path      string    `gorm:"column:path;size:1024;not null" json:"path" form:"path"`
	NodeCount int       `gorm:"column:node_count" json:"nodeCount" form:"nodeCount"`
	Size      int64     `gorm:"column:size" json:"size" form:"size"`
	Trigger   string    `gorm:"column:trigger_type;size:32" json:"trigger" form:"trigger"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_roadmap_snapshot_created_at" json:"createdAt" form:"createdAt"`
}

// TableName RoadmapSnapshot's table name
func (*RoadmapSnapshot) TableName() string {
	return TableNameRoadmapSnapshot
}
