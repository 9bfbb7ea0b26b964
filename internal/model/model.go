// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名执行自动迁移
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "RoadmapNode":
		return db.AutoMigrate(RoadmapNode{})

	case "RoadmapSnapshot":
		return db.AutoMigrate(RoadmapSnapshot{})
	}
	return nil
}
