// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Snapshot SnapshotConfig // Snapshot related config // 快照相关配置
}

// SnapshotConfig snapshot service configuration
// SnapshotConfig 快照服务配置
type SnapshotConfig struct {
	Enabled  bool   // Whether snapshots are written // 是否启用快照
	Cron     string // 5-field cron spec for scheduled snapshots, empty disables the schedule // 定时快照的 5 段 cron 表达式，为空不定时
	SavePath string // Directory the snapshot files are written to // 快照文件保存目录
	Keep     int    // Snapshots to keep, 0 keeps all // 保留快照数量，0 表示全部保留
}
