package task

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/service"

	"go.uber.org/zap"
)

// tempFileMaxAge 原子写入中断后遗留的临时文件保留时间
const tempFileMaxAge = 10 * time.Minute

// SnapshotTempCleanupTask 清理快照目录中写入中断遗留的临时文件
type SnapshotTempCleanupTask struct {
	svc    service.SnapshotService
	logger *zap.Logger
	now    func() time.Time
}

// Name 任务名称
func (t *SnapshotTempCleanupTask) Name() string {
	return "SnapshotTempCleanup"
}

// LoopInterval 执行间隔
func (t *SnapshotTempCleanupTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun 是否立即执行一次
func (t *SnapshotTempCleanupTask) IsStartupRun() bool {
	return true
}

// Run 执行清理任务
func (t *SnapshotTempCleanupTask) Run(ctx context.Context) error {
	dir := t.svc.Config().SavePath
	if dir == "" {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, ".roadmap-*.json.*"))
	if err != nil {
		return err
	}

	removed := 0
	for _, path := range matches {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if t.now().Sub(info.ModTime()) < tempFileMaxAge {
			continue
		}
		if err := os.Remove(path); err != nil {
			t.logger.Warn(t.Name()+" remove failed", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		t.logger.Info(t.Name()+" completed", zap.String("path", dir), zap.Int("removed", removed))
	}
	return nil
}

// NewSnapshotTempCleanupTask 创建临时文件清理任务
func NewSnapshotTempCleanupTask(svc service.SnapshotService, logger *zap.Logger) *SnapshotTempCleanupTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotTempCleanupTask{svc: svc, logger: logger, now: time.Now}
}

func init() {
	Register(func(appContainer *app.App) (Task, error) {
		return NewSnapshotTempCleanupTask(appContainer.SnapshotService, appContainer.Logger()), nil
	})
}
