package task

import (
	"context"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/service"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// snapshotCheckInterval cron 表达式的最小粒度为分钟
const snapshotCheckInterval = 20 * time.Second

// SnapshotTask 按 snapshot.cron 定时写入路线图快照
// 每次执行都重新读取快照配置，配置热更新后无需重启
type SnapshotTask struct {
	svc    service.SnapshotService
	logger *zap.Logger
	now    func() time.Time

	spec  string
	sched cron.Schedule
	next  time.Time
}

// Name 任务名称
func (t *SnapshotTask) Name() string {
	return "RoadmapSnapshot"
}

// LoopInterval 检查间隔
func (t *SnapshotTask) LoopInterval() time.Duration {
	return snapshotCheckInterval
}

// IsStartupRun 启动时执行一次以计算首个触发时间
func (t *SnapshotTask) IsStartupRun() bool {
	return true
}

// Run 到达下一次触发时间时写入快照
func (t *SnapshotTask) Run(ctx context.Context) error {
	cfg := t.svc.Config()
	if !cfg.Enabled || cfg.Cron == "" {
		t.spec, t.sched = "", nil
		return nil
	}

	now := t.now()
	if cfg.Cron != t.spec {
		sched, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return errors.Wrapf(err, "parse snapshot cron %q", cfg.Cron)
		}
		t.spec, t.sched, t.next = cfg.Cron, sched, sched.Next(now)
		t.logger.Info("snapshot scheduled", zap.String("cron", cfg.Cron), zap.Time("next", t.next))
		return nil
	}
	if now.Before(t.next) {
		return nil
	}
	t.next = t.sched.Next(now)

	snap, err := t.svc.Snapshot(ctx, service.SnapshotTriggerCron)
	if err != nil {
		return err
	}
	t.logger.Debug("scheduled snapshot done", zap.String("path", snap.Path), zap.Time("next", t.next))
	return nil
}

// NewSnapshotTask 创建快照任务
func NewSnapshotTask(svc service.SnapshotService, logger *zap.Logger) *SnapshotTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotTask{svc: svc, logger: logger, now: time.Now}
}

func init() {
	Register(func(appContainer *app.App) (Task, error) {
		return NewSnapshotTask(appContainer.SnapshotService, appContainer.Logger()), nil
	})
}
