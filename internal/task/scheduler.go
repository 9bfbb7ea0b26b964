package task

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/haierkeys/fast-roadmap-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔，不大于 0 时只在启动时执行
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler 按固定间隔执行任务。同一任务上一次尚未结束时跳过本次触发
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logger,
		sc:     sc,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务，关闭信号到达时取消正在执行的任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}
	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		s.cancel()
	})
}

func (s *Scheduler) startTask(task Task) {
	var running atomic.Bool

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		if task.IsStartupRun() {
			go s.runOnce(task, &running, "startup")
		}
		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce(task, &running, "loop")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}

// runOnce 执行一次任务，捕获 panic；running 已被占用时直接返回
func (s *Scheduler) runOnce(task Task, running *atomic.Bool, trigger string) {
	if !running.CompareAndSwap(false, true) {
		s.logger.Debug("task still running, skipped", zap.String("name", task.Name()), zap.String("trigger", trigger))
		return
	}
	defer running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("trigger", trigger),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()

	start := time.Now()
	if err := task.Run(s.ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("trigger", trigger),
			zap.Error(err))
		return
	}
	s.logger.Debug("task done",
		zap.String("name", task.Name()),
		zap.String("trigger", trigger),
		zap.Duration("time-cost", time.Since(start)))
}
