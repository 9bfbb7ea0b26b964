package roadmap

import (
	"context"

	"github.com/haierkeys/fast-roadmap-service/pkg/workerpool"

	"go.uber.org/zap"
)

// Dispatcher runs fire-and-forget gateway calls whose result the local state does not wait for
// Dispatcher 执行无需等待结果的网关调用
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, fn func(ctx context.Context) error)
}

// InlineDispatcher runs the call on the caller's goroutine and logs a failure
type InlineDispatcher struct {
	Logger *zap.Logger
}

func (d InlineDispatcher) Dispatch(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil && d.Logger != nil {
		d.Logger.Warn("dispatch failed", zap.String("task", name), zap.Error(err))
	}
}

// PoolDispatcher hands calls to a worker pool.
// Responses may arrive in any order; the last one the server applies wins.
// PoolDispatcher 将调用交给 worker pool 异步执行
type PoolDispatcher struct {
	pool   *workerpool.Pool
	logger *zap.Logger
}

func NewPoolDispatcher(pool *workerpool.Pool, logger *zap.Logger) *PoolDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolDispatcher{pool: pool, logger: logger}
}

func (d *PoolDispatcher) Dispatch(ctx context.Context, name string, fn func(ctx context.Context) error) {
	// the caller's context usually ends before the pool gets to the task
	if err := d.pool.SubmitAsync(context.WithoutCancel(ctx), fn); err != nil {
		d.logger.Warn("dispatch rejected", zap.String("task", name), zap.Error(err))
	}
}
