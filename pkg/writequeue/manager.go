// Package writequeue serializes write operations per key
// Package writequeue 按 key 串行化写操作
// Writes against the same key run one at a time in FIFO order, which keeps SQLite away from "database is locked"
// 同一 key 的写操作按 FIFO 顺序逐个执行，避免 SQLite 出现 "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Error definitions
// 错误定义
var (
	// ErrWriteQueueFull returned when the key's queue is full
	// ErrWriteQueueFull 当写队列已满时返回
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed returned when the manager is closed
	// ErrWriteQueueClosed 当写队列管理器已关闭时返回
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout returned when a write waits longer than WriteTimeout
	// ErrWriteTimeout 当写操作超时时返回
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity per-key queue capacity, default 100
	// QueueCapacity 每个 key 的队列容量，默认 100
	QueueCapacity int
	// WriteTimeout write operation timeout, default 30 seconds
	// WriteTimeout 写操作超时时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout idle cleanup timeout, default 10 minutes
	// IdleTimeout 空闲清理超时时间，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type keyQueue struct {
	key      string
	ch       chan writeOp
	lastUsed atomic.Int64
	closed   atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	workerWg sync.WaitGroup
}

func (q *keyQueue) stop() {
	q.closed.Store(true)
	q.stopOnce.Do(func() { close(q.stopCh) })
}

// Manager manages one write queue per key
// Manager 管理每个 key 的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool

	ctx    context.Context
	cancel context.CancelFunc

	cleanupWg   sync.WaitGroup
	cleanupDone chan struct{}

	executed atomic.Int64
}

// New creates write queue manager
// New 创建写队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	c := *cfg
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 100
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		config:      c,
		logger:      logger,
		queues:      make(map[string]*keyQueue),
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}

	m.cleanupWg.Add(1)
	go m.cleanupIdleQueues()

	return m
}

// Execute runs fn on the key's queue and waits for its result
// Execute 在 key 对应的队列上执行 fn 并等待结果
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	result := make(chan error, 1)
	op := writeOp{ctx: ctx, fn: fn, result: result}

	if err := m.submit(key, op); err != nil {
		return err
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	case <-m.ctx.Done():
		return ErrWriteQueueClosed
	}
}

// submit enqueues under the manager lock so cleanup and shutdown never race a send
func (m *Manager) submit(key string, op writeOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrWriteQueueClosed
	}

	queue, ok := m.queues[key]
	if !ok || queue.closed.Load() {
		queue = &keyQueue{
			key:    key,
			ch:     make(chan writeOp, m.config.QueueCapacity),
			stopCh: make(chan struct{}),
		}
		m.queues[key] = queue
		queue.workerWg.Add(1)
		go m.worker(queue)
		m.logger.Debug("created write queue", zap.String("key", key))
	}
	queue.lastUsed.Store(time.Now().UnixNano())

	select {
	case queue.ch <- op:
		return nil
	default:
		return ErrWriteQueueFull
	}
}

func (m *Manager) worker(queue *keyQueue) {
	defer queue.workerWg.Done()

	for {
		select {
		case <-queue.stopCh:
			m.drainQueue(queue)
			return
		case op := <-queue.ch:
			m.executeOp(queue, op)
		}
	}
}

func (m *Manager) executeOp(queue *keyQueue, op writeOp) {
	queue.lastUsed.Store(time.Now().UnixNano())

	select {
	case <-op.ctx.Done():
		op.result <- op.ctx.Err()
		return
	default:
	}

	m.executed.Add(1)
	op.result <- op.fn()
}

func (m *Manager) drainQueue(queue *keyQueue) {
	for {
		select {
		case op := <-queue.ch:
			m.executeOp(queue, op)
		default:
			return
		}
	}
}

func (m *Manager) cleanupIdleQueues() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.cleanupDone:
			return
		case <-ticker.C:
			m.doCleanup()
		}
	}
}

// doCleanup stops queues idle for longer than IdleTimeout
// doCleanup 停止空闲超时的队列
func (m *Manager) doCleanup() {
	now := time.Now().UnixNano()
	idle := m.config.IdleTimeout.Nanoseconds()

	m.mu.Lock()
	defer m.mu.Unlock()
	for key, queue := range m.queues {
		if now-queue.lastUsed.Load() > idle && len(queue.ch) == 0 {
			queue.stop()
			delete(m.queues, key)
			m.logger.Debug("cleaned up idle write queue", zap.String("key", key))
		}
	}
}

// Shutdown drains every queue and stops the manager
// Shutdown 排空所有队列并关闭管理器
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	queues := make([]*keyQueue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	close(m.cleanupDone)

	done := make(chan struct{})
	go func() {
		for _, q := range queues {
			q.stop()
		}
		for _, q := range queues {
			q.workerWg.Wait()
		}
		m.cleanupWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.cancel()
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout, forcing cancellation")
		m.cancel()
		return ctx.Err()
	}
}

// Metrics write queue manager metrics
// Metrics 写队列管理器指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	Executed      int64
	IsClosed      bool
}

// GetMetrics gets current metrics
// GetMetrics 获取当前指标
func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	closed := m.closed
	active := len(m.queues)
	m.mu.Unlock()

	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  active,
		Executed:      m.executed.Load(),
		IsClosed:      closed,
	}
}
