package task

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/internal/service"
	"github.com/haierkeys/fast-roadmap-service/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSnapshots struct {
	mu       sync.Mutex
	cfg      service.SnapshotConfig
	triggers []string
}

func (f *fakeSnapshots) Snapshot(_ context.Context, trigger string) (*dto.SnapshotDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return &dto.SnapshotDTO{Path: "roadmap.json", Trigger: trigger}, nil
}

func (f *fakeSnapshots) List(context.Context) ([]*dto.SnapshotDTO, error) { return nil, nil }

func (f *fakeSnapshots) Config() service.SnapshotConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeSnapshots) SetConfig(cfg service.SnapshotConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func (f *fakeSnapshots) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.triggers)
}

func TestSnapshotTask_RunsWhenDue(t *testing.T) {
	svc := &fakeSnapshots{cfg: service.SnapshotConfig{Enabled: true, Cron: "*/5 * * * *"}}
	task := NewSnapshotTask(svc, nil)
	now := time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC)
	task.now = func() time.Time { return now }
	ctx := context.Background()

	// 首次执行只计算下一次触发时间
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC), task.next)
	assert.Zero(t, svc.count())

	now = now.Add(3 * time.Minute)
	require.NoError(t, task.Run(ctx))
	assert.Zero(t, svc.count())

	now = time.Date(2026, 3, 1, 12, 5, 10, 0, time.UTC)
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, 1, svc.count())
	assert.Equal(t, service.SnapshotTriggerCron, svc.triggers[0])
	assert.Equal(t, time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC), task.next)

	require.NoError(t, task.Run(ctx))
	assert.Equal(t, 1, svc.count())
}

func TestSnapshotTask_FollowsConfigChanges(t *testing.T) {
	svc := &fakeSnapshots{cfg: service.SnapshotConfig{Enabled: false, Cron: "* * * * *"}}
	task := NewSnapshotTask(svc, nil)
	now := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	task.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, task.Run(ctx))
	assert.Nil(t, task.sched)

	svc.SetConfig(service.SnapshotConfig{Enabled: true, Cron: "0 * * * *"})
	require.NoError(t, task.Run(ctx))
	assert.Equal(t, time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC), task.next)

	svc.SetConfig(service.SnapshotConfig{Enabled: true, Cron: "not a cron"})
	assert.Error(t, task.Run(ctx))
	assert.Zero(t, svc.count())
}

func TestSnapshotTempCleanupTask(t *testing.T) {
	dir := t.TempDir()
	svc := &fakeSnapshots{cfg: service.SnapshotConfig{SavePath: dir}}
	task := NewSnapshotTempCleanupTask(svc, zap.NewNop())

	stale := filepath.Join(dir, ".roadmap-20260301-120000.000.json.123")
	fresh := filepath.Join(dir, ".roadmap-20260301-130000.000.json.456")
	kept := filepath.Join(dir, "roadmap-20260301-120000.000.json")
	for _, p := range []string{stale, fresh, kept} {
		require.NoError(t, os.WriteFile(p, []byte("{}"), 0644))
	}
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	require.NoError(t, task.Run(context.Background()))
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, kept)
}

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
}

func (c *countingTask) Name() string                { return "counting" }
func (c *countingTask) LoopInterval() time.Duration { return c.interval }
func (c *countingTask) IsStartupRun() bool          { return true }
func (c *countingTask) Run(context.Context) error {
	c.runs.Add(1)
	return nil
}

func TestScheduler_StartupAndLoop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	ct := &countingTask{interval: 10 * time.Millisecond}
	s.AddTask(ct)
	s.Start()

	assert.Eventually(t, func() bool { return ct.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
	assert.Error(t, s.ctx.Err())
}

func TestRegistry_HasRoadmapTasks(t *testing.T) {
	assert.GreaterOrEqual(t, len(GetFactories()), 2)
}

type blockingTask struct {
	runs    atomic.Int32
	release chan struct{}
}

func (b *blockingTask) Name() string                { return "blocking" }
func (b *blockingTask) LoopInterval() time.Duration { return 5 * time.Millisecond }
func (b *blockingTask) IsStartupRun() bool          { return true }
func (b *blockingTask) Run(ctx context.Context) error {
	b.runs.Add(1)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	bt := &blockingTask{release: make(chan struct{})}
	s.AddTask(bt)
	s.Start()

	assert.Eventually(t, func() bool { return bt.runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, bt.runs.Load())

	close(bt.release)
	assert.Eventually(t, func() bool { return bt.runs.Load() >= 2 }, time.Second, time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}
