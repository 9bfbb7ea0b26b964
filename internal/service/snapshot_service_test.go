package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dao"
	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshotService(t *testing.T, cfg SnapshotConfig) (*snapshotService, NodeService) {
	t.Helper()
	d := newTestDao(t)
	nodes := NewNodeService(dao.NewRoadmapNodeRepository(d), nil)
	svc := NewSnapshotService(nodes, dao.NewRoadmapSnapshotRepository(d), cfg, nil).(*snapshotService)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, nodes
}

func TestSnapshotService_Disabled(t *testing.T) {
	svc, _ := newTestSnapshotService(t, SnapshotConfig{Enabled: false, SavePath: t.TempDir()})
	_, err := svc.Snapshot(context.Background(), SnapshotTriggerManual)
	assert.ErrorIs(t, err, code.ErrorSnapshotDisabled)
}

func TestSnapshotService_WritesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	svc, nodes := newTestSnapshotService(t, SnapshotConfig{Enabled: true, SavePath: dir, Keep: 2})
	ctx := context.Background()

	_, err := nodes.Create(ctx, &dto.NodeCreateRequest{ID: "root"})
	require.NoError(t, err)

	var written []*dto.SnapshotDTO
	for i := 0; i < 3; i++ {
		s, err := svc.Snapshot(ctx, "")
		require.NoError(t, err)
		written = append(written, s)
	}
	assert.Equal(t, SnapshotTriggerManual, written[0].Trigger)
	assert.Equal(t, 1, written[0].NodeCount)
	assert.Equal(t, "roadmap-20260301-120001.000.json", written[0].FileName)

	_, err = os.Stat(written[0].Path)
	assert.True(t, os.IsNotExist(err), "oldest snapshot is pruned")

	f, err := os.Open(written[2].Path)
	require.NoError(t, err)
	defer f.Close()
	tree, err := roadmap.ReadJSON(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, tree.IDs())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, written[2].FileName, list[0].FileName)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSnapshotService_SameMillisecondKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	svc, nodes := newTestSnapshotService(t, SnapshotConfig{Enabled: true, SavePath: dir, Keep: 1})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := nodes.Create(ctx, &dto.NodeCreateRequest{ID: "root"})
	require.NoError(t, err)

	first, err := svc.Snapshot(ctx, "")
	require.NoError(t, err)
	second, err := svc.Snapshot(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, "roadmap-20260301-120000.000.json", first.FileName)
	assert.Equal(t, "roadmap-20260301-120000.000-1.json", second.FileName)
	assert.NotEqual(t, first.Path, second.Path)
	assert.FileExists(t, second.Path)
	assert.NoFileExists(t, first.Path)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.FileName, list[0].FileName)
}

func TestSnapshotService_PruneKeepsSharedPath(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTestSnapshotService(t, SnapshotConfig{Enabled: true, SavePath: dir, Keep: 1})
	ctx := context.Background()

	path := filepath.Join(dir, "roadmap-shared.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	for i := 0; i < 2; i++ {
		_, err := svc.repo.Create(ctx, &domain.RoadmapSnapshot{FileName: "roadmap-shared.json", Path: path, Trigger: SnapshotTriggerManual})
		require.NoError(t, err)
	}

	svc.prune(ctx, 1)

	assert.FileExists(t, path)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSnapshotService_SetConfig(t *testing.T) {
	svc, _ := newTestSnapshotService(t, SnapshotConfig{})
	_, err := svc.Snapshot(context.Background(), SnapshotTriggerCron)
	assert.ErrorIs(t, err, code.ErrorSnapshotDisabled)

	dir := filepath.Join(t.TempDir(), "nested")
	svc.SetConfig(SnapshotConfig{Enabled: true, SavePath: dir})
	assert.Equal(t, dir, svc.Config().SavePath)

	s, err := svc.Snapshot(context.Background(), SnapshotTriggerCron)
	require.NoError(t, err)
	assert.Equal(t, SnapshotTriggerCron, s.Trigger)
	assert.Equal(t, filepath.Join(dir, s.FileName), s.Path)
}
