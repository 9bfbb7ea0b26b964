package dao

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	cfg := DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "db", "roadmap.sqlite3"),
		AutoMigrate: true,
	}
	db, err := NewDBEngineWithConfig(cfg, nil)
	require.NoError(t, err)

	wq := writequeue.New(&writequeue.Config{QueueCapacity: 16, WriteTimeout: 5 * time.Second, IdleTimeout: time.Minute}, nil)
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, context.Background(), WithConfig(&cfg), WithWriteQueueManager(wq))
}

func TestRoadmapNodeRepository_CRUD(t *testing.T) {
	repo := NewRoadmapNodeRepository(newTestDao(t))
	ctx := context.Background()

	_, err := repo.GetByNodeID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	created, err := repo.Create(ctx, &domain.RoadmapNode{
		NodeID:   "root",
		Title:    "Root",
		Color:    "#3498db",
		Position: domain.RoadmapPosition{X: 50, Y: 50},
		Expanded: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, []string{}, created.Links)

	_, err = repo.Create(ctx, &domain.RoadmapNode{NodeID: "child", Title: "Child", Parent: "root", Level: 1})
	require.NoError(t, err)

	got, err := repo.GetByNodeID(ctx, "root")
	require.NoError(t, err)
	got.Expanded = false
	got.Links = []string{"https://go.dev"}
	got.Children = []string{"child"}
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	got, err = repo.GetByNodeID(ctx, "root")
	require.NoError(t, err)
	assert.False(t, got.Expanded)
	assert.Equal(t, []string{"https://go.dev"}, got.Links)
	assert.Equal(t, []string{"child"}, got.Children)
	assert.Equal(t, domain.RoadmapPosition{X: 50, Y: 50}, got.Position)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "root", list[0].NodeID)
	assert.Equal(t, "child", list[1].NodeID)

	_, err = repo.Update(ctx, &domain.RoadmapNode{NodeID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	require.NoError(t, repo.DeleteByNodeIDs(ctx, []string{"child", "ghost"}))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRoadmapNodeRepository_ReplaceAllKeepsOrder(t *testing.T) {
	repo := NewRoadmapNodeRepository(newTestDao(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.RoadmapNode{NodeID: "old"})
	require.NoError(t, err)

	err = repo.ReplaceAll(ctx, []*domain.RoadmapNode{
		{NodeID: "z"}, {NodeID: "a"}, {NodeID: "m"},
	})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, n := range list {
		ids = append(ids, n.NodeID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestRoadmapNodeRepository_ReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	d := newTestDao(t)
	repo := NewRoadmapNodeRepository(d)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.RoadmapNode{NodeID: "kept", Title: "Kept"})
	require.NoError(t, err)
	require.NoError(t, d.DB(ctx).Exec(`CREATE TRIGGER reject_title BEFORE INSERT ON roadmap_node
WHEN NEW.title = 'reject' BEGIN SELECT RAISE(ABORT, 'rejected title'); END`).Error)

	err = repo.ReplaceAll(ctx, []*domain.RoadmapNode{
		{NodeID: "a", Title: "A"}, {NodeID: "b", Title: "reject"},
	})
	require.Error(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "kept", list[0].NodeID)
	assert.Equal(t, "Kept", list[0].Title)
}

func TestRoadmapNodeRepository_TransactionRollsBack(t *testing.T) {
	repo := NewRoadmapNodeRepository(newTestDao(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		if _, err := tx.Create(ctx, &domain.RoadmapNode{NodeID: "a"}); err != nil {
			return err
		}
		if _, err := tx.GetByNodeID(ctx, "a"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	err = repo.Transaction(ctx, func(tx domain.RoadmapNodeRepository) error {
		_, err := tx.Create(ctx, &domain.RoadmapNode{NodeID: "b"})
		return err
	})
	require.NoError(t, err)
	_, err = repo.GetByNodeID(ctx, "b")
	assert.NoError(t, err)
}

func TestRoadmapSnapshotRepository(t *testing.T) {
	repo := NewRoadmapSnapshotRepository(newTestDao(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, &domain.RoadmapSnapshot{FileName: "a.json", Path: "/tmp/a.json", NodeCount: 2, Trigger: "manual"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.RoadmapSnapshot{FileName: "b.json", Path: "/tmp/b.json", Trigger: "cron"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.json", list[0].FileName)

	require.NoError(t, repo.Delete(ctx, first.ID))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNewDBEngineWithConfig_UnsupportedType(t *testing.T) {
	_, err := NewDBEngineWithConfig(DatabaseConfig{Type: "oracle"}, nil)
	assert.Error(t, err)
	_, err = NewDBEngineWithConfig(DatabaseConfig{Type: "sqlite"}, nil)
	assert.Error(t, err)
}
