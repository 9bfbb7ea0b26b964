package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dao"
	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	"github.com/haierkeys/fast-roadmap-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *dao.Dao {
	t.Helper()
	cfg := dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "roadmap.sqlite3"),
		AutoMigrate: true,
	}
	db, err := dao.NewDBEngineWithConfig(cfg, nil)
	require.NoError(t, err)
	wq := writequeue.New(&writequeue.Config{QueueCapacity: 16, WriteTimeout: 5 * time.Second, IdleTimeout: time.Minute}, nil)
	t.Cleanup(func() {
		_ = wq.Shutdown(context.Background())
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return dao.New(db, context.Background(), dao.WithConfig(&cfg), dao.WithWriteQueueManager(wq))
}

func newTestNodeService(t *testing.T) NodeService {
	return NewNodeService(dao.NewRoadmapNodeRepository(newTestDao(t)), nil)
}

func strPtr(s string) *string { return &s }

func codeOf(t *testing.T, err error) int {
	t.Helper()
	var c *code.Code
	require.True(t, errors.As(err, &c), "expected *code.Code, got %v", err)
	return c.Code()
}

func TestNodeService_CreateDefaults(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, &dto.NodeCreateRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, n.NodeID)
	assert.Equal(t, "New Node", n.Title)
	assert.Equal(t, "#3498db", n.Color)
	assert.Equal(t, dto.PositionDTO{X: 100, Y: 100}, n.Position)
	assert.True(t, n.Expanded)
	assert.Equal(t, []string{}, n.Links)
	assert.Equal(t, []string{}, n.Children)
	assert.Nil(t, n.Parent)
	assert.Zero(t, n.Level)
}

func TestNodeService_CreateReplacesKeepingOrder(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "a", Title: strPtr("A")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &dto.NodeCreateRequest{ID: "b"})
	require.NoError(t, err)

	replaced, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "a", Description: strPtr("again")})
	require.NoError(t, err)
	assert.Equal(t, "New Node", replaced.Title, "replace resets omitted fields to defaults")
	assert.Equal(t, "again", replaced.Description)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].NodeID)
	assert.Equal(t, "b", list[1].NodeID)
}

func TestNodeService_UpdateWhitelist(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "a", Title: strPtr("A"), Description: strPtr("keep")})
	require.NoError(t, err)

	expanded := false
	links := []string{"https://example.com"}
	n, err := svc.Update(ctx, "a", &dto.NodeUpdateRequest{
		Expanded: &expanded,
		Links:    &links,
		Position: &dto.PositionDTO{X: 7, Y: 9},
	})
	require.NoError(t, err)
	assert.False(t, n.Expanded)
	assert.Equal(t, links, n.Links)
	assert.Equal(t, dto.PositionDTO{X: 7, Y: 9}, n.Position)
	assert.Equal(t, "A", n.Title)
	assert.Equal(t, "keep", n.Description)

	_, err = svc.Update(ctx, "ghost", &dto.NodeUpdateRequest{Title: strPtr("x")})
	assert.Equal(t, code.ErrorNodeNotFound.Code(), codeOf(t, err))
}

func TestNodeService_CreateBranch(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{
		ID:       "p",
		Color:    strPtr("#e74c3c"),
		Position: &dto.PositionDTO{X: 50, Y: 50},
	})
	require.NoError(t, err)

	first, err := svc.CreateBranch(ctx, "p", &dto.BranchCreateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New Branch", first.Node.Title)
	assert.Equal(t, "#e74c3c", first.Node.Color)
	assert.Equal(t, dto.PositionDTO{X: 300, Y: 50}, first.Node.Position)
	assert.Equal(t, 1, first.Node.Level)
	require.NotNil(t, first.Node.Parent)
	assert.Equal(t, "p", *first.Node.Parent)
	assert.Equal(t, []string{first.Node.NodeID}, first.Parent.Children)

	second, err := svc.CreateBranch(ctx, "p", &dto.BranchCreateRequest{ID: "c2", Title: "Second", Color: "#2ecc71"})
	require.NoError(t, err)
	assert.Equal(t, "c2", second.Node.NodeID)
	assert.Equal(t, dto.PositionDTO{X: 300, Y: 110}, second.Node.Position)
	assert.Equal(t, "#2ecc71", second.Node.Color)
	assert.Equal(t, []string{first.Node.NodeID, "c2"}, second.Parent.Children)

	_, err = svc.CreateBranch(ctx, "ghost", &dto.BranchCreateRequest{})
	assert.Equal(t, code.ErrorParentNotFound.Code(), codeOf(t, err))
}

func TestNodeService_DeleteSubtree(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "root"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "root", &dto.BranchCreateRequest{ID: "a"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "a", &dto.BranchCreateRequest{ID: "a1"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "a1", &dto.BranchCreateRequest{ID: "a11"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "root", &dto.BranchCreateRequest{ID: "b"})
	require.NoError(t, err)

	// a dangling child id and a cycle back to a must not break the walk
	_, err = svc.Update(ctx, "a11", &dto.NodeUpdateRequest{Children: &[]string{"missing", "a"}})
	require.NoError(t, err)

	removed, err := svc.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a1", "a11"}, removed)

	root, err := svc.Get(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, root.Children)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.Delete(ctx, "a")
	assert.Equal(t, code.ErrorNodeNotFound.Code(), codeOf(t, err))
}

func TestNodeService_ExportImport(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "root", Title: strPtr("Plan <v1>"), Position: &dto.PositionDTO{X: 50, Y: 50}})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "root", &dto.BranchCreateRequest{ID: "child"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{\n  \"root\": {\n    \"id\": \"root\""), out)
	assert.Contains(t, out, "\"title\": \"Plan <v1>\"")
	assert.Contains(t, out, "\"parent\": null")
	assert.Less(t, strings.Index(out, "\"root\": {"), strings.Index(out, "\"child\": {"))

	other := newTestNodeService(t)
	_, err = other.Create(ctx, &dto.NodeCreateRequest{ID: "stale"})
	require.NoError(t, err)
	n, err := other.Import(ctx, strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var again bytes.Buffer
	require.NoError(t, other.Export(ctx, &again))
	assert.Equal(t, out, again.String())

	_, err = other.Get(ctx, "stale")
	assert.Equal(t, code.ErrorNodeNotFound.Code(), codeOf(t, err))

	_, err = other.Import(ctx, strings.NewReader("{not json"))
	assert.Equal(t, code.ErrorImportInvalid.Code(), codeOf(t, err))
	count, err := other.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "invalid import keeps stored nodes")
}

func TestNodeService_Tree(t *testing.T) {
	svc := newTestNodeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.NodeCreateRequest{ID: "r"})
	require.NoError(t, err)
	_, err = svc.CreateBranch(ctx, "r", &dto.BranchCreateRequest{ID: "c"})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "c"}, tree.IDs())
	assert.Equal(t, []string{"c"}, tree.Descendants("r"))
	require.Len(t, tree.Connectors(), 1)
}

type failingNodeRepo struct {
	domain.RoadmapNodeRepository
}

func (failingNodeRepo) List(context.Context) ([]*domain.RoadmapNode, error) {
	return nil, errors.New("disk on fire")
}

func (failingNodeRepo) GetByNodeID(context.Context, string) (*domain.RoadmapNode, error) {
	return nil, errors.New("disk on fire")
}

func (failingNodeRepo) Count(context.Context) (int64, error) {
	return 0, errors.New("disk on fire")
}

func TestNodeService_RepositoryErrors(t *testing.T) {
	svc := NewNodeService(failingNodeRepo{}, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.Equal(t, code.ErrorDBQuery.Code(), codeOf(t, err))
	_, err = svc.Get(ctx, "x")
	assert.Equal(t, code.ErrorDBQuery.Code(), codeOf(t, err))
	assert.Error(t, svc.Export(ctx, &bytes.Buffer{}))
}
