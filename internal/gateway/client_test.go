package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/app"
	"github.com/haierkeys/fast-roadmap-service/internal/dao"
	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/internal/routers"
	"github.com/haierkeys/fast-roadmap-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "http://", "::nope"} {
		_, err := New(u)
		assert.Error(t, err, u)
	}
	c, err := New("http://127.0.0.1:9000/")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", c.BaseURL())
}

func TestClient_UnwrapsEnvelope(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/roadmap/node/a":
			_, _ = io.WriteString(w, `{"code":1,"status":true,"message":"Success","data":{"node":{"id":"a","title":"T","expanded":true,"parent":null}}}`)
		case "/api/roadmap/node/missing":
			_, _ = io.WriteString(w, `{"code":2001,"status":false,"message":"Node not found"}`)
		case "/api/roadmap":
			_, _ = io.WriteString(w, `{"code":1,"status":true,"data":{"nodes":[{"id":"a"},{"id":"b","parent":"a"}]}}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	title := "T"
	res, err := c.UpdateNode(ctx, "a", roadmap.Patch{Title: &title})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "a", res.Node.ID)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.JSONEq(t, `{"title":"T"}`, gotBody)

	res, err = c.UpdateNode(ctx, "missing", roadmap.Patch{Title: &title})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Node)

	del, err := c.DeleteNode(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, del.Success)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Empty(t, gotBody)

	nodes, err := c.FetchRoadmap(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[1].Parent)
	assert.Equal(t, []string{}, nodes[0].Children)

	_, err = c.CreateBranch(ctx, "x", roadmap.BranchRequest{})
	assert.Error(t, err)
	assert.Equal(t, "/api/roadmap/node/x/branch", gotPath)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	_, err = c.DeleteNode(context.Background(), "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_NotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.FetchRoadmap(context.Background())
	assert.Error(t, err)
}

func newLiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := app.ParseConfig(nil)
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(t.TempDir(), "roadmap.sqlite3")
	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)
	a, err := app.NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)

	v := validator.NewCustomValidator()
	binding.Validator = v
	uni, err := validator.NewTranslator(v)
	require.NoError(t, err)

	srv := httptest.NewServer(routers.NewRouter(a, uni))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})
	return srv
}

func TestClient_EngineAgainstServer(t *testing.T) {
	srv := newLiveServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	e := roadmap.NewEngine(c)
	first, err := e.AddRootNode(ctx)
	require.NoError(t, err)
	second, err := e.AddRootNode(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.Parent)

	child, err := e.AddBranch(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Position.X+250, child.Position.X)
	assert.Equal(t, second.ID, child.Parent)
	assert.Equal(t, 1, child.Level)

	// 另一个编辑器拉取到同样的路线图
	other := roadmap.NewEngine(c)
	require.NoError(t, other.Pull(ctx))
	assert.Equal(t, e.Tree().IDs(), other.Tree().IDs())
	got, ok := other.Node(first.ID)
	require.True(t, ok)
	assert.Equal(t, []string{second.ID}, got.Children)

	removed, err := e.DeleteNode(ctx, second.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{second.ID, child.ID}, removed)

	require.NoError(t, other.Pull(ctx))
	assert.Equal(t, []string{first.ID}, other.Tree().IDs())

	_, err = e.DeleteNode(ctx, first.ID)
	require.NoError(t, err)
	_, err = c.DeleteNode(ctx, first.ID)
	require.NoError(t, err)

	nodes, err := c.FetchRoadmap(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	raw, err := json.Marshal(roadmap.BranchRequest{Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"title":"x"`)
}
