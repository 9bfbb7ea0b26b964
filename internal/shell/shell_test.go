package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memGateway 内存网关，按服务端的方式回显记录
type memGateway struct {
	nodes  map[string]*roadmap.Node
	refuse bool
	seq    int
	puts   int
}

func newMemGateway() *memGateway {
	return &memGateway{nodes: map[string]*roadmap.Node{}}
}

func (g *memGateway) CreateNode(_ context.Context, n *roadmap.Node) (*roadmap.NodeResult, error) {
	if g.refuse {
		return &roadmap.NodeResult{}, nil
	}
	g.nodes[n.ID] = n.Clone()
	return &roadmap.NodeResult{Success: true, Node: n.Clone()}, nil
}

func (g *memGateway) UpdateNode(_ context.Context, id string, p roadmap.Patch) (*roadmap.NodeResult, error) {
	n, ok := g.nodes[id]
	if g.refuse || !ok {
		return &roadmap.NodeResult{}, nil
	}
	g.puts++
	p.Apply(n)
	return &roadmap.NodeResult{Success: true, Node: n.Clone()}, nil
}

func (g *memGateway) DeleteNode(_ context.Context, id string) (*roadmap.DeleteResult, error) {
	if _, ok := g.nodes[id]; g.refuse || !ok {
		return &roadmap.DeleteResult{}, nil
	}
	delete(g.nodes, id)
	return &roadmap.DeleteResult{Success: true}, nil
}

func (g *memGateway) CreateBranch(_ context.Context, parentID string, req roadmap.BranchRequest) (*roadmap.BranchResult, error) {
	p, ok := g.nodes[parentID]
	if g.refuse || !ok {
		return &roadmap.BranchResult{}, nil
	}
	g.seq++
	n := len(p.Children)
	child := &roadmap.Node{
		ID:       fmt.Sprintf("b%d", g.seq),
		Title:    req.Title,
		Color:    req.Color,
		Position: roadmap.Position{X: p.Position.X + 250, Y: p.Position.Y + float64(n*120-n*60)},
		Expanded: true,
		Parent:   parentID,
		Level:    p.Level + 1,
	}
	p.AppendChild(child.ID)
	g.nodes[child.ID] = child.Clone()
	return &roadmap.BranchResult{Success: true, Node: child, Parent: p.Clone()}, nil
}

type fixture struct {
	sh      *Shell
	gw      *memGateway
	out     *bytes.Buffer
	answers []bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{gw: newMemGateway(), out: &bytes.Buffer{}}
	seq := 0
	engine := roadmap.NewEngine(f.gw, roadmap.WithIDGenerator(func() string {
		seq++
		return fmt.Sprintf("r%d", seq)
	}))
	f.sh = New(engine, WithOutput(f.out), WithConfirm(func(string) bool {
		if len(f.answers) == 0 {
			return false
		}
		a := f.answers[0]
		f.answers = f.answers[1:]
		return a
	}))
	return f
}

func (f *fixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	f.out.Reset()
	for _, l := range lines {
		require.NoError(t, f.sh.Exec(context.Background(), l), l)
	}
	return f.out.String()
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"set", "a", "title", "Hello World"}, ParseArgs(`set a title "Hello World"`))
	assert.Equal(t, []string{"set", "a", "desc", ""}, ParseArgs(`set a desc ""`))
	assert.Empty(t, ParseArgs("   "))
}

func TestShell_BranchNeedsSelection(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "branch")
	assert.Contains(t, out, AlertNoSelection)
	assert.Empty(t, f.gw.nodes)

	out = f.run(t, "add-root", "select r1", "branch")
	assert.Contains(t, out, "created b1 under r1")
	assert.Equal(t, "roadmap[r1]> ", f.sh.Prompt())

	out = f.run(t, "tree")
	assert.Contains(t, out, "- Root Node (r1)")
	assert.Contains(t, out, "  - New Branch (b1)")
}

func TestShell_EditFlow(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root", "edit r1")
	assert.Equal(t, "edit(r1)> ", f.sh.Prompt())

	err := f.sh.Exec(context.Background(), "color nope!")
	assert.Error(t, err)

	f.run(t, `title "Go Basics"`, "links https://go.dev  https://pkg.go.dev ", "color #e67e22", "save")
	n, ok := f.sh.engine.Node("r1")
	require.True(t, ok)
	assert.Equal(t, "Go Basics", n.Title)
	assert.Equal(t, "#e67e22", n.Color)
	assert.Equal(t, []string{"https://go.dev", "https://pkg.go.dev"}, n.Links)
	assert.Equal(t, promptDefault, f.sh.Prompt())

	f.run(t, "edit r1", "title Other", "cancel")
	n, _ = f.sh.engine.Node("r1")
	assert.Equal(t, "Go Basics", n.Title)
}

func TestShell_RefusedChangesAreSilent(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root")
	f.gw.refuse = true

	out := f.run(t, "add-root", "set r1 title X")
	assert.Empty(t, out)

	out = f.run(t, "edit r1", "title Y", "save")
	assert.NotContains(t, out, "saved")
	n, _ := f.sh.engine.Node("r1")
	assert.Equal(t, "Root Node", n.Title)
	assert.Equal(t, 1, f.sh.engine.Tree().Len())
	// 保存失败时保持编辑模式
	assert.Equal(t, "edit(r1)> ", f.sh.Prompt())
}

func TestShell_DeleteAsksFirst(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root", "branch r1")

	f.answers = []bool{false}
	f.run(t, "delete r1")
	assert.Equal(t, 2, f.sh.engine.Tree().Len())

	f.answers = []bool{true}
	out := f.run(t, "delete r1")
	assert.Contains(t, out, "deleted 2 node(s)")
	assert.Zero(t, f.sh.engine.Tree().Len())

	f.run(t, "add-root")
	f.run(t, "delete -y r2")
	assert.Zero(t, f.sh.engine.Tree().Len())
}

func TestShell_DragSendsOneUpdate(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root")
	before := f.gw.puts

	out := f.run(t, "drag r1 30 -10 5")
	assert.Contains(t, out, "r1 at (80,40)")
	assert.Equal(t, before+1, f.gw.puts)
	assert.Equal(t, roadmap.Position{X: 80, Y: 40}, f.gw.nodes["r1"].Position)

	f.run(t, "move r1 0 0")
	assert.Equal(t, before+2, f.gw.puts)
}

func TestShell_ToggleAndList(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root", "branch r1", "branch b1")

	out := f.run(t, "minimize r1", "ls")
	assert.Contains(t, out, "3 nodes collapsed")
	assert.Contains(t, out, "1 visible, 0 connectors")

	out = f.run(t, "toggle r1", "ls")
	assert.Contains(t, out, "r1 expanded")
	assert.Contains(t, out, "2 visible, 1 connectors")
}

func TestShell_ExportImportRender(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t)
	f.run(t, "add-root", "branch r1")

	exported := filepath.Join(dir, "roadmap.json")
	f.run(t, "export "+exported)
	assert.FileExists(t, exported)

	f.answers = []bool{true}
	f.run(t, "clear")
	assert.Zero(t, f.sh.engine.Tree().Len())

	out := f.run(t, "import "+exported)
	assert.Contains(t, out, "imported 2 nodes")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0644))
	out = f.run(t, "import "+bad)
	assert.Contains(t, out, AlertInvalidFile)
	assert.Equal(t, 2, f.sh.engine.Tree().Len())

	svgPath := filepath.Join(dir, "roadmap")
	f.run(t, "render "+svgPath)
	data, err := os.ReadFile(svgPath + ".svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestShell_Misc(t *testing.T) {
	f := newFixture(t)
	f.run(t, "add-root")

	out := f.run(t, "inspect r1")
	assert.Contains(t, out, "Root Node")
	assert.Contains(t, out, "visible=true")

	f.run(t, "color #2ecc71", "add-root")
	n, _ := f.sh.engine.Node("r2")
	assert.Equal(t, "#2ecc71", n.Color)

	out = f.run(t, "help")
	for _, name := range commandOrder {
		assert.Contains(t, out, name)
	}

	ctx := context.Background()
	assert.ErrorIs(t, f.sh.Exec(ctx, "quit"), ErrQuit)
	assert.Error(t, f.sh.Exec(ctx, "frobnicate"))
	assert.ErrorIs(t, f.sh.Exec(ctx, "select nope"), roadmap.ErrNodeNotFound)
	assert.ErrorIs(t, f.sh.Exec(ctx, "pull"), roadmap.ErrFetchUnsupported)
}
