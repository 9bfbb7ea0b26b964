package roadmap

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Defaults for freshly created nodes
// 新建节点的默认值
const (
	DefaultAccentColor = "#3498db"
	DefaultRootTitle   = "Root Node"
	DefaultBranchTitle = "New Branch"

	RootStartX   = 50
	RootStartY   = 50
	RootSpacingY = 150
)

// Engine owns the tree plus selection, editing and drag state.
// It is driven by a single controller and is not safe for concurrent use.
// Engine 持有路线图树与选中/编辑/拖拽状态，由单一控制方驱动，非并发安全
type Engine struct {
	tree       *Tree
	gateway    Gateway
	dispatcher Dispatcher
	logger     *zap.Logger

	accent        string
	cascadeDelete bool
	newID         func() string

	selected string
	editing  string
	drag     *dragState

	view     View
	onRender func(View)
}

// Option configures an Engine
type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDispatcher sets how fire-and-forget updates are run, InlineDispatcher by default
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		if d != nil {
			e.dispatcher = d
		}
	}
}

func WithAccentColor(color string) Option {
	return func(e *Engine) {
		if color != "" {
			e.accent = color
		}
	}
}

// WithCascadeDelete false keeps deleted ids in the parent's children and leaves the subtree in place
// WithCascadeDelete 为 false 时删除节点不清理父节点引用也不删除子树
func WithCascadeDelete(cascade bool) Option {
	return func(e *Engine) {
		e.cascadeDelete = cascade
	}
}

// WithIDGenerator replaces the node_<uuid> id generator
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithRenderHook registers fn to receive every refreshed view
func WithRenderHook(fn func(View)) Option {
	return func(e *Engine) {
		e.onRender = fn
	}
}

func NewEngine(gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		tree:          NewTree(),
		gateway:       gw,
		logger:        zap.NewNop(),
		accent:        DefaultAccentColor,
		cascadeDelete: true,
		newID:         NewNodeID,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dispatcher == nil {
		e.dispatcher = InlineDispatcher{Logger: e.logger}
	}
	e.view = BuildView(e.tree, "", "")
	return e
}

// NewNodeID returns a fresh client-side node id
func NewNodeID() string {
	return "node_" + uuid.NewString()
}

// Tree exposes the model for read access
func (e *Engine) Tree() *Tree {
	return e.tree
}

// Node returns a copy of the stored node
func (e *Engine) Node(id string) (*Node, bool) {
	n, ok := e.tree.Get(id)
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (e *Engine) AccentColor() string {
	return e.accent
}

func (e *Engine) SetAccentColor(color string) {
	if color != "" {
		e.accent = color
	}
}

// View returns the last refreshed view
func (e *Engine) View() View {
	return e.view
}

// Refresh recomputes the view and hands it to the render hook
// Refresh 重新计算视图并交给渲染回调
func (e *Engine) Refresh() View {
	e.view = BuildView(e.tree, e.selected, e.editing)
	if e.onRender != nil {
		e.onRender(e.view)
	}
	return e.view
}

func (e *Engine) Select(id string) error {
	if !e.tree.Has(id) {
		return ErrNodeNotFound
	}
	e.selected = id
	e.Refresh()
	return nil
}

func (e *Engine) Deselect() {
	if e.selected == "" {
		return
	}
	e.selected = ""
	e.Refresh()
}

func (e *Engine) Selected() string {
	return e.selected
}

func (e *Engine) Editing() string {
	return e.editing
}

// Clear empties the local model without calling the gateway
// Clear 清空本地模型，不调用网关
func (e *Engine) Clear() {
	e.replaceTree(NewTree())
}

// Pull replaces the model with the gateway's full roadmap
// Pull 用网关返回的完整路线图替换本地模型
func (e *Engine) Pull(ctx context.Context) error {
	f, ok := e.gateway.(Fetcher)
	if !ok {
		return ErrFetchUnsupported
	}
	nodes, err := f.FetchRoadmap(ctx)
	if err != nil {
		return e.dropped("pull", "", err)
	}
	t := NewTree()
	for _, n := range nodes {
		c, err := acceptNode(n, "")
		if err != nil {
			return e.dropped("pull", "", err)
		}
		t.Put(c)
	}
	e.replaceTree(t)
	e.logger.Debug("roadmap pulled", zap.Int("count", t.Len()))
	return nil
}

func (e *Engine) replaceTree(t *Tree) {
	e.tree = t
	e.selected = ""
	e.editing = ""
	e.drag = nil
	e.Refresh()
}

// pushUpdate dispatches a patch whose response the local state does not wait for
func (e *Engine) pushUpdate(ctx context.Context, id string, p Patch) {
	p = p.Clone()
	gw := e.gateway
	e.dispatcher.Dispatch(ctx, "update:"+id, func(ctx context.Context) error {
		res, err := gw.UpdateNode(ctx, id, p)
		if err != nil {
			return errors.Wrapf(err, "update node %s", id)
		}
		if res == nil || !res.Success {
			return errors.Wrapf(ErrSyncFailed, "update node %s", id)
		}
		return nil
	})
}

// dropped logs a change the gateway did not apply and returns ErrSyncFailed wrapping the cause
func (e *Engine) dropped(action, id string, cause error) error {
	e.logger.Debug("change dropped",
		zap.String("action", action),
		zap.String("nodeId", id),
		zap.NamedError("cause", cause))
	if cause == nil {
		return errors.Wrap(ErrSyncFailed, action)
	}
	return errors.Wrapf(ErrSyncFailed, "%s: %v", action, cause)
}
