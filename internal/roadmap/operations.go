package roadmap

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Fields editable content of a node, links as newline-separated text
// Fields 节点可编辑内容，links 为换行分隔的文本
type Fields struct {
	Title       string
	Description string
	Color       string
	Links       string
}

// ParseLinks splits newline-separated text into links, trimming entries and dropping blanks
// ParseLinks 按行拆分链接，去除首尾空白并丢弃空行
func ParseLinks(text string) []string {
	links := []string{}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			links = append(links, line)
		}
	}
	return links
}

// AddRootNode creates a root below the last root and chains it as that root's child
// AddRootNode 在最后一个根节点下方创建新根节点并挂接到其 children
func (e *Engine) AddRootNode(ctx context.Context) (*Node, error) {
	last := e.tree.LastRoot()
	candidate := &Node{
		ID:       e.newID(),
		Title:    DefaultRootTitle,
		Color:    e.accent,
		Position: Position{X: RootStartX, Y: RootStartY},
		Expanded: true,
		Links:    []string{},
		Children: []string{},
	}
	if last != nil {
		candidate.Position = Position{X: last.Position.X, Y: last.Position.Y + RootSpacingY}
		candidate.Parent = last.ID
	}

	res, err := e.gateway.CreateNode(ctx, candidate.Clone())
	if err != nil {
		return nil, e.dropped("create-root", candidate.ID, err)
	}
	if res == nil || !res.Success {
		return nil, e.dropped("create-root", candidate.ID, nil)
	}
	stored, err := acceptNode(res.Node, candidate.ID)
	if err != nil {
		return nil, e.dropped("create-root", candidate.ID, err)
	}

	e.tree.Put(stored)
	if last != nil && last.ID != stored.ID {
		last.AppendChild(stored.ID)
		e.pushUpdate(ctx, last.ID, ChildrenPatch(last.Children))
	}
	e.logger.Debug("root node created", zap.String("nodeId", stored.ID))
	e.Refresh()
	return stored.Clone(), nil
}

// AddBranch asks the gateway for a child under parentID and stores the returned child and parent
// AddBranch 请求网关在 parentID 下创建分支，保存返回的子节点与父节点
func (e *Engine) AddBranch(ctx context.Context, parentID string) (*Node, error) {
	if parentID == "" {
		return nil, ErrNoSelection
	}
	if !e.tree.Has(parentID) {
		return nil, ErrNodeNotFound
	}
	req := BranchRequest{Title: DefaultBranchTitle, Color: e.accent}
	res, err := e.gateway.CreateBranch(ctx, parentID, req)
	if err != nil {
		return nil, e.dropped("create-branch", parentID, err)
	}
	if res == nil || !res.Success {
		return nil, e.dropped("create-branch", parentID, nil)
	}
	child, err := acceptNode(res.Node, "")
	if err != nil {
		return nil, e.dropped("create-branch", parentID, err)
	}
	parent, err := acceptNode(res.Parent, parentID)
	if err != nil {
		return nil, e.dropped("create-branch", parentID, err)
	}
	if parent.ID != parentID || child.ID == parentID {
		return nil, e.dropped("create-branch", parentID, errMismatchedNode)
	}

	e.tree.Put(child)
	e.tree.Put(parent)
	e.logger.Debug("branch created", zap.String("nodeId", child.ID), zap.String("parentId", parentID))
	e.Refresh()
	return child.Clone(), nil
}

// AddBranchToSelected adds a branch under the selected node
func (e *Engine) AddBranchToSelected(ctx context.Context) (*Node, error) {
	if e.selected == "" {
		return nil, ErrNoSelection
	}
	return e.AddBranch(ctx, e.selected)
}

// ToggleExpand flips the expanded flag and pushes it to the gateway
// ToggleExpand 切换展开状态并推送到网关
func (e *Engine) ToggleExpand(ctx context.Context, id string) (bool, error) {
	n, ok := e.tree.Get(id)
	if !ok {
		return false, ErrNodeNotFound
	}
	n.Expanded = !n.Expanded
	e.pushUpdate(ctx, id, ExpandedPatch(n.Expanded))
	e.Refresh()
	return n.Expanded, nil
}

// MinimizeAll collapses the node and every existing descendant, one update per node.
// A node without children is left alone.
// MinimizeAll 折叠节点及其所有子孙，每个节点单独推送一次更新
func (e *Engine) MinimizeAll(ctx context.Context, id string) (int, error) {
	n, ok := e.tree.Get(id)
	if !ok {
		return 0, ErrNodeNotFound
	}
	if len(n.Children) == 0 {
		return 0, nil
	}

	touched := 0
	collapse := func(node *Node) {
		node.Expanded = false
		e.pushUpdate(ctx, node.ID, ExpandedPatch(false))
		touched++
	}
	collapse(n)
	for _, cid := range e.tree.Descendants(id) {
		c, _ := e.tree.Get(cid)
		collapse(c)
	}
	e.Refresh()
	return touched, nil
}

// BeginEdit opens the edit form for id and returns its current fields
// BeginEdit 打开节点编辑，返回当前字段
func (e *Engine) BeginEdit(id string) (Fields, error) {
	n, ok := e.tree.Get(id)
	if !ok {
		return Fields{}, ErrNodeNotFound
	}
	e.editing = id
	e.Refresh()
	return Fields{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Links:       strings.Join(n.Links, "\n"),
	}, nil
}

// CancelEdit closes the edit form without saving
func (e *Engine) CancelEdit() {
	if e.editing == "" {
		return
	}
	e.editing = ""
	e.Refresh()
}

// SaveEdit submits the form of the node being edited
func (e *Engine) SaveEdit(ctx context.Context, f Fields) (*Node, error) {
	if e.editing == "" {
		return nil, ErrNotEditing
	}
	return e.UpdateFields(ctx, e.editing, f)
}

// UpdateFields sends title, description, color and links; on success the server copy replaces the node.
// On failure the edit form stays open.
// UpdateFields 提交可编辑字段，成功后以服务端副本替换本地节点
func (e *Engine) UpdateFields(ctx context.Context, id string, f Fields) (*Node, error) {
	if !e.tree.Has(id) {
		return nil, ErrNodeNotFound
	}
	links := ParseLinks(f.Links)
	p := Patch{
		Title:       ptr(f.Title),
		Description: ptr(f.Description),
		Color:       ptr(f.Color),
		Links:       &links,
	}
	res, err := e.gateway.UpdateNode(ctx, id, p)
	if err != nil {
		return nil, e.dropped("update", id, err)
	}
	if res == nil || !res.Success {
		return nil, e.dropped("update", id, nil)
	}
	stored, err := acceptNode(res.Node, id)
	if err != nil {
		return nil, e.dropped("update", id, err)
	}
	if stored.ID != id {
		return nil, e.dropped("update", id, errMismatchedNode)
	}

	e.tree.Put(stored)
	if e.editing == id {
		e.editing = ""
	}
	e.Refresh()
	return stored.Clone(), nil
}

// DeleteNode removes id after the gateway confirms. With cascade on, the id is detached from its
// parent and its subtree is removed as well. Returns the removed ids.
// DeleteNode 网关确认后删除节点；级联模式下同时从父节点移除引用并删除整个子树
func (e *Engine) DeleteNode(ctx context.Context, id string) ([]string, error) {
	n, ok := e.tree.Get(id)
	if !ok {
		return nil, ErrNodeNotFound
	}
	res, err := e.gateway.DeleteNode(ctx, id)
	if err != nil {
		return nil, e.dropped("delete", id, err)
	}
	if res == nil || !res.Success {
		return nil, e.dropped("delete", id, nil)
	}

	removed := []string{id}
	if e.cascadeDelete {
		if p, ok := e.tree.Get(n.Parent); ok {
			p.RemoveChild(id)
		}
		removed = append(removed, e.tree.Descendants(id)...)
	}
	for _, rid := range removed {
		e.tree.Remove(rid)
		if e.selected == rid {
			e.selected = ""
		}
		if e.editing == rid {
			e.editing = ""
		}
		if e.drag != nil && e.drag.id == rid {
			e.drag = nil
		}
	}
	e.logger.Debug("node deleted", zap.String("nodeId", id), zap.Int("count", len(removed)))
	e.Refresh()
	return removed, nil
}
