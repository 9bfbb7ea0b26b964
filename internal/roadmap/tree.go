package roadmap

import "slices"

// Tree is the id -> Node mapping with explicit insertion order.
// roots keeps level-0 ids in insertion order so the last root is deterministic.
// Tree 维护 id -> Node 映射及插入顺序，roots 按插入顺序记录所有根节点
type Tree struct {
	nodes map[string]*Node
	order []string
	roots []string
}

func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

func (t *Tree) Len() int {
	return len(t.order)
}

// Get returns the stored node, callers that mutate it mutate the tree
func (t *Tree) Get(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

func (t *Tree) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Put inserts n, or replaces the node with the same id keeping its place in the order
// Put 插入节点，若 id 已存在则替换并保留原有顺序
func (t *Tree) Put(n *Node) {
	n.fillSlices()
	old, exists := t.nodes[n.ID]
	t.nodes[n.ID] = n
	if !exists {
		t.order = append(t.order, n.ID)
		if n.IsRoot() {
			t.roots = append(t.roots, n.ID)
		}
		return
	}
	if old.IsRoot() != n.IsRoot() {
		t.rebuildRoots()
	}
}

// Remove deletes id from the mapping, references held by other nodes are left alone
// Remove 删除节点，不处理其他节点中的引用
func (t *Tree) Remove(id string) bool {
	if _, ok := t.nodes[id]; !ok {
		return false
	}
	delete(t.nodes, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	t.roots = slices.DeleteFunc(t.roots, func(s string) bool { return s == id })
	return true
}

func (t *Tree) rebuildRoots() {
	t.roots = t.roots[:0]
	for _, id := range t.order {
		if t.nodes[id].IsRoot() {
			t.roots = append(t.roots, id)
		}
	}
}

// IDs returns ids in insertion order
func (t *Tree) IDs() []string {
	return slices.Clone(t.order)
}

// Nodes returns the stored nodes in insertion order
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Roots returns level-0 nodes in insertion order
func (t *Tree) Roots() []*Node {
	out := make([]*Node, 0, len(t.roots))
	for _, id := range t.roots {
		out = append(out, t.nodes[id])
	}
	return out
}

// LastRoot returns the most recently inserted root, or nil
// LastRoot 返回最后插入的根节点，没有时返回 nil
func (t *Tree) LastRoot() *Node {
	if len(t.roots) == 0 {
		return nil
	}
	return t.nodes[t.roots[len(t.roots)-1]]
}

// Descendants lists every existing node reachable through children, depth-first preorder.
// Dangling ids are skipped and each node is listed once even when children form a cycle.
// Descendants 深度优先列出所有可达子孙节点，跳过悬空 id，遇到环时每个节点只出现一次
func (t *Tree) Descendants(id string) []string {
	start, ok := t.nodes[id]
	if !ok {
		return nil
	}
	visited := map[string]struct{}{id: {}}
	var out []string
	stack := reversed(start.Children)
	for len(stack) > 0 {
		cid := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cid]; seen {
			continue
		}
		visited[cid] = struct{}{}
		c, ok := t.nodes[cid]
		if !ok {
			continue
		}
		out = append(out, cid)
		stack = append(stack, reversed(c.Children)...)
	}
	return out
}

// IsVisible walks the parent chain: a node is visible when it has no parent, its parent is
// missing, or its parent is expanded and visible. A parent cycle ends the walk as visible.
// IsVisible 沿父链判断可见性；无父节点或父节点不存在时可见；父链成环时视为可见
func (t *Tree) IsVisible(id string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	seen := map[string]struct{}{id: {}}
	for n.Parent != "" {
		p, ok := t.nodes[n.Parent]
		if !ok {
			return true
		}
		if !p.Expanded {
			return false
		}
		if _, loop := seen[p.ID]; loop {
			return true
		}
		seen[p.ID] = struct{}{}
		n = p
	}
	return true
}

// VisibleNodes returns visible nodes in insertion order
func (t *Tree) VisibleNodes() []*Node {
	var out []*Node
	for _, id := range t.order {
		if t.IsVisible(id) {
			out = append(out, t.nodes[id])
		}
	}
	return out
}

// Connectors returns one connector per (visible expanded parent, visible child) pair
// Connectors 为每个“可见且展开的父节点 × 可见子节点”生成一条连接线
func (t *Tree) Connectors() []Connector {
	var out []Connector
	for _, id := range t.order {
		p := t.nodes[id]
		if len(p.Children) == 0 || !p.Expanded || !t.IsVisible(id) {
			continue
		}
		for _, cid := range p.Children {
			c, ok := t.nodes[cid]
			if !ok || !t.IsVisible(cid) {
				continue
			}
			out = append(out, NewConnector(p, c))
		}
	}
	return out
}

// Clone deep-copies the tree
func (t *Tree) Clone() *Tree {
	c := &Tree{
		nodes: make(map[string]*Node, len(t.nodes)),
		order: slices.Clone(t.order),
		roots: slices.Clone(t.roots),
	}
	for id, n := range t.nodes {
		c.nodes[id] = n.Clone()
	}
	return c
}

func reversed(ids []string) []string {
	out := slices.Clone(ids)
	slices.Reverse(out)
	return out
}
