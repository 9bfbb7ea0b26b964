package roadmap

import "math"

// viewMargin padding around the node bounding box
const viewMargin = 40

// NodeView one rendered node with the controls it shows
// NodeView 渲染用节点及其可用操作
type NodeView struct {
	Node *Node
	// CanBranch the add-branch control is shown on expanded nodes and on roots
	CanBranch bool
	// CanToggle expand and minimize controls are shown only on nodes with children
	CanToggle bool
	Selected  bool
	Editing   bool
}

// Bounds canvas area covered by the visible nodes
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// View a full redraw of the visible roadmap. Node records are copies.
// View 一次完整重绘所需的数据，节点为副本
type View struct {
	Nodes      []NodeView
	Connectors []Connector
	Bounds     Bounds
	Selected   string
	Editing    string
}

// BuildView derives the drawable state from the tree
// BuildView 根据树生成可绘制状态
func BuildView(t *Tree, selected, editing string) View {
	v := View{Selected: selected, Editing: editing}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, n := range t.VisibleNodes() {
		v.Nodes = append(v.Nodes, NodeView{
			Node:      n.Clone(),
			CanBranch: n.Expanded || n.IsRoot(),
			CanToggle: len(n.Children) > 0,
			Selected:  n.ID == selected,
			Editing:   n.ID == editing,
		})
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+NodeWidth)
		maxY = math.Max(maxY, n.Position.Y+NodeHeight)
	}
	v.Connectors = t.Connectors()

	if len(v.Nodes) == 0 {
		v.Bounds = Bounds{MaxX: 800, MaxY: 600}
		return v
	}
	v.Bounds = Bounds{
		MinX: minX - viewMargin,
		MinY: minY - viewMargin,
		MaxX: maxX + viewMargin,
		MaxY: maxY + viewMargin,
	}
	return v
}

// Node returns the view entry of id
func (v View) Node(id string) (NodeView, bool) {
	for _, n := range v.Nodes {
		if n.Node.ID == id {
			return n, true
		}
	}
	return NodeView{}, false
}
