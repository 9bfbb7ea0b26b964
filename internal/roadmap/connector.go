package roadmap

import (
	"strconv"
	"strings"
)

// Node box geometry the connector anchors are derived from
// 连接线锚点所依据的节点尺寸
const (
	NodeWidth  = 200
	NodeHeight = 100

	rootAnchorX   = NodeWidth / 2
	rootAnchorY   = 80
	branchAnchorY = NodeHeight / 2

	ArrowSize = 8
)

// Point SVG coordinate
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return formatNum(p.X) + "," + formatNum(p.Y)
}

// ConnectorKind distinguishes root-to-root links from branch links
type ConnectorKind int

const (
	// BranchConnector right edge to left edge, cubic S-curve, rightward arrow
	BranchConnector ConnectorKind = iota
	// RootConnector bottom center to top center, straight line, downward arrow
	RootConnector
)

func (k ConnectorKind) String() string {
	if k == RootConnector {
		return "root"
	}
	return "branch"
}

// Connector a drawable parent -> child link
// Connector 父节点到子节点的连接线
type Connector struct {
	ParentID string
	ChildID  string
	Kind     ConnectorKind
	From     Point
	To       Point
	// Control1 and Control2 are only meaningful for branch connectors
	Control1 Point
	Control2 Point
	Arrow    [3]Point
}

// NewConnector computes anchors, control points and arrowhead for parent -> child
// NewConnector 计算父子节点之间连接线的锚点、控制点与箭头
func NewConnector(parent, child *Node) Connector {
	c := Connector{ParentID: parent.ID, ChildID: child.ID}

	if parent.IsRoot() && child.IsRoot() {
		c.Kind = RootConnector
		c.From = Point{parent.Position.X + rootAnchorX, parent.Position.Y + rootAnchorY}
		c.To = Point{child.Position.X + rootAnchorX, child.Position.Y}
		c.Arrow = [3]Point{
			c.To,
			{c.To.X - ArrowSize/2, c.To.Y - ArrowSize},
			{c.To.X + ArrowSize/2, c.To.Y - ArrowSize},
		}
		return c
	}

	c.Kind = BranchConnector
	c.From = Point{parent.Position.X + NodeWidth, parent.Position.Y + branchAnchorY}
	c.To = Point{child.Position.X, child.Position.Y + branchAnchorY}
	midX := c.From.X + (c.To.X-c.From.X)/2
	c.Control1 = Point{midX, c.From.Y}
	c.Control2 = Point{midX, c.To.Y}
	c.Arrow = [3]Point{
		c.To,
		{c.To.X - ArrowSize, c.To.Y - ArrowSize/2},
		{c.To.X - ArrowSize, c.To.Y + ArrowSize/2},
	}
	return c
}

// Path returns SVG path data
// Path 返回 SVG path 数据
func (c Connector) Path() string {
	var b strings.Builder
	b.WriteString("M ")
	b.WriteString(formatNum(c.From.X) + " " + formatNum(c.From.Y))
	if c.Kind == RootConnector {
		b.WriteString(" L ")
		b.WriteString(formatNum(c.To.X) + " " + formatNum(c.To.Y))
		return b.String()
	}
	b.WriteString(" C ")
	b.WriteString(formatNum(c.Control1.X) + " " + formatNum(c.Control1.Y) + ", ")
	b.WriteString(formatNum(c.Control2.X) + " " + formatNum(c.Control2.Y) + ", ")
	b.WriteString(formatNum(c.To.X) + " " + formatNum(c.To.Y))
	return b.String()
}

// ArrowPoints returns the arrowhead as an SVG polygon points list
func (c Connector) ArrowPoints() string {
	return c.Arrow[0].String() + " " + c.Arrow[1].String() + " " + c.Arrow[2].String()
}

// Class returns the CSS class of the connector path
func (c Connector) Class() string {
	if c.Kind == RootConnector {
		return "connection-line root-connection"
	}
	return "connection-line"
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
