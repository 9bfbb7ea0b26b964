// Package roadmap holds the roadmap tree model: node records, visibility,
// connector geometry, and the editing engine that keeps the model in sync
// with a persistence gateway.
// Package roadmap 路线图树模型：节点、可见性、连接线几何以及与持久化网关同步的编辑引擎
package roadmap

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Position canvas coordinate of a node's top-left corner
// Position 节点左上角的画布坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node the only entity of a roadmap
// Node 路线图中唯一的实体
type Node struct {
	ID          string
	Title       string
	Description string
	Color       string
	Links       []string
	Position    Position
	Expanded    bool
	Children    []string
	// Parent is empty for a node without parent
	Parent string
	Level  int
}

// nodeJSON is the wire shape; parent is null for roots and slices never encode as null
type nodeJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Links       []string `json:"links"`
	Position    Position `json:"position"`
	Expanded    bool     `json:"expanded"`
	Children    []string `json:"children"`
	Parent      *string  `json:"parent"`
	Level       int      `json:"level"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Links:       n.Links,
		Position:    n.Position,
		Expanded:    n.Expanded,
		Children:    n.Children,
		Level:       n.Level,
	}
	if out.Links == nil {
		out.Links = []string{}
	}
	if out.Children == nil {
		out.Children = []string{}
	}
	if n.Parent != "" {
		p := n.Parent
		out.Parent = &p
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Color:       in.Color,
		Links:       in.Links,
		Position:    in.Position,
		Expanded:    in.Expanded,
		Children:    in.Children,
		Level:       in.Level,
	}
	if in.Parent != nil {
		n.Parent = *in.Parent
	}
	n.fillSlices()
	return nil
}

// Clone returns a deep copy
// Clone 返回深拷贝
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Links = slices.Clone(n.Links)
	c.Children = slices.Clone(n.Children)
	c.fillSlices()
	return &c
}

// IsRoot reports whether the node sits on the root level
func (n *Node) IsRoot() bool {
	return n.Level == 0
}

// HasChild reports whether id is listed in the node's children
func (n *Node) HasChild(id string) bool {
	return slices.Contains(n.Children, id)
}

// AppendChild adds id to children unless it is already there
// AppendChild 追加子节点 ID，已存在时不重复添加
func (n *Node) AppendChild(id string) bool {
	if n.HasChild(id) {
		return false
	}
	n.Children = append(n.Children, id)
	return true
}

// RemoveChild drops every occurrence of id from children
// RemoveChild 从子节点列表中移除 id
func (n *Node) RemoveChild(id string) bool {
	before := len(n.Children)
	n.Children = slices.DeleteFunc(n.Children, func(c string) bool { return c == id })
	return len(n.Children) != before
}

func (n *Node) fillSlices() {
	if n.Links == nil {
		n.Links = []string{}
	}
	if n.Children == nil {
		n.Children = []string{}
	}
}

// normalize enforces the record invariants accepted from a gateway:
// each child listed once, no self reference, non-negative level.
func (n *Node) normalize() {
	n.fillSlices()
	seen := make(map[string]struct{}, len(n.Children))
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c == "" || c == n.ID {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		kept = append(kept, c)
	}
	n.Children = kept
	if n.Parent == n.ID {
		n.Parent = ""
	}
	if n.Level < 0 {
		n.Level = 0
	}
}
