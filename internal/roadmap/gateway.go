package roadmap

import (
	"context"
	"errors"
	"slices"
)

var (
	// ErrNodeNotFound the referenced node is not in the tree
	ErrNodeNotFound = errors.New("roadmap: node not found")
	// ErrNoSelection an operation on the selected node ran with nothing selected
	ErrNoSelection = errors.New("roadmap: no node selected")
	// ErrNotEditing SaveEdit was called without BeginEdit
	ErrNotEditing = errors.New("roadmap: no node is being edited")
	// ErrNotDragging DragTo or EndDrag was called without BeginDrag
	ErrNotDragging = errors.New("roadmap: no drag in progress")
	// ErrSyncFailed the gateway reported failure or could not be reached; local state is unchanged
	ErrSyncFailed = errors.New("roadmap: gateway did not apply the change")
	// ErrInvalidFile an import source is not a roadmap JSON document
	ErrInvalidFile = errors.New("roadmap: invalid roadmap file")
	// ErrFetchUnsupported the gateway cannot return the whole roadmap
	ErrFetchUnsupported = errors.New("roadmap: gateway cannot fetch the roadmap")

	errMismatchedNode = errors.New("response node does not match the request")
)

// NodeResult response of create and update calls
type NodeResult struct {
	Success bool  `json:"success"`
	Node    *Node `json:"node,omitempty"`
}

// BranchResult response of a create-branch call, carrying the new child and the updated parent
type BranchResult struct {
	Success bool  `json:"success"`
	Node    *Node `json:"node,omitempty"`
	Parent  *Node `json:"parent,omitempty"`
}

// DeleteResult response of a delete call
type DeleteResult struct {
	Success bool `json:"success"`
}

// BranchRequest payload for creating a child under a parent
type BranchRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Patch partial update; nil fields are left untouched by the receiver
// Patch 局部更新，nil 字段不做修改
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Links       *[]string `json:"links,omitempty"`
	Position    *Position `json:"position,omitempty"`
	Expanded    *bool     `json:"expanded,omitempty"`
	Children    *[]string `json:"children,omitempty"`
	Parent      *string   `json:"parent,omitempty"`
	Level       *int      `json:"level,omitempty"`
}

// Gateway the remote side of the roadmap; every mutation goes through it before local state changes.
// Implementations report a refused change with Success=false and transport problems with an error.
// Gateway 路线图持久化网关，所有修改先经网关确认再落到本地
type Gateway interface {
	CreateNode(ctx context.Context, n *Node) (*NodeResult, error)
	UpdateNode(ctx context.Context, id string, p Patch) (*NodeResult, error)
	DeleteNode(ctx context.Context, id string) (*DeleteResult, error)
	CreateBranch(ctx context.Context, parentID string, req BranchRequest) (*BranchResult, error)
}

// Fetcher is implemented by gateways that can return the whole roadmap
type Fetcher interface {
	FetchRoadmap(ctx context.Context) ([]*Node, error)
}

// IsEmpty reports whether the patch sets no field
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Color == nil && p.Links == nil &&
		p.Position == nil && p.Expanded == nil && p.Children == nil && p.Parent == nil && p.Level == nil
}

// Clone deep-copies the patch so it can be handed to another goroutine
func (p Patch) Clone() Patch {
	c := p
	if p.Title != nil {
		c.Title = ptr(*p.Title)
	}
	if p.Description != nil {
		c.Description = ptr(*p.Description)
	}
	if p.Color != nil {
		c.Color = ptr(*p.Color)
	}
	if p.Links != nil {
		c.Links = ptr(slices.Clone(*p.Links))
	}
	if p.Position != nil {
		c.Position = ptr(*p.Position)
	}
	if p.Expanded != nil {
		c.Expanded = ptr(*p.Expanded)
	}
	if p.Children != nil {
		c.Children = ptr(slices.Clone(*p.Children))
	}
	if p.Parent != nil {
		c.Parent = ptr(*p.Parent)
	}
	if p.Level != nil {
		c.Level = ptr(*p.Level)
	}
	return c
}

// Apply writes the set fields onto n
// Apply 将已设置的字段写入 n
func (p Patch) Apply(n *Node) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.Links != nil {
		n.Links = slices.Clone(*p.Links)
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Expanded != nil {
		n.Expanded = *p.Expanded
	}
	if p.Children != nil {
		n.Children = slices.Clone(*p.Children)
	}
	if p.Parent != nil {
		n.Parent = *p.Parent
	}
	if p.Level != nil {
		n.Level = *p.Level
	}
	n.fillSlices()
}

// ExpandedPatch sets only the expanded flag
func ExpandedPatch(expanded bool) Patch {
	return Patch{Expanded: ptr(expanded)}
}

// PositionPatch sets only the position
func PositionPatch(pos Position) Patch {
	return Patch{Position: ptr(pos)}
}

// ChildrenPatch sets only the children list
func ChildrenPatch(children []string) Patch {
	return Patch{Children: ptr(slices.Clone(children))}
}

func ptr[T any](v T) *T {
	return &v
}

// acceptNode validates a node returned by the gateway and returns a normalized copy.
// An empty id is filled with fallbackID.
func acceptNode(n *Node, fallbackID string) (*Node, error) {
	if n == nil {
		return nil, errors.New("response carries no node")
	}
	c := n.Clone()
	if c.ID == "" {
		c.ID = fallbackID
	}
	if c.ID == "" {
		return nil, errors.New("response node has no id")
	}
	c.normalize()
	return c, nil
}
