package roadmap

import (
	"context"
	"errors"
	"fmt"
)

type updateCall struct {
	ID    string
	Patch Patch
}

// fakeGateway an in-memory server that echoes records the way the roadmap service does
type fakeGateway struct {
	nodes map[string]*Node

	refuse bool
	err    error

	creates  []*Node
	updates  []updateCall
	deletes  []string
	branches int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nodes: map[string]*Node{}}
}

func (g *fakeGateway) CreateNode(_ context.Context, n *Node) (*NodeResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.refuse {
		return &NodeResult{Success: false}, nil
	}
	g.creates = append(g.creates, n.Clone())
	g.nodes[n.ID] = n.Clone()
	return &NodeResult{Success: true, Node: n.Clone()}, nil
}

func (g *fakeGateway) UpdateNode(_ context.Context, id string, p Patch) (*NodeResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.updates = append(g.updates, updateCall{ID: id, Patch: p.Clone()})
	n, ok := g.nodes[id]
	if g.refuse || !ok {
		return &NodeResult{Success: false}, nil
	}
	p.Apply(n)
	return &NodeResult{Success: true, Node: n.Clone()}, nil
}

func (g *fakeGateway) DeleteNode(_ context.Context, id string) (*DeleteResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	if _, ok := g.nodes[id]; g.refuse || !ok {
		return &DeleteResult{Success: false}, nil
	}
	g.deletes = append(g.deletes, id)
	delete(g.nodes, id)
	return &DeleteResult{Success: true}, nil
}

func (g *fakeGateway) CreateBranch(_ context.Context, parentID string, req BranchRequest) (*BranchResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	p, ok := g.nodes[parentID]
	if g.refuse || !ok {
		return &BranchResult{Success: false}, nil
	}
	g.branches++
	n := len(p.Children)
	child := &Node{
		ID:          fmt.Sprintf("branch_%d", g.branches),
		Title:       req.Title,
		Description: req.Description,
		Color:       req.Color,
		Position:    Position{X: p.Position.X + 250, Y: p.Position.Y + float64(n*120-n*60)},
		Expanded:    true,
		Parent:      parentID,
		Level:       p.Level + 1,
	}
	g.nodes[child.ID] = child
	p.Children = append(p.Children, child.ID)
	return &BranchResult{Success: true, Node: child.Clone(), Parent: p.Clone()}, nil
}

func (g *fakeGateway) FetchRoadmap(_ context.Context) ([]*Node, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.Clone())
	}
	return out, nil
}

func (g *fakeGateway) updatesFor(id string) []Patch {
	var out []Patch
	for _, u := range g.updates {
		if u.ID == id {
			out = append(out, u.Patch)
		}
	}
	return out
}

var errOffline = errors.New("connection refused")

func sequentialIDs() func() string {
	i := 0
	return func() string {
		i++
		return fmt.Sprintf("node_%d", i)
	}
}

func newTestEngine(gw Gateway, opts ...Option) *Engine {
	return NewEngine(gw, append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}
