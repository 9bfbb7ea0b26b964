package roadmap

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree makes node i a child of parents[i] % i, node 0 is the only root
func buildTree(parents []int, expanded []bool) *Tree {
	t := NewTree()
	for i := range parents {
		n := &Node{ID: fmt.Sprintf("n%d", i), Position: Position{X: float64(i * 10), Y: float64(i * 20)}}
		if len(expanded) > 0 {
			n.Expanded = expanded[i%len(expanded)]
		}
		if i > 0 {
			p, _ := t.Get(fmt.Sprintf("n%d", parents[i]%i))
			n.Parent = p.ID
			n.Level = p.Level + 1
			p.Children = append(p.Children, n.ID)
		}
		t.Put(n)
	}
	return t
}

// visibleByDefinition checks every ancestor recursively
func visibleByDefinition(t *Tree, id string) bool {
	n, _ := t.Get(id)
	if n.Parent == "" {
		return true
	}
	p, ok := t.Get(n.Parent)
	if !ok {
		return true
	}
	return p.Expanded && visibleByDefinition(t, p.ID)
}

func TestProperty_VisibilityFollowsAncestors(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("visible iff every ancestor is expanded", prop.ForAll(
		func(parents []int, expanded []bool) bool {
			tree := buildTree(parents, expanded)
			for _, id := range tree.IDs() {
				if tree.IsVisible(id) != visibleByDefinition(tree, id) {
					t.Logf("visibility mismatch on %s", id)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("one connector per visible child of a visible expanded parent", prop.ForAll(
		func(parents []int, expanded []bool) bool {
			tree := buildTree(parents, expanded)
			want := 0
			for _, n := range tree.Nodes() {
				if n.Parent != "" && tree.IsVisible(n.ID) {
					want++
				}
			}
			conns := tree.Connectors()
			if len(conns) != want {
				return false
			}
			for _, c := range conns {
				if !tree.IsVisible(c.ParentID) || !tree.IsVisible(c.ChildID) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("descendants lists every node below exactly once", prop.ForAll(
		func(parents []int) bool {
			tree := buildTree(parents, nil)
			if tree.Len() == 0 {
				return true
			}
			desc := tree.Descendants("n0")
			seen := map[string]bool{}
			for _, id := range desc {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return len(desc) == tree.Len()-1
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func TestTree_PutKeepsOrderAndRoots(t *testing.T) {
	tree := NewTree()
	tree.Put(&Node{ID: "a"})
	tree.Put(&Node{ID: "b", Level: 1, Parent: "a"})
	tree.Put(&Node{ID: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, tree.IDs())
	assert.Equal(t, "c", tree.LastRoot().ID)

	tree.Put(&Node{ID: "a", Title: "replaced", Level: 2})
	assert.Equal(t, []string{"a", "b", "c"}, tree.IDs())
	require.Len(t, tree.Roots(), 1)

	tree.Put(&Node{ID: "b"})
	roots := tree.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "b", roots[0].ID)
	assert.Equal(t, "c", tree.LastRoot().ID)

	assert.True(t, tree.Remove("c"))
	assert.False(t, tree.Remove("c"))
	assert.Equal(t, "b", tree.LastRoot().ID)
	assert.Equal(t, 2, tree.Len())

	empty := NewTree()
	assert.Nil(t, empty.LastRoot())
	assert.Empty(t, empty.Connectors())
}

func TestTree_VisibilityEdgeCases(t *testing.T) {
	tree := NewTree()
	tree.Put(&Node{ID: "orphan", Parent: "gone", Level: 1})
	tree.Put(&Node{ID: "x", Parent: "y", Level: 1, Expanded: true})
	tree.Put(&Node{ID: "y", Parent: "x", Level: 1, Expanded: true})
	tree.Put(&Node{ID: "closed", Expanded: false, Children: []string{"hidden"}})
	tree.Put(&Node{ID: "hidden", Parent: "closed", Level: 1})

	assert.True(t, tree.IsVisible("orphan"))
	assert.True(t, tree.IsVisible("x"))
	assert.False(t, tree.IsVisible("hidden"))
	assert.False(t, tree.IsVisible("missing"))
}

func TestNode_JSONShape(t *testing.T) {
	n := Node{ID: "n1", Title: "T", Position: Position{X: 1.5, Y: 2}}
	b, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","title":"T","description":"","color":"","links":[],
		"position":{"x":1.5,"y":2},"expanded":false,"children":[],"parent":null,"level":0}`, string(b))

	var back Node
	require.NoError(t, back.UnmarshalJSON([]byte(`{"id":"n2","parent":"n1","links":null,"level":1}`)))
	assert.Equal(t, "n1", back.Parent)
	assert.Equal(t, []string{}, back.Links)
	assert.Equal(t, []string{}, back.Children)
}

func TestNode_Normalize(t *testing.T) {
	n := &Node{ID: "a", Parent: "a", Level: -3, Children: []string{"b", "a", "b", "", "c"}}
	n.normalize()
	assert.Equal(t, []string{"b", "c"}, n.Children)
	assert.Empty(t, n.Parent)
	assert.Zero(t, n.Level)
}

func TestPatch_CloneIsIndependent(t *testing.T) {
	children := []string{"a"}
	p := Patch{Children: &children, Title: ptr("x")}
	c := p.Clone()
	children[0] = "changed"
	*p.Title = "y"
	assert.Equal(t, []string{"a"}, *c.Children)
	assert.Equal(t, "x", *c.Title)
	assert.False(t, c.IsEmpty())
	assert.True(t, Patch{}.IsEmpty())
}
