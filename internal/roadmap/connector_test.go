package roadmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConnector(t *testing.T) {
	tests := []struct {
		name   string
		parent *Node
		child  *Node
		kind   ConnectorKind
		path   string
		arrow  string
		class  string
	}{
		{
			name:   "root to root",
			parent: &Node{ID: "r1", Position: Position{X: 50, Y: 50}},
			child:  &Node{ID: "r2", Position: Position{X: 50, Y: 200}},
			kind:   RootConnector,
			path:   "M 150 130 L 150 200",
			arrow:  "150,200 146,192 154,192",
			class:  "connection-line root-connection",
		},
		{
			name:   "root to branch",
			parent: &Node{ID: "r1", Position: Position{X: 50, Y: 50}},
			child:  &Node{ID: "b1", Level: 1, Position: Position{X: 300, Y: 170}},
			kind:   BranchConnector,
			path:   "M 250 100 C 275 100, 275 220, 300 220",
			arrow:  "300,220 292,216 292,224",
			class:  "connection-line",
		},
		{
			name:   "branch to root level child",
			parent: &Node{ID: "b1", Level: 1, Position: Position{X: 0, Y: 0}},
			child:  &Node{ID: "r9", Position: Position{X: 101, Y: -20}},
			kind:   BranchConnector,
			path:   "M 200 50 C 150.5 50, 150.5 30, 101 30",
			arrow:  "101,30 93,26 93,34",
			class:  "connection-line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConnector(tt.parent, tt.child)
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.path, c.Path())
			assert.Equal(t, tt.arrow, c.ArrowPoints())
			assert.Equal(t, tt.class, c.Class())
			assert.Equal(t, tt.parent.ID, c.ParentID)
			assert.Equal(t, tt.child.ID, c.ChildID)
		})
	}
}

func TestConnectorKindString(t *testing.T) {
	assert.Equal(t, "root", RootConnector.String())
	assert.Equal(t, "branch", BranchConnector.String())
}
