package engine

import (
	"context"
	"errors"
)

// ErrEmptyGraph is returned when an engine is handed a nil root.
var ErrEmptyGraph = errors.New("engine: empty graph")

// Node is an engine input and output node.
type Node struct {
	ID     string
	X, Y   float64
	Width  float64
	Height float64

	// Options holds raw layout options. On containers they apply to the
	// level of their children and are inherited by nested containers.
	Options map[string]string

	Children []*Node
	Edges    []*Edge
}

// Edge connects two nodes anywhere in the tree.
type Edge struct {
	ID     string
	Source string
	Target string
}

// IsContainer reports whether n has children to lay out.
func (n *Node) IsContainer() bool { return len(n.Children) > 0 }

// Priority returns the node's priority option, or the default.
func (n *Node) Priority() Priority {
	p, err := ParsePriority(n.Options[OptionPriority])
	if err != nil {
		return PriorityDefault
	}
	return p
}

// LayerConstraint returns the node's layer constraint option.
func (n *Node) LayerConstraint() LayerConstraint {
	c, err := ParseLayerConstraint(n.Options[OptionLayerConstraint])
	if err != nil {
		return LayerNone
	}
	return c
}

// Engine lays out a whole tree.
type Engine interface {
	Name() string
	Layout(ctx context.Context, root *Node) error
}

// Level is one flat layout problem: the direct children of a container and
// the edges between them.
type Level struct {
	Parent  *Node
	Options Options
	Nodes   []*Node
	Edges   []LevelEdge
}

// LevelEdge is an edge projected onto a level.
type LevelEdge struct {
	ID       string
	Source   *Node
	Target   *Node
	Priority Priority
}

// LevelLayouter places the nodes of one level. Implementations set X and Y
// of every node in lvl.Nodes; the origin is arbitrary; the caller
// normalizes the result.
type LevelLayouter interface {
	Name() string
	LayoutLevel(ctx context.Context, lvl *Level) error
}
