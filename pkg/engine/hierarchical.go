package engine

import (
	"context"
	"fmt"
	"math"
)

// Hierarchical lifts a [LevelLayouter] to trees.
type Hierarchical struct {
	level LevelLayouter
}

// NewHierarchical returns an [Engine] that lays out every container of the
// tree with l, innermost containers first.
func NewHierarchical(l LevelLayouter) *Hierarchical {
	return &Hierarchical{level: l}
}

// Name returns the name of the wrapped level layouter.
func (h *Hierarchical) Name() string { return h.level.Name() }

// Layout implements [Engine].
func (h *Hierarchical) Layout(ctx context.Context, root *Node) error {
	if root == nil {
		return ErrEmptyGraph
	}
	opts, err := ParseOptions(root.Options)
	if err != nil {
		return err
	}
	t := newTreeInfo(root)
	if err := h.layout(ctx, root, opts, t); err != nil {
		return err
	}
	root.X, root.Y = 0, 0
	return nil
}

func (h *Hierarchical) layout(ctx context.Context, n *Node, inherited Options, t *treeInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.IsContainer() {
		return nil
	}
	opts := inherited
	if n != t.root {
		var err error
		if opts, err = inherited.Apply(levelKeys(n.Options)); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	for _, c := range n.Children {
		if err := h.layout(ctx, c, opts, t); err != nil {
			return err
		}
	}

	lvl := &Level{Parent: n, Options: opts, Nodes: n.Children, Edges: t.levelEdges(n, opts.Hierarchy)}
	if err := h.level.LayoutLevel(ctx, lvl); err != nil {
		return fmt.Errorf("level %s: %w", n.ID, err)
	}
	fitContainer(n, opts.Padding)
	return nil
}

// fitContainer moves the children so their bounding box starts at the
// padding and sizes n to enclose them.
func fitContainer(n *Node, p Padding) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range n.Children {
		minX, minY = math.Min(minX, c.X), math.Min(minY, c.Y)
		maxX, maxY = math.Max(maxX, c.X+c.Width), math.Max(maxY, c.Y+c.Height)
	}
	dx, dy := p.Left-minX, p.Top-minY
	for _, c := range n.Children {
		c.X += dx
		c.Y += dy
	}
	n.Width = math.Max(n.Width, maxX-minX+p.Left+p.Right)
	n.Height = math.Max(n.Height, maxY-minY+p.Top+p.Bottom)
}

// levelKeys strips per-node keys so a container's own priority does not
// leak into its level options.
func levelKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if k == OptionPriority || k == OptionLayerConstraint {
			continue
		}
		out[k] = v
	}
	return out
}

// =============================================================================
// Tree bookkeeping
// =============================================================================

type treeInfo struct {
	root   *Node
	parent map[string]*Node
	nodes  map[string]*Node
	edges  []edgeRef
}

type edgeRef struct {
	edge  *Edge
	owner *Node
}

func newTreeInfo(root *Node) *treeInfo {
	t := &treeInfo{
		root:   root,
		parent: make(map[string]*Node),
		nodes:  make(map[string]*Node),
	}
	var walk func(n, parent *Node)
	walk = func(n, parent *Node) {
		t.nodes[n.ID] = n
		t.parent[n.ID] = parent
		for _, e := range n.Edges {
			t.edges = append(t.edges, edgeRef{edge: e, owner: n})
		}
		for _, c := range n.Children {
			walk(c, n)
		}
	}
	walk(root, nil)
	return t
}

// representative returns the ancestor of id (or id itself) that is a direct
// child of container, or nil.
func (t *treeInfo) representative(id string, container *Node) *Node {
	n := t.nodes[id]
	for n != nil {
		p := t.parent[n.ID]
		if p == container {
			return n
		}
		n = p
	}
	return nil
}

// levelEdges collects the edges that constrain the level of container. With
// INCLUDE_CHILDREN an edge between descendants of two different children is
// projected onto those children; with SEPARATE_CHILDREN only edges between
// direct children count.
func (t *treeInfo) levelEdges(container *Node, h HierarchyHandling) []LevelEdge {
	var out []LevelEdge
	for _, ref := range t.edges {
		e := ref.edge
		src, okS := t.nodes[e.Source]
		dst, okT := t.nodes[e.Target]
		if !okS || !okT {
			continue
		}
		var rs, rt *Node
		if h == HierarchySeparateChildren {
			if t.parent[src.ID] != container || t.parent[dst.ID] != container {
				continue
			}
			rs, rt = src, dst
		} else {
			rs, rt = t.representative(src.ID, container), t.representative(dst.ID, container)
		}
		if rs == nil || rt == nil || rs == rt {
			continue
		}
		out = append(out, LevelEdge{
			ID:       e.ID,
			Source:   rs,
			Target:   rt,
			Priority: min(src.Priority(), dst.Priority()),
		})
	}
	return out
}
