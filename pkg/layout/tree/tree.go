// Package tree implements a Reingold–Tilford tree layout.
//
// The first pass walks the tree bottom-up and places every subtree as
// compactly as its contours allow, recording a preliminary offset for each
// node relative to its siblings and a modifier for its children. The second
// pass walks top-down and accumulates modifiers into final positions.
// Parents are centred over their children.
package tree

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Direction is the growth direction of the tree.
type Direction int

const (
	// TopDown puts children below their parent.
	TopDown Direction = iota
	// LeftToRight puts children to the right of their parent.
	LeftToRight
)

// Options configures a layout.
type Options struct {
	Direction Direction
	// SiblingGap separates neighbouring subtrees.
	SiblingGap float64
	// LevelGap separates consecutive levels.
	LevelGap float64
}

// Node is a tree node. Width and Height are inputs; X and Y receive the
// top-left corner.
type Node struct {
	ID       string
	Width    float64
	Height   float64
	Children []*Node
	// Repeat marks a node whose ID already appeared higher up or earlier
	// in the tree. BuildTree emits such nodes as leaves.
	Repeat bool

	X, Y float64

	prelim float64
	mod    float64
	level  int
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Bounds returns the bounding box of the laid-out tree.
func (n *Node) Bounds() geom.Rect {
	var rects []geom.Rect
	n.Walk(func(m *Node) { rects = append(rects, geom.R(m.X, m.Y, m.Width, m.Height)) })
	return geom.BoundingBox(rects...)
}

// Translate moves the whole tree by (dx, dy).
func (n *Node) Translate(dx, dy float64) {
	n.Walk(func(m *Node) {
		m.X += dx
		m.Y += dy
	})
}

// contour holds the extent of a subtree across the breadth axis, per level
// below its root, relative to the root's centre.
type contour struct {
	left, right []float64
}

// Layout positions the tree rooted at root. The root's centre lands on the
// breadth origin and its leading edge on the depth origin.
func Layout(root *Node, opts Options) {
	if root == nil {
		return
	}
	l := &layouter{opts: opts}
	l.firstWalk(root, 0)

	depth := l.levelOffsets()
	l.secondWalk(root, 0, depth)
}

type layouter struct {
	opts  Options
	thick []float64
}

func (l *layouter) breadth(n *Node) float64 {
	if l.opts.Direction == LeftToRight {
		return n.Height
	}
	return n.Width
}

func (l *layouter) depth(n *Node) float64 {
	if l.opts.Direction == LeftToRight {
		return n.Width
	}
	return n.Height
}

func (l *layouter) firstWalk(n *Node, level int) contour {
	n.level = level
	for len(l.thick) <= level {
		l.thick = append(l.thick, 0)
	}
	l.thick[level] = math.Max(l.thick[level], l.depth(n))

	half := l.breadth(n) / 2
	own := contour{left: []float64{-half}, right: []float64{half}}
	if len(n.Children) == 0 {
		n.prelim, n.mod = 0, 0
		return own
	}

	var acc contour
	for i, c := range n.Children {
		cc := l.firstWalk(c, level+1)
		if i == 0 {
			c.prelim = 0
			acc = contour{left: append([]float64(nil), cc.left...), right: append([]float64(nil), cc.right...)}
			continue
		}
		shift := math.Inf(-1)
		for k := 0; k < len(acc.right) && k < len(cc.left); k++ {
			shift = math.Max(shift, acc.right[k]-cc.left[k]+l.opts.SiblingGap)
		}
		c.prelim = shift
		for k := range cc.left {
			if k < len(acc.left) {
				acc.left[k] = math.Min(acc.left[k], cc.left[k]+shift)
				acc.right[k] = math.Max(acc.right[k], cc.right[k]+shift)
			} else {
				acc.left = append(acc.left, cc.left[k]+shift)
				acc.right = append(acc.right, cc.right[k]+shift)
			}
		}
	}

	first, last := n.Children[0], n.Children[len(n.Children)-1]
	mid := (first.prelim + last.prelim) / 2
	n.mod = -mid
	for k := range acc.left {
		own.left = append(own.left, acc.left[k]-mid)
		own.right = append(own.right, acc.right[k]-mid)
	}
	return own
}

func (l *layouter) levelOffsets() []float64 {
	out := make([]float64, len(l.thick))
	for i := 1; i < len(l.thick); i++ {
		out[i] = out[i-1] + l.thick[i-1] + l.opts.LevelGap
	}
	return out
}

// secondWalk turns preliminary offsets into positions. centre is the sum of
// the ancestors' preliminary offsets and modifiers.
func (l *layouter) secondWalk(n *Node, modsum float64, depth []float64) {
	centre := n.prelim + modsum
	d := depth[n.level] + (l.thick[n.level]-l.depth(n))/2
	if l.opts.Direction == LeftToRight {
		n.X, n.Y = d, centre-n.Height/2
	} else {
		n.X, n.Y = centre-n.Width/2, d
	}
	for _, c := range n.Children {
		l.secondWalk(c, centre+n.mod, depth)
	}
}

// =============================================================================
// Building and anchoring
// =============================================================================

// Size is the width and height of a tree node.
type Size struct {
	Width, Height float64
}

// BuildTree builds the tree reachable from rootID by following edges, a map
// from node ID to successor IDs. Nodes missing from sizes are skipped. An ID
// reached a second time becomes a leaf marked Repeat, so cycles terminate.
func BuildTree(rootID string, sizes map[string]Size, edges map[string][]string) *Node {
	if _, ok := sizes[rootID]; !ok {
		return nil
	}
	return build(rootID, sizes, edges, make(map[string]bool))
}

func build(id string, sizes map[string]Size, edges map[string][]string, visited map[string]bool) *Node {
	s := sizes[id]
	n := &Node{ID: id, Width: s.Width, Height: s.Height}
	if visited[id] {
		n.Repeat = true
		return n
	}
	visited[id] = true
	for _, next := range edges[id] {
		if _, ok := sizes[next]; !ok {
			continue
		}
		n.Children = append(n.Children, build(next, sizes, edges, visited))
	}
	return n
}

// LayoutBoundaryBranch lays out a branch hanging off a boundary event and
// anchors it beneath parent: the root is centred under parent and the whole
// branch starts gap below parent's bottom edge.
func LayoutBoundaryBranch(root *Node, parent geom.Rect, gap float64, opts Options) {
	if root == nil {
		return
	}
	Layout(root, opts)
	dx := parent.CenterX() - (root.X + root.Width/2)
	root.Translate(dx, 0)
	dy := parent.Bottom() + gap - root.Bounds().Top()
	root.Translate(0, dy)
}
