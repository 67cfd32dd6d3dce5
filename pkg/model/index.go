package model

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// EdgeRef pairs an edge with the node whose Edges list declares it.
type EdgeRef struct {
	Edge  *Edge
	Owner *Node
}

// Index is an arena view over a diagram tree: every node by ID, its parent,
// and its absolute top-left corner, computed in a single pass. Stages query
// absolute positions through the index instead of walking ancestor chains.
//
// The index does not observe the tree. After changing structure call
// [Index.Refresh]; after moving a single node prefer [Index.MoveBy], which
// updates the offset table incrementally.
type Index struct {
	root   *Node
	order  []*Node
	nodes  map[string]*Node
	parent map[string]*Node
	host   map[string]*Node
	origin map[string]geom.Point

	edges  []*EdgeRef
	byEdge map[*Edge]*EdgeRef
	byID   map[string]*EdgeRef
	out    map[string][]*EdgeRef
	in     map[string][]*EdgeRef
}

// NewIndex builds an index for the tree rooted at root.
func NewIndex(root *Node) *Index {
	ix := &Index{root: root}
	ix.Refresh()
	return ix
}

// Refresh rebuilds the index from the current tree.
func (ix *Index) Refresh() {
	ix.order = ix.order[:0]
	ix.nodes = make(map[string]*Node)
	ix.parent = make(map[string]*Node)
	ix.host = make(map[string]*Node)
	ix.origin = make(map[string]geom.Point)
	ix.edges = ix.edges[:0]
	ix.byEdge = make(map[*Edge]*EdgeRef)
	ix.byID = make(map[string]*EdgeRef)
	ix.out = make(map[string][]*EdgeRef)
	ix.in = make(map[string][]*EdgeRef)

	if ix.root == nil {
		return
	}

	addEdges := func(n *Node) {
		for _, e := range n.Edges {
			ref := &EdgeRef{Edge: e, Owner: n}
			ix.edges = append(ix.edges, ref)
			ix.byEdge[e] = ref
			if e.ID != "" {
				ix.byID[e.ID] = ref
			}
		}
	}

	var walk func(n, parent *Node, base geom.Point)
	walk = func(n, parent *Node, base geom.Point) {
		abs := base.Translate(n.X, n.Y)
		ix.nodes[n.ID] = n
		ix.parent[n.ID] = parent
		ix.origin[n.ID] = abs
		ix.order = append(ix.order, n)
		addEdges(n)
		for _, be := range n.BoundaryEvents {
			ix.nodes[be.ID] = be
			ix.parent[be.ID] = parent
			ix.host[be.ID] = n
			ix.origin[be.ID] = base.Translate(be.X, be.Y)
			ix.order = append(ix.order, be)
			addEdges(be)
		}
		for _, c := range n.Children {
			walk(c, n, abs)
		}
	}
	walk(ix.root, nil, geom.Point{})

	for _, ref := range ix.edges {
		if !ref.Edge.Valid() {
			continue
		}
		ix.out[ref.Edge.Source()] = append(ix.out[ref.Edge.Source()], ref)
		ix.in[ref.Edge.Target()] = append(ix.in[ref.Edge.Target()], ref)
	}
}

// Root returns the indexed tree root.
func (ix *Index) Root() *Node { return ix.root }

// Nodes returns every node, boundary events included, in pre-order.
func (ix *Index) Nodes() []*Node { return ix.order }

// Node returns the node with the given ID.
func (ix *Index) Node(id string) (*Node, bool) {
	n, ok := ix.nodes[id]
	return n, ok
}

// Parent returns the node whose coordinate space id lives in. For boundary
// events this is the host's parent. The root has no parent.
func (ix *Index) Parent(id string) *Node { return ix.parent[id] }

// Host returns the activity a boundary event is attached to, or nil.
func (ix *Index) Host(id string) *Node { return ix.host[id] }

// IsBoundaryEvent reports whether id is attached to a host.
func (ix *Index) IsBoundaryEvent(id string) bool { return ix.host[id] != nil }

// Origin returns the absolute top-left corner of id, which is also the
// origin of its children's coordinate space.
func (ix *Index) Origin(id string) geom.Point { return ix.origin[id] }

// Abs returns the absolute bounds of id.
func (ix *Index) Abs(id string) (geom.Rect, bool) {
	n, ok := ix.nodes[id]
	if !ok {
		return geom.Rect{}, false
	}
	o := ix.origin[id]
	return geom.R(o.X, o.Y, n.Width, n.Height), true
}

// SetAbsPosition moves id so that its absolute top-left corner is (x, y).
func (ix *Index) SetAbsPosition(id string, x, y float64) {
	o, ok := ix.origin[id]
	if !ok {
		return
	}
	ix.MoveBy(id, x-o.X, y-o.Y)
}

// MoveBy shifts id, its descendants and its attached boundary events by
// (dx, dy) and updates the offset table.
func (ix *Index) MoveBy(id string, dx, dy float64) {
	n, ok := ix.nodes[id]
	if !ok || (dx == 0 && dy == 0) {
		return
	}
	n.X += dx
	n.Y += dy
	ix.shiftOrigins(n, dx, dy)
	for _, be := range n.BoundaryEvents {
		be.X += dx
		be.Y += dy
		ix.origin[be.ID] = ix.origin[be.ID].Translate(dx, dy)
	}
}

func (ix *Index) shiftOrigins(n *Node, dx, dy float64) {
	ix.origin[n.ID] = ix.origin[n.ID].Translate(dx, dy)
	for _, c := range n.Children {
		ix.shiftOrigins(c, dx, dy)
		for _, be := range c.BoundaryEvents {
			ix.origin[be.ID] = ix.origin[be.ID].Translate(dx, dy)
		}
	}
}

// Ancestors returns the chain of parents of id from nearest to root.
func (ix *Index) Ancestors(id string) []*Node {
	var out []*Node
	for p := ix.parent[id]; p != nil; p = ix.parent[p.ID] {
		out = append(out, p)
	}
	return out
}

// PoolOf returns the nearest participant enclosing id, or nil.
func (ix *Index) PoolOf(id string) *Node {
	if n, ok := ix.nodes[id]; ok && n.Category == CategoryParticipant {
		return n
	}
	for _, a := range ix.Ancestors(id) {
		if a.Category == CategoryParticipant {
			return a
		}
	}
	return nil
}

// =============================================================================
// Edges
// =============================================================================

// Edges returns all edges in declaration order.
func (ix *Index) Edges() []*EdgeRef { return ix.edges }

// Ref returns the reference for e.
func (ix *Index) Ref(e *Edge) *EdgeRef { return ix.byEdge[e] }

// EdgeByID returns the reference for the edge with the given ID.
func (ix *Index) EdgeByID(id string) (*EdgeRef, bool) {
	ref, ok := ix.byID[id]
	return ref, ok
}

// Outgoing returns the edges whose source is id.
func (ix *Index) Outgoing(id string) []*EdgeRef { return ix.out[id] }

// Incoming returns the edges whose target is id.
func (ix *Index) Incoming(id string) []*EdgeRef { return ix.in[id] }

// Endpoints returns the absolute bounds of an edge's source and target. It
// reports false when either end cannot be resolved.
func (ix *Index) Endpoints(ref *EdgeRef) (src, dst geom.Rect, ok bool) {
	if !ref.Edge.Valid() {
		return geom.Rect{}, geom.Rect{}, false
	}
	src, okS := ix.Abs(ref.Edge.Source())
	dst, okT := ix.Abs(ref.Edge.Target())
	return src, dst, okS && okT
}

// DefaultSpace is the coordinate space an unrouted edge receives: absolute
// for edges declared on the root, pool-relative for edges declared on a
// pool, and owner-relative otherwise.
func (ix *Index) DefaultSpace(ref *EdgeRef) CoordSpace {
	switch {
	case ref.Owner == nil || ix.parent[ref.Owner.ID] == nil:
		return SpaceAbsolute
	case ref.Owner.Category == CategoryParticipant:
		return SpacePool
	default:
		return SpaceLocal
	}
}

// SpaceOrigin returns the absolute origin of the edge's coordinate space.
func (ix *Index) SpaceOrigin(ref *EdgeRef) geom.Point {
	switch ref.Edge.Space {
	case SpaceAbsolute:
		return geom.Point{}
	case SpacePool:
		if pool := ix.PoolOf(ref.Edge.Source()); pool != nil {
			return ix.origin[pool.ID]
		}
		if ref.Owner != nil {
			return ix.origin[ref.Owner.ID]
		}
		return geom.Point{}
	default:
		if ref.Owner != nil {
			return ix.origin[ref.Owner.ID]
		}
		return geom.Point{}
	}
}

// RouteAbs returns the edge route in absolute coordinates.
func (ix *Index) RouteAbs(ref *EdgeRef) []geom.Point {
	pts := ref.Edge.Route.Points()
	if pts == nil {
		return nil
	}
	o := ix.SpaceOrigin(ref)
	return geom.TranslateAll(pts, o.X, o.Y)
}

// SetRouteAbs stores an absolute route on the edge, converting it into the
// edge's coordinate space. An unrouted edge is tagged with its default space
// first; an already tagged edge keeps its tag.
func (ix *Index) SetRouteAbs(ref *EdgeRef, pts []geom.Point) {
	if len(pts) < 2 {
		return
	}
	if ref.Edge.Space == SpaceUnset {
		ref.Edge.Space = ix.DefaultSpace(ref)
	}
	o := ix.SpaceOrigin(ref)
	ref.Edge.Route = NewRoute(geom.TranslateAll(geom.Simplify(pts), -o.X, -o.Y))
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that every node, boundary events included, has a unique
// non-empty ID.
func Validate(root *Node) error {
	if root == nil {
		return ErrNilTree
	}
	seen := make(map[string]bool)
	var check func(n *Node) error
	check = func(n *Node) error {
		if n.ID == "" {
			return ErrEmptyID
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		seen[n.ID] = true
		for _, be := range n.BoundaryEvents {
			if err := check(be); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := check(c); err != nil {
				return err
			}
		}
		return nil
	}
	return check(root)
}

// Walk visits n and its descendants in pre-order. Boundary events are
// visited right after their host. Returning false from fn skips the subtree.
func Walk(n *Node, fn func(n, parent *Node) bool) {
	var walk func(n, parent *Node)
	walk = func(n, parent *Node) {
		if !fn(n, parent) {
			return
		}
		for _, be := range n.BoundaryEvents {
			fn(be, parent)
		}
		for _, c := range n.Children {
			walk(c, n)
		}
	}
	walk(n, nil)
}
