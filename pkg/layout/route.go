package layout

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// flowRoute returns an orthogonal route between two absolute rectangles.
// The sides are chosen from the centre-to-centre vector; aligned anchors give
// a straight segment, facing sides a Z with the jog halfway, and a side
// change an L.
func flowRoute(src, dst geom.Rect) []geom.Point {
	ss, ds := geom.DominantSides(src, dst)
	return sideRoute(src.Anchor(ss), ss, dst.Anchor(ds), ds)
}

// boundaryRoute routes an edge leaving a boundary event. It always leaves
// through the bottom and turns towards the target.
func boundaryRoute(be, dst geom.Rect) []geom.Point {
	s := be.Anchor(geom.SideBottom)
	switch {
	case math.Abs(s.X-dst.CenterX()) < geom.Epsilon && dst.Top() >= s.Y:
		return []geom.Point{s, dst.Anchor(geom.SideTop)}
	case dst.Bottom() <= s.Y:
		// Target above the event: leave down, then go around.
		_, ds := geom.DominantSides(be, dst)
		return sideRoute(s, geom.SideBottom, dst.Anchor(ds), ds)
	case dst.CenterX() >= s.X:
		t := dst.Anchor(geom.SideLeft)
		if t.X <= s.X {
			t = dst.Anchor(geom.SideTop)
			return sideRoute(s, geom.SideBottom, t, geom.SideTop)
		}
		return []geom.Point{s, {X: s.X, Y: t.Y}, t}
	default:
		t := dst.Anchor(geom.SideRight)
		if t.X >= s.X {
			t = dst.Anchor(geom.SideTop)
			return sideRoute(s, geom.SideBottom, t, geom.SideTop)
		}
		return []geom.Point{s, {X: s.X, Y: t.Y}, t}
	}
}

func horizontalSide(s geom.Side) bool { return s == geom.SideLeft || s == geom.SideRight }

func sideRoute(s geom.Point, ss geom.Side, t geom.Point, ts geom.Side) []geom.Point {
	switch {
	case horizontalSide(ss) && horizontalSide(ts):
		if math.Abs(s.Y-t.Y) < geom.Epsilon {
			return []geom.Point{s, t}
		}
		mx := (s.X + t.X) / 2
		return []geom.Point{s, {X: mx, Y: s.Y}, {X: mx, Y: t.Y}, t}
	case !horizontalSide(ss) && !horizontalSide(ts):
		if math.Abs(s.X-t.X) < geom.Epsilon {
			return []geom.Point{s, t}
		}
		my := (s.Y + t.Y) / 2
		return []geom.Point{s, {X: s.X, Y: my}, {X: t.X, Y: my}, t}
	case horizontalSide(ss):
		return []geom.Point{s, {X: t.X, Y: s.Y}, t}
	default:
		return []geom.Point{s, {X: s.X, Y: t.Y}, t}
	}
}

// routeEdge computes a default route for ref from the current absolute
// positions and stores it. Edges with unresolvable endpoints are skipped.
func routeEdge(ix *model.Index, ref *model.EdgeRef) bool {
	src, dst, ok := ix.Endpoints(ref)
	if !ok {
		return false
	}
	if ix.IsBoundaryEvent(ref.Edge.Source()) {
		ix.SetRouteAbs(ref, boundaryRoute(src, dst))
	} else {
		ix.SetRouteAbs(ref, flowRoute(src, dst))
	}
	return true
}

// preserveRoutes runs fn and then restores the absolute geometry of refs.
// Use it around moves of a container whose own coordinate space carries the
// routes of edges that did not move.
func preserveRoutes(ix *model.Index, refs []*model.EdgeRef, fn func()) {
	saved := make([][]geom.Point, len(refs))
	for i, ref := range refs {
		saved[i] = ix.RouteAbs(ref)
	}
	fn()
	for i, ref := range refs {
		if saved[i] != nil {
			ix.SetRouteAbs(ref, saved[i])
		}
	}
}

// ownedRoutes returns the routed edges whose coordinate space is anchored at
// n: local edges it owns, and pool edges when n is a pool.
func ownedRoutes(ix *model.Index, n *model.Node) []*model.EdgeRef {
	var out []*model.EdgeRef
	for _, e := range n.Edges {
		ref := ix.Ref(e)
		if ref == nil || e.Route == nil {
			continue
		}
		switch e.Space {
		case model.SpaceLocal:
			out = append(out, ref)
		case model.SpacePool:
			if ix.PoolOf(e.Source()) == nil || ix.PoolOf(e.Source()) == n {
				out = append(out, ref)
			}
		}
	}
	if n.Category == model.CategoryParticipant {
		for _, ref := range ix.Edges() {
			if ref.Owner != n && ref.Edge.Space == model.SpacePool && ref.Edge.Route != nil &&
				ix.PoolOf(ref.Edge.Source()) == n {
				out = append(out, ref)
			}
		}
	}
	return out
}
