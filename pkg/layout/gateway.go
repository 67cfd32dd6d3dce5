package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

func gatewayDiamond(ix *model.Index, id string) (geom.Diamond, bool) {
	n, ok := ix.Node(id)
	if !ok || !n.Category.IsGateway() {
		return geom.Diamond{}, false
	}
	b, _ := ix.Abs(id)
	return geom.Diamond{Box: b}, true
}

// AdjustGatewayEdges moves the endpoints of edges at gateways from the
// bounding box onto the diamond. A leaving edge starts at the corner nearest
// to its current start. An entering edge ends at the left or right corner
// when its last segment is horizontal and at the top or bottom corner
// otherwise; if its end lies within Gateway.SnapTolerance of that corner it
// is snapped there, else it ends where its last segment meets the outline.
// Snapping keeps routes orthogonal. It returns the number of changed routes.
func AdjustGatewayEdges(ix *model.Index, cfg config.Layout) int {
	changed := 0
	for _, ref := range ix.Edges() {
		pts := ix.RouteAbs(ref)
		if len(pts) < 2 {
			continue
		}
		orig := slices.Clone(pts)
		if d, ok := gatewayDiamond(ix, ref.Edge.Source()); ok {
			pts = snapStart(pts, d.Corner(d.NearestCorner(pts[0])))
		}
		if d, ok := gatewayDiamond(ix, ref.Edge.Target()); ok {
			pts = adjustEnd(pts, d, cfg.Gateway.SnapTolerance)
		}
		if !slices.EqualFunc(orig, pts, geom.Point.Eq) {
			ix.SetRouteAbs(ref, pts)
			changed++
		}
	}
	return changed
}

func adjustEnd(pts []geom.Point, d geom.Diamond, tol float64) []geom.Point {
	last, prev := pts[len(pts)-1], pts[len(pts)-2]
	horizontal := math.Abs(last.X-prev.X) >= math.Abs(last.Y-prev.Y)
	var c geom.Point
	switch {
	case horizontal && prev.X <= last.X:
		c = d.Corner(geom.CornerLeft)
	case horizontal:
		c = d.Corner(geom.CornerRight)
	case prev.Y <= last.Y:
		c = d.Corner(geom.CornerTop)
	default:
		c = d.Corner(geom.CornerBottom)
	}
	if last.Eq(c) {
		return pts
	}
	if last.Dist(c) <= tol {
		return snapEnd(pts, c, horizontal)
	}
	dir := last.Sub(prev)
	l := math.Hypot(dir.X, dir.Y)
	if l < geom.Epsilon {
		return snapEnd(pts, c, horizontal)
	}
	reach := (d.Box.W + d.Box.H) / l
	far := geom.Pt(last.X+dir.X*reach, last.Y+dir.Y*reach)
	if p, ok := d.Intersect(prev, far); ok {
		out := slices.Clone(pts)
		out[len(out)-1] = p
		return out
	}
	return snapEnd(pts, c, horizontal)
}

// snapStart moves the first point to c and repairs the first segment.
func snapStart(pts []geom.Point, c geom.Point) []geom.Point {
	if pts[0].Eq(c) {
		return pts
	}
	rev := slices.Clone(pts)
	slices.Reverse(rev)
	first, second := pts[0], pts[1]
	rev = snapEnd(rev, c, math.Abs(second.X-first.X) >= math.Abs(second.Y-first.Y))
	slices.Reverse(rev)
	return rev
}

// snapEnd moves the last point to c. The last segment keeps its
// orientation: its other end is slid along the previous segment, or a jog is
// inserted when the route is a single segment.
func snapEnd(pts []geom.Point, c geom.Point, horizontal bool) []geom.Point {
	out := slices.Clone(pts)
	n := len(out)
	if n == 2 {
		s := out[0]
		if horizontal {
			if math.Abs(s.Y-c.Y) < geom.Epsilon {
				return []geom.Point{s, c}
			}
			mx := (s.X + c.X) / 2
			return []geom.Point{s, {X: mx, Y: s.Y}, {X: mx, Y: c.Y}, c}
		}
		if math.Abs(s.X-c.X) < geom.Epsilon {
			return []geom.Point{s, c}
		}
		my := (s.Y + c.Y) / 2
		return []geom.Point{s, {X: s.X, Y: my}, {X: c.X, Y: my}, c}
	}
	out[n-1] = c
	if horizontal {
		out[n-2].Y = c.Y
	} else {
		out[n-2].X = c.X
	}
	return out
}
