package layout

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// Obstacle is the absolute box of a node that edges must not cross.
type Obstacle struct {
	ID  string
	Box geom.Rect
}

// obstacleIndex holds the flow nodes of each pool, keyed by pool ID. Nodes
// outside any pool are keyed by the empty string.
type obstacleIndex map[string][]Obstacle

func poolKey(ix *model.Index, id string) string {
	if p := ix.PoolOf(id); p != nil {
		return p.ID
	}
	return ""
}

func buildObstacleIndex(ix *model.Index) obstacleIndex {
	idx := make(obstacleIndex)
	for _, n := range ix.Nodes() {
		if !n.Category.IsFlowNode() || n.IsContainer() {
			continue
		}
		b, ok := ix.Abs(n.ID)
		if !ok || b.Empty() {
			continue
		}
		k := poolKey(ix, n.ID)
		idx[k] = append(idx[k], Obstacle{ID: n.ID, Box: b})
	}
	return idx
}

// forEdge returns the obstacles an edge has to avoid: the flow nodes in
// the pools of both ends, minus the ends themselves, the host of an end that
// is a boundary event and the boundary events attached to either end.
func (idx obstacleIndex) forEdge(ix *model.Index, e *model.Edge) []Obstacle {
	skip := map[string]bool{e.Source(): true, e.Target(): true}
	for _, id := range []string{e.Source(), e.Target()} {
		if h := ix.Host(id); h != nil {
			skip[h.ID] = true
		}
		if n, ok := ix.Node(id); ok {
			for _, be := range n.BoundaryEvents {
				skip[be.ID] = true
			}
		}
	}
	keys := []string{poolKey(ix, e.Source())}
	if k := poolKey(ix, e.Target()); k != keys[0] {
		keys = append(keys, k)
	}
	var out []Obstacle
	for _, k := range keys {
		for _, o := range idx[k] {
			if !skip[o.ID] {
				out = append(out, o)
			}
		}
	}
	return out
}

// crossesObstacle reports whether any segment of pts passes through the
// interior of an obstacle.
func crossesObstacle(pts []geom.Point, obstacles []Obstacle) bool {
	for _, o := range obstacles {
		if geom.PolylineIntersectsRect(pts, o.Box) {
			return true
		}
	}
	return false
}

// clipsTargetTop reports whether a route into a target above its source
// ends with a horizontal run along the target's top edge.
func clipsTargetTop(pts []geom.Point, src, dst geom.Rect) bool {
	if len(pts) < 2 || dst.CenterY() >= src.CenterY() {
		return false
	}
	a, b := pts[len(pts)-2], pts[len(pts)-1]
	if math.Abs(a.Y-b.Y) > geom.Epsilon || math.Abs(b.Y-dst.Top()) > geom.Epsilon {
		return false
	}
	lo, hi := min(a.X, b.X), max(a.X, b.X)
	return hi-lo > geom.Epsilon && lo < dst.Right() && hi > dst.Left()
}

// FixEdges reroutes every edge whose route crosses a flow node other than
// its ends, or runs along the top of a target that lies above its source.
// Edges that are already clear are left untouched. It returns the number of
// rerouted edges.
func FixEdges(ix *model.Index, cfg config.Layout) int {
	idx := buildObstacleIndex(ix)
	router := NewRouter(cfg.Router)
	fixed := 0
	for _, ref := range ix.Edges() {
		pts := ix.RouteAbs(ref)
		if len(pts) < 2 {
			continue
		}
		src, dst, ok := ix.Endpoints(ref)
		if !ok {
			continue
		}
		obstacles := idx.forEdge(ix, ref.Edge)
		if !crossesObstacle(pts, obstacles) && !clipsTargetTop(pts, src, dst) {
			continue
		}
		boxes := make([]geom.Rect, len(obstacles))
		for i, o := range obstacles {
			boxes[i] = o.Box
		}
		route, _ := router.Route(src, dst, boxes)
		ix.SetRouteAbs(ref, route)
		fixed++
	}
	return fixed
}
