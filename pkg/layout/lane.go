package layout

import (
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// laneTree groups lane records by the ID of their parent, each group sorted
// by partition order.
type laneTree map[string][]LaneRecord

func newLaneTree(lanes []LaneRecord) (laneTree, []string) {
	t := make(laneTree)
	var pools []string
	for _, l := range lanes {
		if l.ParentID == l.PoolID && !slices.Contains(pools, l.PoolID) {
			pools = append(pools, l.PoolID)
		}
		t[l.ParentID] = append(t[l.ParentID], l)
	}
	for _, recs := range t {
		slices.SortStableFunc(recs, func(a, b LaneRecord) int { return a.Order - b.Order })
	}
	return t, pools
}

// ArrangeLanes rebuilds the lane stack of every pool with lanes.
//
// Lanes are ordered by partition order and stacked without gaps. A leaf
// lane is as tall as its content plus Lane.ExtraHeight, or Lane.MinHeight
// when it is empty; a lane with sub-lanes is as tall as they are together.
// Content is centred vertically in its lane and shifted horizontally so that
// every lane starts its content at the same column. Lanes span the pool's
// width minus the pool header, nested lanes their parent's width minus the
// lane header. Edges inside the pool are rerouted afterwards.
func ArrangeLanes(ix *model.Index, plan *Plan, cfg config.Layout) {
	t, pools := newLaneTree(plan.Lanes)
	for _, id := range pools {
		if pool, ok := ix.Node(id); ok {
			arrangePoolLanes(ix, pool, t, cfg)
		}
	}
}

func arrangePoolLanes(ix *model.Index, pool *model.Node, t laneTree, cfg config.Layout) {
	spans := make(map[string]geom.Rect)
	var content []geom.Rect
	depth := 0
	var collect func(recs []LaneRecord)
	collect = func(recs []LaneRecord) {
		for _, rec := range recs {
			depth = max(depth, rec.Depth)
			if r, ok := memberSpan(ix, rec.Members); ok {
				spans[rec.ID] = r
				content = append(content, r)
			}
			collect(t[rec.ID])
		}
	}
	collect(t[pool.ID])

	var height func(rec LaneRecord) float64
	height = func(rec LaneRecord) float64 {
		h := 0.0
		for _, k := range t[rec.ID] {
			h += height(k)
		}
		if span, ok := spans[rec.ID]; ok {
			h = max(h, span.H+cfg.Lane.ExtraHeight)
		}
		if h == 0 {
			h = cfg.Lane.MinHeight
		}
		return h
	}

	po := ix.Origin(pool.ID)
	inset := cfg.Pool.HeaderWidth + float64(depth+1)*cfg.Lane.HeaderWidth + cfg.Lane.ContentInset
	var dx, contentW float64
	if len(content) > 0 {
		all := geom.BoundingBox(content...)
		dx = po.X + inset - all.X
		contentW = all.W
	}
	width := inset + contentW + cfg.Lane.ContentInset

	var place func(recs []LaneRecord, base geom.Point, x, w float64) float64
	place = func(recs []LaneRecord, base geom.Point, x, w float64) float64 {
		y := 0.0
		for _, rec := range recs {
			lane, ok := ix.Node(rec.ID)
			if !ok {
				continue
			}
			h := height(rec)
			placeFrame(ix, lane, base.X+x, base.Y+y)
			lane.Width, lane.Height = w, h
			if span, ok := spans[rec.ID]; ok {
				dy := base.Y + y + h/2 - span.CenterY()
				for _, id := range rec.Members {
					ix.MoveBy(id, dx, dy)
				}
			}
			place(t[rec.ID], ix.Origin(rec.ID), cfg.Lane.HeaderWidth, w-cfg.Lane.HeaderWidth)
			y += h
		}
		return y
	}
	total := place(t[pool.ID], po, cfg.Pool.HeaderWidth, width-cfg.Pool.HeaderWidth)
	pool.Width, pool.Height = width, total

	reroutePool(ix, pool)
}

// memberSpan returns the absolute bounding box of the given nodes and
// their boundary events.
func memberSpan(ix *model.Index, ids []string) (geom.Rect, bool) {
	var rects []geom.Rect
	for _, id := range ids {
		n, ok := ix.Node(id)
		if !ok {
			continue
		}
		b, _ := ix.Abs(id)
		rects = append(rects, b)
		for _, be := range n.BoundaryEvents {
			bb, _ := ix.Abs(be.ID)
			rects = append(rects, bb)
		}
	}
	if len(rects) == 0 {
		return geom.Rect{}, false
	}
	return geom.BoundingBox(rects...), true
}

// widenLanes stretches the lanes of pool to its current width.
func widenLanes(pool *model.Node, cfg config.Layout) {
	var widen func(n *model.Node, w float64)
	widen = func(n *model.Node, w float64) {
		for _, c := range n.Children {
			if c.Category == model.CategoryLane {
				c.Width = w
				widen(c, w-cfg.Lane.HeaderWidth)
			}
		}
	}
	widen(pool, pool.Width-cfg.Pool.HeaderWidth)
}

// laneRoute leaves and enters horizontally, with a vertical jog halfway
// when the ends sit at different heights. Targets that are not ahead of the
// source fall back to the default route.
func laneRoute(src, dst geom.Rect) []geom.Point {
	if dst.Left() < src.Right() {
		return flowRoute(src, dst)
	}
	return sideRoute(src.Anchor(geom.SideRight), geom.SideRight, dst.Anchor(geom.SideLeft), geom.SideLeft)
}

// reroutePool recomputes every sequence flow and association whose ends are
// both inside pool.
func reroutePool(ix *model.Index, pool *model.Node) {
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if e.Category == model.EdgeMessageFlow || ix.PoolOf(e.Source()) != pool || ix.PoolOf(e.Target()) != pool {
			continue
		}
		src, dst, ok := ix.Endpoints(ref)
		if !ok {
			continue
		}
		if ix.IsBoundaryEvent(e.Source()) || e.Category.IsAssociation() {
			routeEdge(ix, ref)
			continue
		}
		ix.SetRouteAbs(ref, laneRoute(src, dst))
	}
}
