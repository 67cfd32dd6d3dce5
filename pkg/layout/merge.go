package layout

import (
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/engine"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// MergeEngineResult copies the engine's coordinates onto the working tree.
//
// Containers that were hoisted out of the engine tree are placed at their
// parent's origin so that the coordinates of their children coincide with
// the engine's. Boundary events are snapped onto the bottom border of their
// host, spread evenly, and every edge receives a fresh default route.
func MergeEngineResult(ix *model.Index, plan *Plan, cfg config.Layout) {
	for id := range plan.Hoisted {
		if n, ok := ix.Node(id); ok {
			n.X, n.Y = 0, 0
		}
	}
	ix.Refresh()

	root := ix.Root()
	root.Width = max(root.Width, plan.Engine.Width)
	root.Height = max(root.Height, plan.Engine.Height)

	var walk func(en *engine.Node, base geom.Point)
	walk = func(en *engine.Node, base geom.Point) {
		for _, c := range en.Children {
			abs := base.Translate(c.X, c.Y)
			if n, ok := ix.Node(c.ID); ok {
				ix.SetAbsPosition(c.ID, abs.X, abs.Y)
				if c.Width > 0 {
					n.Width = c.Width
				}
				if c.Height > 0 {
					n.Height = c.Height
				}
			}
			walk(c, abs)
		}
	}
	walk(plan.Engine, ix.Origin(root.ID))

	for _, n := range ix.Nodes() {
		snapBoundaryEvents(ix, n)
	}

	for _, ref := range ix.Edges() {
		ref.Edge.Space = model.SpaceUnset
		ref.Edge.Route = nil
		routeEdge(ix, ref)
	}
}

// snapBoundaryEvents centres the boundary events of host on its bottom
// border, the i-th of k at (i+1)/(k+1) of the host's width.
func snapBoundaryEvents(ix *model.Index, host *model.Node) {
	k := len(host.BoundaryEvents)
	if k == 0 {
		return
	}
	hb, ok := ix.Abs(host.ID)
	if !ok {
		return
	}
	for i, be := range host.BoundaryEvents {
		cx := hb.X + hb.W*float64(i+1)/float64(k+1)
		ix.SetAbsPosition(be.ID, cx-be.Width/2, hb.Bottom()-be.Height/2)
	}
}

// RecomputeContainerBounds refits every container bottom-up. Sub-processes
// and processes are fitted tightly around their children plus padding;
// lanes, pools, collaborations and the root only grow. Moving a container's
// border never moves its children in absolute terms.
func RecomputeContainerBounds(ix *model.Index, cfg config.Layout) {
	var visit func(n *model.Node)
	visit = func(n *model.Node) {
		for _, c := range n.Children {
			visit(c)
		}
		if n.IsContainer() && len(n.Children) > 0 {
			fitBounds(ix, n, cfg)
		}
	}
	visit(ix.Root())
}

// tightFit reports whether n shrinks to its content.
func tightFit(n *model.Node) bool {
	return n.Category.IsSubProcess() || n.Category == model.CategoryProcess
}

// contentBounds returns the bounding box of n's children and their boundary
// events in n's own coordinate space.
func contentBounds(n *model.Node) (geom.Rect, bool) {
	var rects []geom.Rect
	for _, c := range n.Children {
		rects = append(rects, c.Bounds())
		for _, be := range c.BoundaryEvents {
			rects = append(rects, be.Bounds())
		}
	}
	if len(rects) == 0 {
		return geom.Rect{}, false
	}
	return geom.BoundingBox(rects...), true
}

func fitBounds(ix *model.Index, n *model.Node, cfg config.Layout) {
	bb, ok := contentBounds(n)
	if !ok {
		return
	}
	var pad model.Padding
	tight := tightFit(n)
	if tight {
		pad = containerPadding(n, cfg)
	}

	var dx, dy, w, h float64
	switch {
	case ix.Parent(n.ID) == nil:
		if sx, sy := max(0, -bb.X), max(0, -bb.Y); sx > 0 || sy > 0 {
			shiftContent(ix, n, sx, sy)
			bb = bb.Translate(sx, sy)
		}
		w = max(n.Width, bb.Right())
		h = max(n.Height, bb.Bottom())
	case tight:
		dx, dy = bb.X-pad.Left, bb.Y-pad.Top
		w = bb.W + pad.Left + pad.Right
		h = bb.H + pad.Top + pad.Bottom
	default:
		dx, dy = min(0, bb.X-pad.Left), min(0, bb.Y-pad.Top)
		w = max(n.Width, bb.Right()+pad.Right) - dx
		h = max(n.Height, bb.Bottom()+pad.Bottom) - dy
	}

	o := ix.Origin(n.ID)
	placeFrame(ix, n, o.X+dx, o.Y+dy)
	n.Width, n.Height = w, h
}

// placeFrame moves container n to the absolute position (x, y). Its children
// and the routes anchored at it keep their absolute geometry.
func placeFrame(ix *model.Index, n *model.Node, x, y float64) {
	o := ix.Origin(n.ID)
	dx, dy := x-o.X, y-o.Y
	if dx == 0 && dy == 0 {
		return
	}
	preserveRoutes(ix, ownedRoutes(ix, n), func() {
		ix.MoveBy(n.ID, dx, dy)
		for _, c := range n.Children {
			ix.MoveBy(c.ID, -dx, -dy)
		}
	})
}

// shiftContent moves every child of n, and every route, by (dx, dy).
func shiftContent(ix *model.Index, n *model.Node, dx, dy float64) {
	edges := ix.Edges()
	before := make([][]geom.Point, len(edges))
	for i, ref := range edges {
		before[i] = ix.RouteAbs(ref)
	}
	for _, c := range n.Children {
		ix.MoveBy(c.ID, dx, dy)
	}
	for i, ref := range edges {
		if before[i] != nil {
			ix.SetRouteAbs(ref, geom.TranslateAll(before[i], dx, dy))
		}
	}
}
