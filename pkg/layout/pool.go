package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/constraint"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

func poolsOf(n *model.Node) []*model.Node {
	var out []*model.Node
	for _, c := range n.Children {
		if c.Category == model.CategoryParticipant {
			out = append(out, c)
		}
	}
	return out
}

// poolContent returns the top-level content of pool, looking through lanes.
func poolContent(pool *model.Node) []string {
	var out []string
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		for _, c := range n.Children {
			if c.Category == model.CategoryLane {
				walk(c)
				continue
			}
			out = append(out, c.ID)
		}
	}
	walk(pool)
	return out
}

// =============================================================================
// Flattened collaborations
// =============================================================================

// RegroupFlattenedPools moves the content of every flattened collaboration
// back into its pools. The engine placed all of it in the collaboration's
// space; each pool now gets the slice it owns, shifted into pool-local
// coordinates past the pool header. Pools share the width of the whole
// collaboration's content and are as tall as their own content plus
// Pool.ExtraHeight. Artifacts are placed next to their task again
// afterwards.
func RegroupFlattenedPools(ix *model.Index, plan *Plan, cfg config.Layout) {
	regrouped := false
	for _, collab := range ix.Nodes() {
		if !plan.Flattened[collab.ID] {
			continue
		}
		regroupCollaboration(ix, collab, cfg)
		regrouped = true
	}
	if regrouped {
		RepositionArtifacts(ix, CollectArtifactInfo(ix), cfg)
	}
}

func regroupCollaboration(ix *model.Index, collab *model.Node, cfg config.Layout) {
	pools := poolsOf(collab)
	members := make(map[string][]string, len(pools))
	spans := make(map[string]geom.Rect, len(pools))
	var all []geom.Rect
	for _, p := range pools {
		members[p.ID] = poolContent(p)
		if span, ok := memberSpan(ix, members[p.ID]); ok {
			spans[p.ID] = span
			all = append(all, span)
		}
	}
	if len(all) == 0 {
		return
	}
	global := geom.BoundingBox(all...)
	width := cfg.Pool.HeaderWidth + cfg.Pool.ExtraWidth + global.W

	co := ix.Origin(collab.ID)
	y := co.Y
	for _, p := range pools {
		span, ok := spans[p.ID]
		if !ok {
			ix.SetAbsPosition(p.ID, co.X, y)
			p.Width = width
			p.Height = max(p.Height, cfg.Pool.BlackBoxHeight)
			y += p.Height + cfg.Pool.Gap
			continue
		}
		placeFrame(ix, p, co.X, y)
		dx := co.X + cfg.Pool.HeaderWidth + cfg.Pool.ExtraWidth/2 - global.X
		dy := y + cfg.Pool.ExtraHeight/2 - span.Y
		for _, id := range members[p.ID] {
			ix.MoveBy(id, dx, dy)
		}
		p.Width = width
		p.Height = span.H + cfg.Pool.ExtraHeight
		y += p.Height + cfg.Pool.Gap
	}
}

// =============================================================================
// Stacking
// =============================================================================

// ArrangePools stacks the pools of every collaboration in declaration order.
//
// Outside flattened collaborations, pools without lanes are first grown to
// cover all of their content, then get a header and Pool.ExtraWidth and
// Pool.ExtraHeight of room around it, and
// black-box pools are Pool.BlackBoxHeight tall. All pools of a
// collaboration then share the widest pool's width and are stacked by the
// constraint solver, Pool.Gap apart. Edges between and inside the pools are
// rerouted afterwards.
func ArrangePools(ix *model.Index, plan *Plan, cfg config.Layout) error {
	for _, parent := range slices.Clone(ix.Nodes()) {
		pools := poolsOf(parent)
		if len(pools) == 0 {
			continue
		}
		if !plan.Flattened[parent.ID] {
			for _, p := range pools {
				padPool(ix, p, cfg)
			}
		}
		if err := stackPools(ix, parent, pools, cfg); err != nil {
			return err
		}
		routePoolEdges(ix, pools, cfg)
	}
	return nil
}

func padPool(ix *model.Index, p *model.Node, cfg config.Layout) {
	switch {
	case p.IsBlackBox():
		p.Height = cfg.Pool.BlackBoxHeight
		p.Width = max(p.Width, cfg.Pool.BlackBoxWidth)
	case !p.HasLanes():
		frame := poolFrame(p)
		dx := cfg.Pool.HeaderWidth + cfg.Pool.ExtraWidth/2 - frame.X
		dy := cfg.Pool.ExtraHeight/2 - frame.Y
		for _, c := range p.Children {
			ix.MoveBy(c.ID, dx, dy)
		}
		p.Width = frame.W + cfg.Pool.HeaderWidth + cfg.Pool.ExtraWidth
		p.Height = frame.H + cfg.Pool.ExtraHeight
	}
}

// poolFrame returns the engine's frame of p grown to cover whatever the
// earlier stages moved past it, such as artifacts placed above their task.
// The result is in p's own coordinate space.
func poolFrame(p *model.Node) geom.Rect {
	frame := geom.R(0, 0, p.Width, p.Height)
	if bb, ok := contentBounds(p); ok {
		frame = frame.Union(bb)
	}
	return frame
}

func stackPools(ix *model.Index, parent *model.Node, pools []*model.Node, cfg config.Layout) error {
	width := 0.0
	for _, p := range pools {
		width = max(width, p.Width)
	}

	s := constraint.New()
	for i, p := range pools {
		if err := s.AddNode(p.ID, geom.R(0, 0, width, p.Height)); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "stacking pools of %s", parent.ID)
		}
		if i > 0 {
			if err := s.Below(p.ID, pools[i-1].ID, cfg.Pool.Gap, constraint.Required); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "stacking pools of %s", parent.ID)
			}
		}
	}
	boxes := s.Solve()
	if err := s.Verify(); err != nil {
		return errors.Wrap(errors.ErrCodeUnsatisfiable, err, "pools of %s cannot be stacked", parent.ID)
	}

	o := ix.Origin(parent.ID)
	bottom := 0.0
	for _, p := range pools {
		b := boxes[p.ID]
		ix.SetAbsPosition(p.ID, o.X+b.X, o.Y+b.Y)
		p.Width = width
		widenLanes(p, cfg)
		bottom = max(bottom, b.Bottom())
	}
	if parent.Category == model.CategoryCollaboration {
		parent.Width, parent.Height = width, bottom
	} else {
		parent.Width, parent.Height = max(parent.Width, width), max(parent.Height, bottom)
	}
	return nil
}

// routePoolEdges reroutes every edge that touches one of pools.
func routePoolEdges(ix *model.Index, pools []*model.Node, cfg config.Layout) {
	for _, p := range pools {
		reroutePool(ix, p)
	}
	for _, ref := range ix.Edges() {
		e := ref.Edge
		sp, tp := ix.PoolOf(e.Source()), ix.PoolOf(e.Target())
		if sp == tp || !slices.Contains(pools, sp) && !slices.Contains(pools, tp) {
			continue
		}
		if e.Category == model.EdgeMessageFlow {
			routeMessageFlow(ix, ref, cfg)
		} else {
			routeEdge(ix, ref)
		}
	}
}

// =============================================================================
// Message flows
// =============================================================================

// messageObstacles returns the absolute bounds of every flow node and
// artifact except the given endpoints.
func messageObstacles(ix *model.Index, except ...string) []geom.Rect {
	var out []geom.Rect
	for _, n := range ix.Nodes() {
		if n.IsContainer() && len(n.Children) > 0 || n.Category.IsSwimlane() || n.Category == model.CategoryGroup {
			continue
		}
		if slices.Contains(except, n.ID) {
			continue
		}
		if b, ok := ix.Abs(n.ID); ok && !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}

// routeMessageFlow routes a message flow between two stacked pools with a
// vertical trunk. A black-box end takes its axis from the other end. When
// the trunk would cut through a node, it moves to the nearest clear channel
// and jogs into it just outside both ends.
func routeMessageFlow(ix *model.Index, ref *model.EdgeRef, cfg config.Layout) {
	src, dst, ok := ix.Endpoints(ref)
	if !ok {
		return
	}
	if src.OverlapsY(dst) {
		ix.SetRouteAbs(ref, flowRoute(src, dst))
		return
	}
	srcBox, _ := ix.Node(ref.Edge.Source())
	dstBox, _ := ix.Node(ref.Edge.Target())

	down := dst.CenterY() > src.CenterY()
	sy, ty, dir := src.Bottom(), dst.Top(), 1.0
	if !down {
		sy, ty, dir = src.Top(), dst.Bottom(), -1.0
	}
	sx, tx := src.CenterX(), dst.CenterX()
	switch {
	case srcBox.IsBlackBox() && !dstBox.IsBlackBox():
		sx = clamp(tx, src.Left(), src.Right())
	case dstBox.IsBlackBox() && !srcBox.IsBlackBox():
		tx = clamp(sx, dst.Left(), dst.Right())
	}

	obstacles := messageObstacles(ix, ref.Edge.Source(), ref.Edge.Target())
	lo, hi := min(sy, ty), max(sy, ty)
	var pts []geom.Point
	if math.Abs(sx-tx) < geom.Epsilon {
		pts = []geom.Point{{X: sx, Y: sy}, {X: tx, Y: ty}}
	} else {
		my := (sy + ty) / 2
		pts = []geom.Point{{X: sx, Y: sy}, {X: sx, Y: my}, {X: tx, Y: my}, {X: tx, Y: ty}}
	}
	if crossings(pts, obstacles) > 0 {
		c := cfg.Message.Clearance
		x := clearChannel(sx, lo, hi, obstacles, c)
		y1, y2 := sy+dir*c/2, ty-dir*c/2
		pts = []geom.Point{{X: sx, Y: sy}, {X: sx, Y: y1}, {X: x, Y: y1}, {X: x, Y: y2}, {X: tx, Y: y2}, {X: tx, Y: ty}}
	}
	ix.SetRouteAbs(ref, pts)
}

func clamp(v, lo, hi float64) float64 { return min(max(v, lo), hi) }

// clearChannel returns the x closest to pref at which a vertical line from
// lo to hi keeps clearance from every obstacle. Obstacles spanning the range
// are merged into blocked intervals; the answer is pref itself, a point in
// the nearest gap between intervals, or a point left or right of all of
// them.
func clearChannel(pref, lo, hi float64, obstacles []geom.Rect, clearance float64) float64 {
	var iv [][2]float64
	for _, o := range obstacles {
		if o.Bottom() > lo && o.Top() < hi {
			iv = append(iv, [2]float64{o.Left() - clearance, o.Right() + clearance})
		}
	}
	if len(iv) == 0 {
		return pref
	}
	slices.SortFunc(iv, func(a, b [2]float64) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	merged := [][2]float64{iv[0]}
	for _, cur := range iv[1:] {
		last := &merged[len(merged)-1]
		if cur[0] <= last[1] {
			last[1] = max(last[1], cur[1])
			continue
		}
		merged = append(merged, cur)
	}

	blocked := false
	for _, m := range merged {
		if pref > m[0] && pref < m[1] {
			blocked = true
			break
		}
	}
	if !blocked {
		return pref
	}

	best := merged[0][0]
	try := func(x float64) {
		if math.Abs(x-pref) < math.Abs(best-pref) {
			best = x
		}
	}
	try(merged[len(merged)-1][1])
	for i := 0; i+1 < len(merged); i++ {
		try(clamp(pref, merged[i][1], merged[i+1][0]))
	}
	return best
}
