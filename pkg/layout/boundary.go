package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/layout/tree"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// BoundaryInfo describes one boundary event and the branch it starts.
type BoundaryInfo struct {
	ID      string
	HostID  string
	Targets []string

	// Index is the event's position among the host's boundary events and
	// Count their number.
	Index int
	Count int
}

// MoveInfo is a pending absolute move of one node.
type MoveInfo struct {
	ID      string
	NewY    float64
	OffsetY float64
	// NewX is nil when the node keeps its horizontal position.
	NewX *float64
}

// CollectBoundaryInfo lists every boundary event in declaration order.
func CollectBoundaryInfo(ix *model.Index) []BoundaryInfo {
	var out []BoundaryInfo
	for _, host := range ix.Nodes() {
		for i, be := range host.BoundaryEvents {
			info := BoundaryInfo{ID: be.ID, HostID: host.ID, Index: i, Count: len(host.BoundaryEvents)}
			for _, ref := range ix.Outgoing(be.ID) {
				if _, ok := ix.Node(ref.Edge.Target()); ok && isSequence(ref.Edge) {
					info.Targets = append(info.Targets, ref.Edge.Target())
				}
			}
			out = append(out, info)
		}
	}
	return out
}

// IdentifyNodesToMove decides where boundary branches go. Every branch is
// laid out as a tree hanging below its host: its root goes Boundary.Margin
// below the host and its slot is picked from the event's index, so that
// branches of sibling events never share a column. A branch that would land
// on a node of the host's level is pushed clear of it, downwards when the
// flow is horizontal and to the right when it is vertical. Targets on the
// main flow are never moved.
func IdentifyNodesToMove(ix *model.Index, plan *Plan, infos []BoundaryInfo, cfg config.Layout) map[string]MoveInfo {
	moves := make(map[string]MoveInfo)
	horizontal := plan.Options.Direction.Horizontal()
	opts := tree.Options{
		Direction:  tree.LeftToRight,
		SiblingGap: cfg.Boundary.Spacing,
		LevelGap:   cfg.Boundary.BranchGap,
	}
	if !horizontal {
		opts.Direction = tree.TopDown
	}
	sizes, succ := branchGraph(ix, plan)

	prevRight := make(map[string]float64)
	var placed []geom.Rect
	for _, info := range infos {
		hb, ok := ix.Abs(info.HostID)
		if !ok {
			continue
		}
		beb, _ := ix.Abs(info.ID)
		slot := max(hb.W/float64(info.Count), beb.W+cfg.Boundary.Spacing)
		for _, t := range info.Targets {
			if tb, ok := ix.Abs(t); ok {
				slot = max(slot, tb.W+cfg.Boundary.Spacing)
			}
		}
		start := hb.CenterX() - float64(info.Count)*slot/2
		cx := start + (float64(info.Index)+0.5)*slot

		top := hb.Bottom() + cfg.Boundary.Margin
		for _, t := range info.Targets {
			tb, ok := ix.Abs(t)
			if !ok || plan.MainFlow[t] {
				continue
			}
			if _, done := moves[t]; done {
				continue
			}
			sz := map[string]tree.Size{t: {Width: tb.W, Height: tb.H}}
			for id, s := range sizes {
				if _, done := moves[id]; !done {
					sz[id] = s
				}
			}
			root := tree.BuildTree(t, sz, succ)
			tree.LayoutBoundaryBranch(root, geom.R(cx, hb.Y, 0, top-hb.Y), 0, opts)

			bb := root.Bounds()
			if r, ok := prevRight[info.HostID]; ok && bb.Left() < r+cfg.Boundary.Spacing {
				root.Translate(r+cfg.Boundary.Spacing-bb.Left(), 0)
			}
			obstacles := append(branchObstacles(ix, plan, info.HostID, moves), placed...)
			clearObstacles(root, obstacles, cfg.Boundary.Margin, horizontal)
			bb = root.Bounds()
			prevRight[info.HostID] = bb.Right()
			top = bb.Bottom() + cfg.Boundary.BranchGap

			root.Walk(func(n *tree.Node) {
				if n.Repeat {
					return
				}
				if _, done := moves[n.ID]; done {
					return
				}
				old, _ := ix.Abs(n.ID)
				x := n.X
				moves[n.ID] = MoveInfo{ID: n.ID, NewY: n.Y, OffsetY: n.Y - old.Y, NewX: &x}
				placed = append(placed, geom.R(n.X, n.Y, n.Width, n.Height))
			})
		}
	}
	return moves
}

// branchObstacles returns the absolute bounds of the flow nodes that share
// the host's engine level and stay where they are: everything but branch
// nodes, nodes already moved and the host with its own boundary events.
func branchObstacles(ix *model.Index, plan *Plan, hostID string, moves map[string]MoveInfo) []geom.Rect {
	level := layoutParent(ix, plan, hostID)
	var out []geom.Rect
	for _, n := range ix.Nodes() {
		if n.ID == hostID || !n.Category.IsFlowNode() || plan.Branch[n.ID] {
			continue
		}
		if _, moved := moves[n.ID]; moved {
			continue
		}
		if h := ix.Host(n.ID); h != nil && (h.ID == hostID || plan.Branch[h.ID]) {
			continue
		}
		if layoutParent(ix, plan, n.ID) != level {
			continue
		}
		b, _ := ix.Abs(n.ID)
		out = append(out, b)
	}
	return out
}

// clearObstacles shifts a laid-out branch until none of its nodes overlaps
// an obstacle. Horizontal diagrams push the branch further down, vertical
// ones push it to the right.
// Every step clears at least one obstacle for good.
func clearObstacles(root *tree.Node, obstacles []geom.Rect, gap float64, horizontal bool) {
	for range len(obstacles) + 1 {
		bb := root.Bounds()
		shift := 0.0
		root.Walk(func(n *tree.Node) {
			r := geom.R(n.X, n.Y, n.Width, n.Height)
			for _, ob := range obstacles {
				if !r.Overlaps(ob) {
					continue
				}
				if horizontal {
					shift = max(shift, ob.Bottom()+gap-bb.Top())
				} else {
					shift = max(shift, ob.Right()+gap-bb.Left())
				}
			}
		})
		if shift <= 0 {
			return
		}
		if horizontal {
			root.Translate(0, shift)
		} else {
			root.Translate(shift, 0)
		}
	}
}

// branchGraph returns the sizes of all branch nodes and their sequence-flow
// successors within the branch.
func branchGraph(ix *model.Index, plan *Plan) (map[string]tree.Size, map[string][]string) {
	sizes := make(map[string]tree.Size)
	succ := make(map[string][]string)
	for id := range plan.Branch {
		n, ok := ix.Node(id)
		if !ok {
			continue
		}
		sizes[id] = tree.Size{Width: n.Width, Height: n.Height}
	}
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if !isSequence(e) || !plan.Branch[e.Target()] {
			continue
		}
		succ[e.Source()] = append(succ[e.Source()], e.Target())
	}
	return sizes, succ
}

// ApplyNodeMoves applies moves in ID order. Nodes are found at any depth.
func ApplyNodeMoves(ix *model.Index, moves map[string]MoveInfo) {
	ids := make([]string, 0, len(moves))
	for id := range moves {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		m := moves[id]
		b, ok := ix.Abs(id)
		if !ok {
			continue
		}
		x := b.X
		if m.NewX != nil {
			x = *m.NewX
		}
		ix.SetAbsPosition(id, x, m.NewY)
	}
}

// RepositionConvergingGateways moves every main-flow gateway that receives
// both a relocated branch and the main flow so that it clears all of its
// incoming sources by Boundary.GatewayGap along the flow direction. The main
// flow downstream of a moved gateway is shifted along with it. Every node
// moved here is added to moves.
func RepositionConvergingGateways(ix *model.Index, plan *Plan, moves map[string]MoveInfo, cfg config.Layout) {
	horizontal := plan.Options.Direction.Horizontal()
	for _, g := range ix.Nodes() {
		if !g.Category.IsGateway() || !plan.MainFlow[g.ID] {
			continue
		}
		var fromBranch, fromMain bool
		reach := math.Inf(-1)
		for _, ref := range ix.Incoming(g.ID) {
			src, ok := ix.Abs(ref.Edge.Source())
			if !ok {
				continue
			}
			if _, moved := moves[ref.Edge.Source()]; moved {
				fromBranch = true
			}
			if plan.MainFlow[ref.Edge.Source()] {
				fromMain = true
			}
			edge := src.Right()
			if !horizontal {
				edge = src.Bottom()
			}
			reach = max(reach, edge)
		}
		if !fromBranch || !fromMain {
			continue
		}

		gb, _ := ix.Abs(g.ID)
		var dx, dy float64
		if horizontal {
			dx = reach + cfg.Boundary.GatewayGap - gb.X
		} else {
			dy = reach + cfg.Boundary.GatewayGap - gb.Y
		}
		if dx <= 0 && dy <= 0 {
			continue
		}
		ix.MoveBy(g.ID, dx, dy)
		recordMove(ix, moves, g.ID, dy)
		for _, id := range PropagateGateway(ix, plan, g.ID, dx, dy) {
			recordMove(ix, moves, id, dy)
		}
	}
}

func recordMove(ix *model.Index, moves map[string]MoveInfo, id string, dy float64) {
	b, _ := ix.Abs(id)
	x := b.X
	moves[id] = MoveInfo{ID: id, NewY: b.Y, OffsetY: dy, NewX: &x}
}

// RecalculateEdgesForMovedNodes reroutes every edge touching a moved node
// and returns how many routes changed.
func RecalculateEdgesForMovedNodes(ix *model.Index, moves map[string]MoveInfo) int {
	n := 0
	for _, ref := range ix.Edges() {
		e := ref.Edge
		_, s := moves[e.Source()]
		_, t := moves[e.Target()]
		if !s && !t {
			continue
		}
		if routeEdge(ix, ref) {
			n++
		}
	}
	return n
}

// HandleBoundaryEvents relocates boundary branches below their hosts and
// repairs the flow they rejoin.
func HandleBoundaryEvents(ix *model.Index, plan *Plan, cfg config.Layout) map[string]MoveInfo {
	infos := CollectBoundaryInfo(ix)
	if len(infos) == 0 {
		return nil
	}
	moves := IdentifyNodesToMove(ix, plan, infos, cfg)
	if len(moves) == 0 {
		return moves
	}
	ApplyNodeMoves(ix, moves)
	RepositionConvergingGateways(ix, plan, moves, cfg)
	RecalculateEdgesForMovedNodes(ix, moves)
	return moves
}
