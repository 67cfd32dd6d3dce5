package layout

import (
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// layoutParent returns the container whose engine level positioned id:
// the nearest ancestor that was not hoisted out of the engine tree.
func layoutParent(ix *model.Index, plan *Plan, id string) *model.Node {
	p := ix.Parent(id)
	for p != nil && plan.Hoisted[p.ID] {
		p = ix.Parent(p.ID)
	}
	return p
}

// NormalizeMainFlow aligns the trunk of the diagram. Within each engine
// level, a main-flow node that has no other main-flow node in its column is
// centred on the axis through the level's first start event. A node is left
// where it is when the snap would make it overlap a sibling. It reports
// whether anything moved.
func NormalizeMainFlow(ix *model.Index, plan *Plan) bool {
	horizontal := plan.Options.Direction.Horizontal()

	levels := make(map[*model.Node][]*model.Node)
	var parents []*model.Node
	for _, n := range ix.Nodes() {
		if ix.IsBoundaryEvent(n.ID) || plan.Hoisted[n.ID] || ix.Parent(n.ID) == nil {
			continue
		}
		p := layoutParent(ix, plan, n.ID)
		if _, seen := levels[p]; !seen {
			parents = append(parents, p)
		}
		levels[p] = append(levels[p], n)
	}

	moved := false
	for _, p := range parents {
		members := levels[p]
		axis, ok := mainAxis(ix, plan, members, horizontal)
		if !ok {
			continue
		}
		for _, n := range members {
			if !plan.MainFlow[n.ID] || !aloneInColumn(ix, plan, n, members, horizontal) {
				continue
			}
			b, _ := ix.Abs(n.ID)
			var dx, dy float64
			if horizontal {
				dy = axis - b.CenterY()
			} else {
				dx = axis - b.CenterX()
			}
			if math.Abs(dx) < geom.Epsilon && math.Abs(dy) < geom.Epsilon {
				continue
			}
			if collides(ix, n, b.Translate(dx, dy), members) {
				continue
			}
			ix.MoveBy(n.ID, dx, dy)
			moved = true
		}
	}
	if moved {
		for _, ref := range ix.Edges() {
			routeEdge(ix, ref)
		}
	}
	return moved
}

// mainAxis returns the centre line of the first start event among members.
func mainAxis(ix *model.Index, plan *Plan, members []*model.Node, horizontal bool) (float64, bool) {
	for _, n := range members {
		if n.Category != model.CategoryStartEvent || !plan.MainFlow[n.ID] {
			continue
		}
		b, _ := ix.Abs(n.ID)
		if horizontal {
			return b.CenterY(), true
		}
		return b.CenterX(), true
	}
	return 0, false
}

func aloneInColumn(ix *model.Index, plan *Plan, n *model.Node, members []*model.Node, horizontal bool) bool {
	b, _ := ix.Abs(n.ID)
	for _, m := range members {
		if m == n || !plan.MainFlow[m.ID] {
			continue
		}
		mb, _ := ix.Abs(m.ID)
		if horizontal && b.OverlapsX(mb) || !horizontal && b.OverlapsY(mb) {
			return false
		}
	}
	return true
}

// collides reports whether r overlaps any member other than n, n's
// boundary events and groups.
func collides(ix *model.Index, n *model.Node, r geom.Rect, members []*model.Node) bool {
	for _, m := range members {
		if m == n || ix.Host(m.ID) == n || m.Category == model.CategoryGroup {
			continue
		}
		mb, _ := ix.Abs(m.ID)
		if r.Overlaps(mb) {
			return true
		}
	}
	return false
}

// PropagateGateway shifts every main-flow node downstream of gatewayID by
// (dx, dy). The gateway itself is expected to have moved already. It returns
// the IDs it moved.
func PropagateGateway(ix *model.Index, plan *Plan, gatewayID string, dx, dy float64) []string {
	visited := map[string]bool{gatewayID: true}
	queue := []string{gatewayID}
	var moved []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, ref := range ix.Outgoing(id) {
			t := ref.Edge.Target()
			if !isSequence(ref.Edge) || visited[t] || !plan.MainFlow[t] {
				continue
			}
			visited[t] = true
			if _, ok := ix.Node(t); !ok {
				continue
			}
			ix.MoveBy(t, dx, dy)
			moved = append(moved, t)
			queue = append(queue, t)
		}
	}
	return moved
}
