package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// ArtifactSide tells whether an artifact feeds into or is produced by its
// task.
type ArtifactSide int

const (
	// ArtifactInput artifacts are the source of their association.
	ArtifactInput ArtifactSide = iota
	// ArtifactOutput artifacts are the target of their association.
	ArtifactOutput
)

func (s ArtifactSide) String() string {
	if s == ArtifactOutput {
		return "output"
	}
	return "input"
}

// ArtifactInfo anchors an artifact to the node it is associated with.
type ArtifactInfo struct {
	ID     string
	TaskID string
	EdgeID string
	Side   ArtifactSide
	// Index is the position among artifacts on the same side of the task,
	// in association order.
	Index int
}

func isArtifact(ix *model.Index, id string) bool {
	n, ok := ix.Node(id)
	return ok && n.Category.IsArtifact()
}

// CollectArtifactInfo pairs every artifact with the first node it is
// associated with. Associations between two artifacts are ignored.
func CollectArtifactInfo(ix *model.Index) []ArtifactInfo {
	var out []ArtifactInfo
	seen := make(map[string]bool)
	counts := make(map[string]int)
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if !e.Category.IsAssociation() || !e.Valid() {
			continue
		}
		s, t := e.Source(), e.Target()
		if _, ok := ix.Node(s); !ok {
			continue
		}
		if _, ok := ix.Node(t); !ok {
			continue
		}
		var info ArtifactInfo
		switch {
		case isArtifact(ix, s) && isArtifact(ix, t):
			continue
		case isArtifact(ix, s):
			info = ArtifactInfo{ID: s, TaskID: t, EdgeID: e.ID, Side: ArtifactInput}
		case isArtifact(ix, t):
			info = ArtifactInfo{ID: t, TaskID: s, EdgeID: e.ID, Side: ArtifactOutput}
		default:
			continue
		}
		if seen[info.ID] {
			continue
		}
		seen[info.ID] = true
		key := info.TaskID + "/" + info.Side.String()
		info.Index = counts[key]
		counts[key]++
		out = append(out, info)
	}
	return out
}

// RepositionArtifacts places artifacts above their task, Artifact.Gap clear
// of its top edge. The first input is left-aligned with the task and further
// inputs extend to the left; the first output is right-aligned with the task
// and further outputs extend to the right.
func RepositionArtifacts(ix *model.Index, infos []ArtifactInfo, cfg config.Layout) {
	sorted := slices.Clone(infos)
	slices.SortStableFunc(sorted, func(a, b ArtifactInfo) int { return a.Index - b.Index })

	type cursor struct{ left, right float64 }
	cursors := make(map[string]*cursor)
	for _, info := range sorted {
		tb, ok := ix.Abs(info.TaskID)
		if !ok {
			continue
		}
		a, ok := ix.Node(info.ID)
		if !ok {
			continue
		}
		c := cursors[info.TaskID]
		if c == nil {
			c = &cursor{left: math.NaN(), right: math.NaN()}
			cursors[info.TaskID] = c
		}
		var x float64
		switch info.Side {
		case ArtifactInput:
			if math.IsNaN(c.left) {
				x = tb.X
			} else {
				x = c.left - cfg.Artifact.Spacing - a.Width
			}
			c.left = x
		default:
			if math.IsNaN(c.right) {
				x = tb.Right() - a.Width
			} else {
				x = c.right + cfg.Artifact.Spacing
			}
			c.right = x + a.Width
		}
		ix.SetAbsPosition(info.ID, x, tb.Y-a.Height-cfg.Artifact.Gap)
	}

	for _, info := range infos {
		if ref, ok := ix.EdgeByID(info.EdgeID); ok {
			routeEdge(ix, ref)
		}
	}
}

// artifactObstacles returns the absolute bounds of every leaf node except
// the given endpoints. Groups are drawn around other nodes and never block.
func artifactObstacles(ix *model.Index, except ...string) []geom.Rect {
	var out []geom.Rect
	for _, n := range ix.Nodes() {
		if n.IsContainer() || n.Category == model.CategoryGroup || slices.Contains(except, n.ID) {
			continue
		}
		if b, ok := ix.Abs(n.ID); ok && !b.Empty() {
			out = append(out, b)
		}
	}
	return out
}

func crossings(pts []geom.Point, obstacles []geom.Rect) int {
	c := 0
	for _, o := range obstacles {
		if geom.PolylineIntersectsRect(pts, o) {
			c++
		}
	}
	return c
}

// RecalculateArtifactEdges reroutes every association that touches an
// artifact. The direct route is kept when it is clear; otherwise five
// detours are scored by crossings × Artifact.CrossingPenalty plus length and
// the cheapest wins. It returns the number of detoured edges.
func RecalculateArtifactEdges(ix *model.Index, cfg config.Layout) int {
	detoured := 0
	for _, ref := range ix.Edges() {
		e := ref.Edge
		if !e.Category.IsAssociation() || !(isArtifact(ix, e.Source()) || isArtifact(ix, e.Target())) {
			continue
		}
		src, dst, ok := ix.Endpoints(ref)
		if !ok {
			continue
		}
		obstacles := artifactObstacles(ix, e.Source(), e.Target())
		direct := directRoute(src, dst)
		if crossings(direct, obstacles) == 0 {
			ix.SetRouteAbs(ref, direct)
			continue
		}
		best, bestScore := direct, math.Inf(1)
		for _, cand := range detours(src, dst, obstacles, cfg.Artifact.Clearance) {
			score := float64(crossings(cand, obstacles))*cfg.Artifact.CrossingPenalty + geom.PathLength(cand)
			if score < bestScore {
				best, bestScore = cand, score
			}
		}
		ix.SetRouteAbs(ref, best)
		detoured++
	}
	return detoured
}

// directRoute connects src and dst with a straight segment when their
// extents overlap across the dominant direction, and with an L otherwise.
func directRoute(src, dst geom.Rect) []geom.Point {
	ss, _ := geom.DominantSides(src, dst)
	s := src.Anchor(ss)
	switch ss {
	case geom.SideTop, geom.SideBottom:
		if s.X >= dst.Left() && s.X <= dst.Right() {
			y := dst.Top()
			if ss == geom.SideTop {
				y = dst.Bottom()
			}
			return []geom.Point{s, {X: s.X, Y: y}}
		}
		t := dst.Anchor(geom.SideLeft)
		if dst.CenterX() < s.X {
			t = dst.Anchor(geom.SideRight)
		}
		return []geom.Point{s, {X: s.X, Y: t.Y}, t}
	default:
		if s.Y >= dst.Top() && s.Y <= dst.Bottom() {
			x := dst.Left()
			if ss == geom.SideLeft {
				x = dst.Right()
			}
			return []geom.Point{s, {X: x, Y: s.Y}}
		}
		t := dst.Anchor(geom.SideTop)
		if dst.CenterY() < s.Y {
			t = dst.Anchor(geom.SideBottom)
		}
		return []geom.Point{s, {X: t.X, Y: s.Y}, t}
	}
}

// detours returns the horizontal-first, vertical-first, above-all,
// below-all and right-of-all candidates.
func detours(src, dst geom.Rect, obstacles []geom.Rect, clearance float64) [][]geom.Point {
	span := geom.BoundingBox(src, dst)
	top, bottom, right := span.Top(), span.Bottom(), span.Right()
	for _, o := range obstacles {
		if o.OverlapsX(span) {
			top = min(top, o.Top())
			bottom = max(bottom, o.Bottom())
		}
		if o.OverlapsY(span) {
			right = max(right, o.Right())
		}
	}

	hs := src.Anchor(geom.SideRight)
	if dst.CenterX() < src.CenterX() {
		hs = src.Anchor(geom.SideLeft)
	}
	vt := dst.Anchor(geom.SideTop)
	if dst.CenterY() < src.CenterY() {
		vt = dst.Anchor(geom.SideBottom)
	}
	vs := src.Anchor(geom.SideBottom)
	if dst.CenterY() < src.CenterY() {
		vs = src.Anchor(geom.SideTop)
	}
	ht := dst.Anchor(geom.SideLeft)
	if dst.CenterX() < src.CenterX() {
		ht = dst.Anchor(geom.SideRight)
	}

	above := top - clearance
	below := bottom + clearance
	far := right + clearance
	st, dt := src.Anchor(geom.SideTop), dst.Anchor(geom.SideTop)
	sb, db := src.Anchor(geom.SideBottom), dst.Anchor(geom.SideBottom)
	sr, dr := src.Anchor(geom.SideRight), dst.Anchor(geom.SideRight)
	return [][]geom.Point{
		{hs, {X: vt.X, Y: hs.Y}, vt},
		{vs, {X: vs.X, Y: ht.Y}, ht},
		{st, {X: st.X, Y: above}, {X: dt.X, Y: above}, dt},
		{sb, {X: sb.X, Y: below}, {X: db.X, Y: below}, db},
		{sr, {X: far, Y: sr.Y}, {X: far, Y: dr.Y}, dr},
	}
}
