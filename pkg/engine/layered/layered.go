// Package layered is a pure-Go layered layout engine.
//
// It runs the classic Sugiyama phases on every level of the tree: cycle
// breaking, longest-path layering with first/last constraints, subdivision
// of long edges, barycentric crossing reduction and a priority-driven
// placement that keeps heavy (main-flow) edges straight. It needs no
// external tools, so it is the default engine and the one tests run on.
package layered

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
	"github.com/matzehuels/bpmnlayout/pkg/dag/transform"
	"github.com/matzehuels/bpmnlayout/pkg/engine"
)

// Name is the engine name used in options and on the command line.
const Name = "layered"

// Layouter implements [engine.LevelLayouter].
type Layouter struct {
	// Sweeps is the number of crossing-reduction sweeps, zero for the default.
	Sweeps int
	// PlacementPasses is the number of alternating placement passes.
	PlacementPasses int
}

// New returns a layered engine for whole trees.
func New() engine.Engine {
	return engine.NewHierarchical(&Layouter{PlacementPasses: 4})
}

// Name implements [engine.LevelLayouter].
func (l *Layouter) Name() string { return Name }

// LayoutLevel implements [engine.LevelLayouter].
func (l *Layouter) LayoutLevel(ctx context.Context, lvl *engine.Level) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(lvl.Nodes) == 0 {
		return nil
	}
	o := lvl.Options
	horizontal := o.Direction.Horizontal()

	g := dag.New()
	byID := make(map[string]*engine.Node, len(lvl.Nodes))
	for _, n := range lvl.Nodes {
		along, across := n.Width, n.Height
		if !horizontal {
			along, across = across, along
		}
		_ = g.AddNode(dag.Node{
			ID:         n.ID,
			Along:      along,
			Across:     across,
			Priority:   int(n.Priority()),
			Constraint: constraintOf(n.LayerConstraint()),
		})
		byID[n.ID] = n
	}
	for _, e := range lvl.Edges {
		if e.Source == e.Target {
			continue
		}
		_ = g.AddEdge(dag.Edge{ID: e.ID, From: e.Source.ID, To: e.Target.ID, Weight: max(1, int(e.Priority))})
	}

	transform.BreakCycles(g)
	transform.AssignLayers(g)
	transform.Subdivide(g, o.EdgeEdge)
	if o.Crossing != engine.CrossingNone {
		transform.OrderRows(g, l.Sweeps)
	}

	along := alongPositions(g, o.BetweenLayers)
	across := l.acrossPositions(g, o)

	for _, n := range g.Nodes() {
		en, ok := byID[n.ID]
		if !ok {
			continue
		}
		a := along[n.ID]
		c := across[n.ID] - n.Across/2
		switch o.Direction {
		case engine.DirectionLeft:
			en.X, en.Y = -(a + n.Along), c
		case engine.DirectionDown:
			en.X, en.Y = c, a
		case engine.DirectionUp:
			en.X, en.Y = c, -(a + n.Along)
		default:
			en.X, en.Y = a, c
		}
	}
	return nil
}

func constraintOf(c engine.LayerConstraint) dag.Constraint {
	switch c {
	case engine.LayerFirst:
		return dag.ConstraintFirst
	case engine.LayerLast:
		return dag.ConstraintLast
	default:
		return dag.ConstraintNone
	}
}

// alongPositions returns the leading coordinate of every node in flow
// direction. Each layer is as thick as its thickest node; nodes are centred
// in their layer.
func alongPositions(g *dag.DAG, gap float64) map[string]float64 {
	out := make(map[string]float64, g.NodeCount())
	offset := 0.0
	for _, r := range g.RowIDs() {
		thick := 0.0
		for _, n := range g.NodesInRow(r) {
			thick = math.Max(thick, n.Along)
		}
		for _, n := range g.NodesInRow(r) {
			out[n.ID] = offset + (thick-n.Along)/2
		}
		offset += thick + gap
	}
	return out
}

// =============================================================================
// Placement across the flow
// =============================================================================

// acrossPositions returns the centre coordinate of every node across the
// flow. Rows start compactly stacked; alternating passes then pull each node
// towards the weighted mean of its neighbours in the previous row. Within a
// row, higher-priority nodes are placed first and lower-priority nodes yield.
func (l *Layouter) acrossPositions(g *dag.DAG, o engine.Options) map[string]float64 {
	pos := make(map[string]float64, g.NodeCount())
	rows := g.RowIDs()
	for _, r := range rows {
		nodes := g.NodesInRow(r)
		c := 0.0
		for i, n := range nodes {
			if i > 0 {
				c += gapBetween(nodes[i-1], n, o)
			}
			pos[n.ID] = c + n.Across/2
			c += n.Across
		}
	}

	passes := max(l.PlacementPasses, 1)
	for p := 0; p < passes; p++ {
		if p%2 == 0 {
			for k := 1; k < len(rows); k++ {
				placeRow(g, g.NodesInRow(rows[k]), pos, o, true)
			}
		} else {
			for k := len(rows) - 2; k >= 0; k-- {
				placeRow(g, g.NodesInRow(rows[k]), pos, o, false)
			}
		}
	}
	return pos
}

func gapBetween(a, b *dag.Node, o engine.Options) float64 {
	switch {
	case a.IsDummy() && b.IsDummy():
		return o.EdgeEdge
	case a.IsDummy() || b.IsDummy():
		return o.EdgeNode
	default:
		return o.NodeNode
	}
}

func placeRow(g *dag.DAG, nodes []*dag.Node, pos map[string]float64, o engine.Options, useParents bool) {
	n := len(nodes)
	if n == 0 {
		return
	}

	// dist[i] is the minimum centre distance between nodes 0 and i.
	dist := make([]float64, n)
	for i := 1; i < n; i++ {
		dist[i] = dist[i-1] + nodes[i-1].Across/2 + gapBetween(nodes[i-1], nodes[i], o) + nodes[i].Across/2
	}

	cur := make([]float64, n)
	desired := make([]float64, n)
	for i, nd := range nodes {
		cur[i] = pos[nd.ID]
		desired[i] = desiredCentre(g, nd, pos, useParents, cur[i])
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return nodes[b].Priority - nodes[a].Priority })

	fixed := make([]bool, n)
	for _, i := range order {
		lo, hi := math.Inf(-1), math.Inf(1)
		for j := i - 1; j >= 0; j-- {
			if fixed[j] {
				lo = cur[j] + dist[i] - dist[j]
				break
			}
		}
		for j := i + 1; j < n; j++ {
			if fixed[j] {
				hi = cur[j] - (dist[j] - dist[i])
				break
			}
		}
		cur[i] = math.Min(math.Max(desired[i], lo), hi)
		fixed[i] = true

		for k := i + 1; k < n && !fixed[k]; k++ {
			cur[k] = math.Max(cur[k], cur[k-1]+dist[k]-dist[k-1])
		}
		for k := i - 1; k >= 0 && !fixed[k]; k-- {
			cur[k] = math.Min(cur[k], cur[k+1]-(dist[k+1]-dist[k]))
		}
	}

	for i, nd := range nodes {
		pos[nd.ID] = cur[i]
	}
}

// desiredCentre aligns n with its neighbours in the adjacent row. Only the
// heaviest edges count, so a main-flow node follows the main flow and
// ignores branches merging into it.
func desiredCentre(g *dag.DAG, n *dag.Node, pos map[string]float64, useParents bool, fallback float64) float64 {
	var nbrs []string
	if useParents {
		nbrs = g.Parents(n.ID)
	} else {
		nbrs = g.Children(n.ID)
	}
	sum, count, heaviest := 0.0, 0, 0
	for _, m := range nbrs {
		mn, _ := g.Node(m)
		want, w := n.Row-1, g.EdgeWeight(m, n.ID)
		if !useParents {
			want, w = n.Row+1, g.EdgeWeight(n.ID, m)
		}
		if mn.Row != want {
			continue
		}
		switch {
		case w > heaviest:
			sum, count, heaviest = pos[m], 1, w
		case w == heaviest:
			sum += pos[m]
			count++
		}
	}
	if count == 0 {
		return fallback
	}
	return sum / float64(count)
}
