package transform

import (
	"cmp"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
)

// DefaultSweeps is the number of down/up barycenter passes [OrderRows]
// performs when asked for zero.
const DefaultSweeps = 8

// OrderRows reduces crossings by layer sweeping. Rows start in depth-first
// discovery order; each sweep then sorts every row by the weighted
// barycenter of its neighbours in the previous row, alternating downward and
// upward passes. Ties keep higher-priority nodes first. The ordering with
// the fewest weighted crossings seen is kept.
//
// The graph must be subdivided: only edges between consecutive rows are
// considered.
func OrderRows(g *dag.DAG, sweeps int) int {
	if sweeps <= 0 {
		sweeps = DefaultSweeps
	}
	initialOrder(g)

	best := snapshot(g)
	bestCrossings := dag.CountCrossings(g)
	rows := g.RowIDs()

	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		for k := 1; k < len(rows); k++ {
			sortByBarycenter(g, rows[k], rows[k-1], true)
		}
		for k := len(rows) - 2; k >= 0; k-- {
			sortByBarycenter(g, rows[k], rows[k+1], false)
		}
		if c := dag.CountCrossings(g); c < bestCrossings {
			best, bestCrossings = snapshot(g), c
		}
	}

	for row, ids := range best {
		g.SetRowOrder(row, ids)
	}
	return bestCrossings
}

func initialOrder(g *dag.DAG) {
	seen := make(map[string]bool, g.NodeCount())
	order := make(map[int][]string)
	var dfs func(id string)
	dfs = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		n, _ := g.Node(id)
		order[n.Row] = append(order[n.Row], id)
		for _, c := range g.Children(id) {
			dfs(c)
		}
	}
	for _, n := range g.Sources() {
		dfs(n.ID)
	}
	for _, n := range g.Nodes() {
		dfs(n.ID)
	}
	for row, ids := range order {
		g.SetRowOrder(row, ids)
	}
}

func sortByBarycenter(g *dag.DAG, row, adj int, useParents bool) {
	nodes := slices.Clone(g.NodesInRow(row))
	adjPos := dag.PosMap(dag.NodeIDs(g.NodesInRow(adj)))

	bary := make(map[string]float64, len(nodes))
	for i, n := range nodes {
		var nbrs []string
		if useParents {
			nbrs = g.Parents(n.ID)
		} else {
			nbrs = g.Children(n.ID)
		}
		sum, weight := 0.0, 0
		for _, m := range nbrs {
			p, ok := adjPos[m]
			if !ok {
				continue
			}
			w := edgeWeight(g, n.ID, m, useParents)
			sum += float64(p * w)
			weight += w
		}
		if weight == 0 {
			bary[n.ID] = float64(i)
			continue
		}
		bary[n.ID] = sum / float64(weight)
	}

	slices.SortStableFunc(nodes, func(a, b *dag.Node) int {
		if c := cmp.Compare(bary[a.ID], bary[b.ID]); c != 0 {
			return c
		}
		return cmp.Compare(b.Priority, a.Priority)
	})
	g.SetRowOrder(row, dag.NodeIDs(nodes))
}

func edgeWeight(g *dag.DAG, n, m string, useParents bool) int {
	if useParents {
		return max(g.EdgeWeight(m, n), 1)
	}
	return max(g.EdgeWeight(n, m), 1)
}

func snapshot(g *dag.DAG) map[int][]string {
	out := make(map[int][]string)
	for _, r := range g.RowIDs() {
		out[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	return out
}
