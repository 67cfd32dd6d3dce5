package transform

import "github.com/matzehuels/bpmnlayout/pkg/dag"

// AssignLayers assigns every node to a row using the longest path from the
// sources, computed with Kahn's topological traversal. Each node lands one
// row below its deepest parent.
//
// Layer constraints are applied afterwards: [dag.ConstraintFirst] nodes are
// moved to row 0 and [dag.ConstraintLast] nodes to a common last row that
// lies below every unconstrained node.
//
// AssignLayers assumes g is acyclic; run [BreakCycles] first. Nodes on a
// cycle never reach in-degree zero and stay in row 0.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	applyConstraints(g, rows)
	g.SetRows(rows)
}

func applyConstraints(g *dag.DAG, rows map[string]int) {
	var hasLast bool
	deepest, lastRow := -1, 0
	for _, n := range g.Nodes() {
		switch n.Constraint {
		case dag.ConstraintFirst:
			rows[n.ID] = 0
		case dag.ConstraintLast:
			hasLast = true
			lastRow = max(lastRow, rows[n.ID])
		default:
			deepest = max(deepest, rows[n.ID])
		}
	}
	if !hasLast {
		return
	}
	lastRow = max(lastRow, deepest+1)
	for _, n := range g.Nodes() {
		if n.Constraint == dag.ConstraintLast {
			rows[n.ID] = lastRow
		}
	}
}
