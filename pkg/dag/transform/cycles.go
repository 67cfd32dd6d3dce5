package transform

import "github.com/matzehuels/bpmnlayout/pkg/dag"

// BreakCycles makes g acyclic by reversing back edges found in a depth-first
// search. The search starts from first-row constrained nodes, then from the
// remaining sources, then from everything else, each in insertion order, so
// loops back to a start event are the edges that get reversed.
//
// Reversed edges keep their ID and weight and are marked [dag.Edge.Reversed].
// BreakCycles returns the number of reversed edges.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	visit := func(n *dag.Node) {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if n.Constraint == dag.ConstraintFirst {
			visit(n)
		}
	}
	for _, n := range g.Sources() {
		visit(n)
	}
	for _, n := range g.Nodes() {
		visit(n)
	}

	for _, e := range backEdges {
		g.ReverseEdge(e[0], e[1])
	}
	return len(backEdges)
}
