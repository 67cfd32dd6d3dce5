package transform

import (
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
)

func build(nodes []dag.Node, edges [][2]string) *dag.DAG {
	g := dag.New()
	for _, n := range nodes {
		_ = g.AddNode(n)
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{ID: e[0] + e[1], From: e[0], To: e[1]})
	}
	return g
}

func ids(s ...string) []dag.Node {
	out := make([]dag.Node, len(s))
	for i, id := range s {
		out[i] = dag.Node{ID: id}
	}
	return out
}

func TestBreakCycles(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []dag.Node
		edges    [][2]string
		reversed int
	}{
		{"no cycles", ids("a", "b", "c"), [][2]string{{"a", "b"}, {"b", "c"}}, 0},
		{"simple", ids("a", "b"), [][2]string{{"a", "b"}, {"b", "a"}}, 1},
		{"triangle", ids("a", "b", "c"), [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, 1},
		{"two cycles", ids("a", "b", "c", "d"), [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.nodes, tt.edges)
			if got := BreakCycles(g); got != tt.reversed {
				t.Errorf("BreakCycles() = %d, want %d", got, tt.reversed)
			}
			if g.EdgeCount() != len(tt.edges) {
				t.Errorf("EdgeCount() = %d, want %d (edges are reversed, not removed)", g.EdgeCount(), len(tt.edges))
			}
			AssignLayers(g)
			for _, e := range g.Edges() {
				from, _ := g.Node(e.From)
				to, _ := g.Node(e.To)
				if to.Row <= from.Row {
					t.Errorf("edge %s->%s not downward after layering", e.From, e.To)
				}
			}
		})
	}
}

func TestBreakCyclesStartsAtFirstLayer(t *testing.T) {
	// The loop back into the start event must be the reversed edge even
	// though "task" is inserted first.
	nodes := []dag.Node{{ID: "task"}, {ID: "start", Constraint: dag.ConstraintFirst}}
	g := build(nodes, [][2]string{{"start", "task"}, {"task", "start"}})
	BreakCycles(g)
	for _, e := range g.Edges() {
		if e.Reversed && e.ID != "taskstart" {
			t.Errorf("reversed %s, want taskstart", e.ID)
		}
	}
}

func TestAssignLayersConstraints(t *testing.T) {
	nodes := []dag.Node{
		{ID: "start", Constraint: dag.ConstraintFirst},
		{ID: "a"}, {ID: "b"},
		{ID: "early", Constraint: dag.ConstraintLast},
		{ID: "end", Constraint: dag.ConstraintLast},
	}
	g := build(nodes, [][2]string{{"start", "a"}, {"a", "early"}, {"a", "b"}, {"b", "end"}})
	AssignLayers(g)

	want := map[string]int{"start": 0, "a": 1, "b": 2, "early": 3, "end": 3}
	for id, row := range want {
		n, _ := g.Node(id)
		if n.Row != row {
			t.Errorf("%s row = %d, want %d", id, n.Row, row)
		}
	}
}

func TestSubdivide(t *testing.T) {
	g := build(ids("a", "b", "c", "d"), [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}})
	AssignLayers(g)
	Subdivide(g, 10)

	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() after Subdivide = %v", err)
	}
	dummies := 0
	for _, n := range g.Nodes() {
		if n.IsDummy() {
			dummies++
			if n.MasterID != "ad" || n.Across != 10 {
				t.Errorf("dummy %s: master %q across %v", n.ID, n.MasterID, n.Across)
			}
		}
	}
	if dummies != 2 {
		t.Errorf("dummies = %d, want 2", dummies)
	}
}

func TestOrderRowsRemovesAvoidableCrossings(t *testing.T) {
	g := build(ids("a", "b", "x", "y"), [][2]string{{"a", "y"}, {"b", "x"}})
	g.SetRows(map[string]int{"x": 1, "y": 1})
	if got := OrderRows(g, 0); got != 0 {
		t.Errorf("OrderRows() left %d crossings, want 0", got)
	}
	if got := dag.CountCrossings(g); got != 0 {
		t.Errorf("CountCrossings() = %d after ordering", got)
	}
}
