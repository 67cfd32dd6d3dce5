package dag_test

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
)

func ExampleDAG_basic() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "start", Row: 0})
	_ = g.AddNode(dag.Node{ID: "review", Row: 1})
	_ = g.AddNode(dag.Node{ID: "end", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "start", To: "review"})
	_ = g.AddEdge(dag.Edge{From: "review", To: "end"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", len(g.RowIDs()))
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
	// Valid: true
}

func ExampleDAG_ReverseEdge() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "check"})
	_ = g.AddNode(dag.Node{ID: "fix"})
	_ = g.AddEdge(dag.Edge{ID: "retry", From: "fix", To: "check"})

	g.ReverseEdge("fix", "check")
	e := g.Edges()[0]
	fmt.Println(e.ID, e.From, "->", e.To, "reversed:", e.Reversed)
	// Output:
	// retry check -> fix reversed: true
}

func ExampleCountLayerCrossings() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})

	// a→y and b→x cross when a is left of b. The main-flow edge weighs 10.
	_ = g.AddEdge(dag.Edge{From: "a", To: "y", Weight: 10})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, []string{"b", "a"}, []string{"x", "y"}))
	// Output:
	// Crossings: 10
	// After reorder: 0
}
