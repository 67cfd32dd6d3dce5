// Package dag provides the row-organized directed graph used by the layered
// layout engine.
//
// # Overview
//
// A level of a BPMN diagram (the direct children of one container and the
// flows between them) is converted into a [DAG] whose rows are the layers of
// a Sugiyama-style drawing. Rows advance in flow direction; the order of
// nodes inside a row is their position across the flow.
//
// Nodes record their extent along and across the flow instead of width and
// height, so the same graph serves left-to-right and top-down drawings.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "start", Along: 36, Across: 36, Constraint: dag.ConstraintFirst})
//	g.AddNode(dag.Node{ID: "task", Along: 100, Across: 80})
//	g.AddEdge(dag.Edge{ID: "f1", From: "start", To: "task", Weight: 10})
//
// Nodes keep insertion order and all traversals follow it, so a layout is a
// pure function of its input.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count weighted crossings with a
// Fenwick tree in O(E log V). A crossing between edges of weight w1 and w2
// counts w1*w2.
//
// # Related Packages
//
// The [transform] subpackage provides cycle breaking, layer assignment,
// subdivision and ordering.
//
// [transform]: github.com/matzehuels/bpmnlayout/pkg/dag/transform
package dag
