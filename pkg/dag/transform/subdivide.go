package transform

import (
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/dag"
)

// Subdivide replaces every edge that spans more than one row with a chain
// of [dag.NodeKindDummy] nodes, one per intermediate row, so that ordering
// and placement only ever look at consecutive rows:
//
//	Before: start (row 0) → end (row 3)
//	After:  start → e1#1 → e1#2 → end
//
// Dummy nodes carry the edge ID in MasterID and inherit the edge weight.
// Their Across extent is thickness; their Along extent is zero.
//
// Edges whose target is not below their source (possible after layer
// constraints pull a node up) are left untouched.
func Subdivide(g *dag.DAG, thickness float64) {
	used := make(map[string]struct{}, g.NodeCount())
	for _, n := range g.Nodes() {
		used[n.ID] = struct{}{}
	}
	nextID := func(edge string, row int) string {
		base := fmt.Sprintf("%s#%d", edge, row)
		id := base
		for i := 1; ; i++ {
			if _, exists := used[id]; !exists {
				used[id] = struct{}{}
				return id
			}
			id = fmt.Sprintf("%s~%d", base, i)
		}
	}

	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row <= src.Row+1 {
			continue
		}
		master := e.ID
		if master == "" {
			master = e.From + ">" + e.To
		}
		g.RemoveEdge(e.From, e.To)
		prev := e.From
		for row := src.Row + 1; row < dst.Row; row++ {
			id := nextID(master, row)
			if err := g.AddNode(dag.Node{
				ID:       id,
				Row:      row,
				Kind:     dag.NodeKindDummy,
				MasterID: master,
				Across:   thickness,
				Priority: min(src.Priority, dst.Priority),
			}); err != nil {
				panic(err)
			}
			if err := g.AddEdge(dag.Edge{ID: e.ID, From: prev, To: id, Weight: e.Weight, Reversed: e.Reversed}); err != nil {
				panic(err)
			}
			prev = id
		}
		if err := g.AddEdge(dag.Edge{ID: e.ID, From: prev, To: e.To, Weight: e.Weight, Reversed: e.Reversed}); err != nil {
			panic(err)
		}
	}
}
