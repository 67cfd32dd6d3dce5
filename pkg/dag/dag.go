package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge does
	// not point from one row to the next.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeKind distinguishes original nodes from the dummies that carry long
// edges through intermediate layers.
type NodeKind int

const (
	// NodeKindRegular is a node of the level being laid out.
	NodeKindRegular NodeKind = iota
	// NodeKindDummy is a zero-width bend carrier inserted by subdivision.
	NodeKindDummy
)

// Constraint pins a node to the first or last row.
type Constraint int

const (
	ConstraintNone Constraint = iota
	ConstraintFirst
	ConstraintLast
)

// Node is a vertex with a row (layer) assignment and the extent it occupies.
type Node struct {
	ID  string
	Row int

	Kind NodeKind
	// MasterID is the ID of the edge a dummy node belongs to.
	MasterID string

	// Along is the node's extent in flow direction, Across perpendicular
	// to it.
	Along, Across float64

	Priority   int
	Constraint Constraint
}

// IsDummy reports whether the node was inserted to subdivide an edge.
func (n Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// Edge is a directed connection. Weight scales the edge's pull during
// ordering and placement.
type Edge struct {
	ID       string
	From     string
	To       string
	Weight   int
	Reversed bool
}

// DAG is a directed graph organized into rows. Nodes are kept in insertion
// order so every traversal is deterministic.
//
// The zero value is not usable; use [New].
type DAG struct {
	nodes    map[string]*Node
	order    []*Node
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// AddEdge adds a directed edge between two existing nodes. A zero weight is
// stored as one.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Weight <= 0 {
		e.Weight = 1
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the first edge from→to if it exists.
func (d *DAG) RemoveEdge(from, to string) {
	if i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to }); i >= 0 {
		d.edges = slices.Delete(d.edges, i, i+1)
	}
	if i := slices.Index(d.outgoing[from], to); i >= 0 {
		d.outgoing[from] = slices.Delete(d.outgoing[from], i, i+1)
	}
	if i := slices.Index(d.incoming[to], from); i >= 0 {
		d.incoming[to] = slices.Delete(d.incoming[to], i, i+1)
	}
}

// ReverseEdge turns the first edge from→to around and marks it reversed.
// It reports whether an edge was found.
func (d *DAG) ReverseEdge(from, to string) bool {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	if i < 0 {
		return false
	}
	e := d.edges[i]
	d.RemoveEdge(from, to)
	e.From, e.To, e.Reversed = to, from, !e.Reversed
	_ = d.AddEdge(e)
	return true
}

// SetRows updates row assignments and rebuilds the row index. Nodes missing
// from rows keep their current row. Within a row, nodes keep insertion order.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]*Node)
	for _, n := range d.order {
		if r, ok := rows[n.ID]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// SetRowOrder replaces the left-to-right order of a row. ids must be a
// permutation of the row's current nodes.
func (d *DAG) SetRowOrder(row int, ids []string) {
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := d.nodes[id]; ok && n.Row == row {
			nodes = append(nodes, n)
		}
	}
	d.rows[row] = nodes
}

// Nodes returns all nodes in insertion order.
func (d *DAG) Nodes() []*Node { return d.order }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Children returns the targets of id's outgoing edges. Do not modify.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sources of id's incoming edges. Do not modify.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// EdgeWeight returns the summed weight of all edges from→to.
func (d *DAG) EdgeWeight(from, to string) int {
	w := 0
	for _, e := range d.edges {
		if e.From == from && e.To == to {
			w += e.Weight
		}
	}
	return w
}

// NodesInRow returns the nodes of a row in their current order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// Sources returns nodes without incoming edges in insertion order.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, n := range d.order {
		if len(d.incoming[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks that every edge connects consecutive rows and that the
// graph is acyclic.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.nodes[e.To].Row != d.nodes[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, n := range d.order {
		if color[n.ID] == white {
			dfs(n.ID)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the IDs of nodes in order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
