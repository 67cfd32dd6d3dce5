// Package transform provides the layering phases that turn a level of a
// BPMN diagram into an ordered row structure.
//
// # Overview
//
// The phases run in a fixed order:
//
//	transform.BreakCycles(g)      // reverse loop-back edges
//	transform.AssignLayers(g)     // longest path + first/last constraints
//	transform.Subdivide(g, 10)    // dummy nodes for long edges
//	transform.OrderRows(g, 0)     // barycenter layer sweep
//
// # Cycle Breaking
//
// BPMN loops (rework cycles, retries) are legal. [BreakCycles] reverses the
// back edges of a depth-first search that starts at first-layer nodes, so
// the loop-back flow is the edge that points against the drawing direction.
//
// # Layer Assignment
//
// [AssignLayers] places every node one row below its deepest parent and then
// honours layer constraints: start events go to the first row, end events
// share a last row below everything else.
//
// # Subdivision
//
// [Subdivide] breaks edges spanning several rows into chains of dummy
// nodes. Dummies occupy space across the flow so long edges get a lane of
// their own during placement.
//
// # Ordering
//
// [OrderRows] sorts rows by weighted barycenters in alternating sweeps and
// keeps the ordering with the fewest weighted crossings, as counted by
// [dag.CountCrossings]. Edge weights derive from node priorities, so
// crossings on the main flow are avoided first.
package transform
