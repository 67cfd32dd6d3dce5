// Package constraint solves vertical stacking constraints between boxes.
//
// The solver knows a single relation, "below": node must start at least gap
// pixels under the bottom edge of ref. Constraints are propagated in one
// pass over the nodes in the order they were added, so a reference must be
// added before the nodes that stack under it. [Solver.Verify] reports any
// required constraint the pass could not satisfy.
package constraint

import (
	"errors"
	"fmt"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

var (
	// ErrUnknownNode is returned when a constraint names a node that was
	// never added.
	ErrUnknownNode = errors.New("constraint: unknown node")

	// ErrDuplicateNode is returned by AddNode for an ID that already exists.
	ErrDuplicateNode = errors.New("constraint: duplicate node")

	// ErrUnsatisfied is returned by Verify when a required constraint does
	// not hold.
	ErrUnsatisfied = errors.New("constraint: unsatisfied")
)

// Strength ranks constraints. Only required constraints are verified.
type Strength int

const (
	Required Strength = iota
	Strong
	Weak
)

func (s Strength) String() string {
	switch s {
	case Required:
		return "required"
	case Strong:
		return "strong"
	default:
		return "weak"
	}
}

type below struct {
	node, ref string
	gap       float64
	strength  Strength
}

// Solver holds boxes and the constraints between them.
type Solver struct {
	order []string
	boxes map[string]geom.Rect
	cons  []below
}

// New returns an empty solver.
func New() *Solver {
	return &Solver{boxes: make(map[string]geom.Rect)}
}

// AddNode registers a box. Its Y is the desired position; Solve only ever
// moves it down.
func (s *Solver) AddNode(id string, box geom.Rect) error {
	if _, ok := s.boxes[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	s.order = append(s.order, id)
	s.boxes[id] = box
	return nil
}

// Below requires node to start at least gap below the bottom of ref.
func (s *Solver) Below(node, ref string, gap float64, strength Strength) error {
	for _, id := range []string{node, ref} {
		if _, ok := s.boxes[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}
	s.cons = append(s.cons, below{node: node, ref: ref, gap: gap, strength: strength})
	return nil
}

// Solve propagates the constraints once in declaration order and returns
// the resulting boxes. Calling Solve again continues from the previous
// result.
func (s *Solver) Solve() map[string]geom.Rect {
	bySubject := make(map[string][]below, len(s.cons))
	for _, c := range s.cons {
		bySubject[c.node] = append(bySubject[c.node], c)
	}
	for _, id := range s.order {
		box := s.boxes[id]
		for _, c := range bySubject[id] {
			ref := s.boxes[c.ref]
			box.Y = max(box.Y, ref.Bottom()+c.gap)
		}
		s.boxes[id] = box
	}
	out := make(map[string]geom.Rect, len(s.boxes))
	for id, b := range s.boxes {
		out[id] = b
	}
	return out
}

// Box returns the current box of id.
func (s *Solver) Box(id string) (geom.Rect, bool) {
	b, ok := s.boxes[id]
	return b, ok
}

// Verify checks every required constraint against the current boxes.
func (s *Solver) Verify() error {
	var errs []error
	for _, c := range s.cons {
		if c.strength != Required {
			continue
		}
		node, ref := s.boxes[c.node], s.boxes[c.ref]
		if node.Y < ref.Bottom()+c.gap-geom.Epsilon {
			errs = append(errs, fmt.Errorf("%w: %s below %s by %g (y=%g, ref bottom=%g)",
				ErrUnsatisfied, c.node, c.ref, c.gap, node.Y, ref.Bottom()))
		}
	}
	return errors.Join(errs...)
}
