package model

import (
	"github.com/google/uuid"
)

// Normalize brings a freshly decoded tree into the shape the layout stages
// expect:
//
//   - Artifacts lists are folded into Children.
//   - Boundary events declared as children with an attachedToRef are moved
//     into the host's BoundaryEvents list.
//   - Boundary events declared on a host get their AttachedToRef filled in.
//   - Edges without an ID receive a random one.
//   - Missing sizes are defaulted per category.
//
// Normalize is idempotent.
func Normalize(root *Node) {
	if root == nil {
		return
	}
	normalize(root)
}

func normalize(n *Node) {
	if len(n.Artifacts) > 0 {
		n.Children = append(n.Children, n.Artifacts...)
		n.Artifacts = nil
	}

	byID := make(map[string]*Node, len(n.Children))
	for _, c := range n.Children {
		byID[c.ID] = c
	}
	kept := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Category == CategoryBoundaryEvent && c.AttachedToRef != "" {
			if host := byID[c.AttachedToRef]; host != nil && host != c {
				host.BoundaryEvents = append(host.BoundaryEvents, c)
				continue
			}
		}
		kept = append(kept, c)
	}
	n.Children = kept

	for _, e := range n.Edges {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
	}

	for _, be := range n.BoundaryEvents {
		if be.Category == "" {
			be.Category = CategoryBoundaryEvent
		}
		be.AttachedToRef = n.ID
		for _, e := range be.Edges {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
		}
		ApplyDefaultSize(be)
	}

	for _, c := range n.Children {
		normalize(c)
	}
	ApplyDefaultSize(n)
}
