package model

import "fmt"

// CoordSpace tells which origin an edge route is expressed against.
//
// The tag is assigned the first time an edge is routed and never changes
// afterwards. Stages that compute new routes work in absolute coordinates and
// convert into the edge's space through [Index.SetRouteAbs]; a route tagged
// [SpaceAbsolute] is never offset when its ancestors move.
type CoordSpace int

const (
	// SpaceUnset marks an edge that has not been routed yet.
	SpaceUnset CoordSpace = iota
	// SpaceLocal routes are relative to the node that owns the edge.
	SpaceLocal
	// SpacePool routes are relative to the pool containing the edge's source.
	SpacePool
	// SpaceAbsolute routes are relative to the diagram origin.
	SpaceAbsolute
)

func (s CoordSpace) String() string {
	switch s {
	case SpaceLocal:
		return "local"
	case SpacePool:
		return "pool"
	case SpaceAbsolute:
		return "absolute"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CoordSpace) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CoordSpace) UnmarshalText(b []byte) error {
	switch string(b) {
	case "":
		*s = SpaceUnset
	case "local":
		*s = SpaceLocal
	case "pool":
		*s = SpacePool
	case "absolute":
		*s = SpaceAbsolute
	default:
		return fmt.Errorf("unknown coordinate space %q", b)
	}
	return nil
}
