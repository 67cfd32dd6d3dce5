package engine

import (
	"fmt"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

// Option keys understood by every engine. Values are strings so they can be
// carried on diagram nodes and in request payloads unchanged.
const (
	OptionDirection            = "direction"
	OptionSpacingNodeNode      = "spacing.nodeNode"
	OptionSpacingEdgeNode      = "spacing.edgeNode"
	OptionSpacingEdgeEdge      = "spacing.edgeEdge"
	OptionSpacingBetweenLayers = "spacing.nodeNodeBetweenLayers"
	OptionHierarchyHandling    = "hierarchyHandling"
	OptionCrossingMinimization = "crossingMinimization.strategy"
	OptionNodePlacement        = "nodePlacement.strategy"
	OptionEdgeRouting          = "edgeRouting"
	OptionLayerConstraint      = "layering.layerConstraint"
	OptionPriority             = "priority"
	OptionPadding              = "padding"
)

// Direction is the main flow direction of a layered drawing.
type Direction string

const (
	DirectionRight Direction = "RIGHT"
	DirectionLeft  Direction = "LEFT"
	DirectionDown  Direction = "DOWN"
	DirectionUp    Direction = "UP"
)

// Horizontal reports whether layers advance along the x axis.
func (d Direction) Horizontal() bool { return d == DirectionRight || d == DirectionLeft }

// HierarchyHandling controls whether edges crossing container borders take
// part in the layout of the enclosing levels.
type HierarchyHandling string

const (
	HierarchyIncludeChildren  HierarchyHandling = "INCLUDE_CHILDREN"
	HierarchySeparateChildren HierarchyHandling = "SEPARATE_CHILDREN"
)

// CrossingStrategy selects the crossing minimization phase.
type CrossingStrategy string

const (
	CrossingLayerSweep CrossingStrategy = "LAYER_SWEEP"
	CrossingNone       CrossingStrategy = "NONE"
)

// PlacementStrategy selects how nodes are placed inside their layer.
type PlacementStrategy string

const (
	PlacementBrandesKoepf   PlacementStrategy = "BRANDES_KOEPF"
	PlacementNetworkSimplex PlacementStrategy = "NETWORK_SIMPLEX"
	PlacementSimple         PlacementStrategy = "SIMPLE"
)

// EdgeRouting is the routing style. Only orthogonal routing is produced;
// the other values are accepted so option maps written for other engines
// validate.
type EdgeRouting string

const (
	RoutingOrthogonal EdgeRouting = "ORTHOGONAL"
	RoutingPolyline   EdgeRouting = "POLYLINE"
	RoutingSplines    EdgeRouting = "SPLINES"
)

// LayerConstraint pins a node to the first or last layer.
type LayerConstraint string

const (
	LayerNone  LayerConstraint = "NONE"
	LayerFirst LayerConstraint = "FIRST"
	LayerLast  LayerConstraint = "LAST"
)

// Priority biases the engine towards keeping a node's edges short and
// straight. Higher wins.
type Priority int

const (
	PriorityBranch   Priority = 0
	PriorityDefault  Priority = 1
	PriorityMainFlow Priority = 10
)

// Padding is the space a container keeps between its border and content.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// String formats p in the option syntax "[top=..,left=..,bottom=..,right=..]".
func (p Padding) String() string {
	return fmt.Sprintf("[top=%s,left=%s,bottom=%s,right=%s]",
		ftoa(p.Top), ftoa(p.Left), ftoa(p.Bottom), ftoa(p.Right))
}

// Options are the parsed level-wide layout options.
type Options struct {
	Direction     Direction
	NodeNode      float64
	EdgeNode      float64
	EdgeEdge      float64
	BetweenLayers float64
	Hierarchy     HierarchyHandling
	Crossing      CrossingStrategy
	Placement     PlacementStrategy
	Routing       EdgeRouting
	Padding       Padding
}

// Default option values.
const (
	DefaultDirection     = DirectionRight
	DefaultNodeNode      = 50.0
	DefaultEdgeNode      = 20.0
	DefaultEdgeEdge      = 15.0
	DefaultBetweenLayers = 50.0
	DefaultPadding       = 12.0
)

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Direction:     DefaultDirection,
		NodeNode:      DefaultNodeNode,
		EdgeNode:      DefaultEdgeNode,
		EdgeEdge:      DefaultEdgeEdge,
		BetweenLayers: DefaultBetweenLayers,
		Hierarchy:     HierarchyIncludeChildren,
		Crossing:      CrossingLayerSweep,
		Placement:     PlacementBrandesKoepf,
		Routing:       RoutingOrthogonal,
		Padding:       Padding{DefaultPadding, DefaultPadding, DefaultPadding, DefaultPadding},
	}
}

// MergeOptions layers option maps. Later maps win, so callers pass them in
// increasing precedence: defaults, per-graph, per-call.
func MergeOptions(layers ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}

// Apply parses the level-wide keys of m on top of o. Per-node keys
// (layer constraint, priority) are ignored here.
func (o Options) Apply(m map[string]string) (Options, error) {
	for k, v := range m {
		v = strings.TrimSpace(v)
		var err error
		switch k {
		case OptionDirection:
			o.Direction, err = parseEnum(k, v, DirectionRight, DirectionLeft, DirectionDown, DirectionUp)
		case OptionSpacingNodeNode:
			o.NodeNode, err = parseSpacing(k, v)
		case OptionSpacingEdgeNode:
			o.EdgeNode, err = parseSpacing(k, v)
		case OptionSpacingEdgeEdge:
			o.EdgeEdge, err = parseSpacing(k, v)
		case OptionSpacingBetweenLayers:
			o.BetweenLayers, err = parseSpacing(k, v)
		case OptionHierarchyHandling:
			o.Hierarchy, err = parseEnum(k, v, HierarchyIncludeChildren, HierarchySeparateChildren)
		case OptionCrossingMinimization:
			o.Crossing, err = parseEnum(k, v, CrossingLayerSweep, CrossingNone)
		case OptionNodePlacement:
			o.Placement, err = parseEnum(k, v, PlacementBrandesKoepf, PlacementNetworkSimplex, PlacementSimple)
		case OptionEdgeRouting:
			o.Routing, err = parseEnum(k, v, RoutingOrthogonal, RoutingPolyline, RoutingSplines)
		case OptionPadding:
			o.Padding, err = ParsePadding(v)
		case OptionLayerConstraint:
			_, err = ParseLayerConstraint(v)
		case OptionPriority:
			_, err = ParsePriority(v)
		default:
			err = fmt.Errorf("unknown layout option %q", k)
		}
		if err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

// ParseOptions parses m over [DefaultOptions].
func ParseOptions(m map[string]string) (Options, error) {
	return DefaultOptions().Apply(m)
}

// ParseLayerConstraint parses a layer constraint value. The empty string
// means no constraint.
func ParseLayerConstraint(v string) (LayerConstraint, error) {
	if v == "" {
		return LayerNone, nil
	}
	return parseEnum(OptionLayerConstraint, strings.ToUpper(v), LayerNone, LayerFirst, LayerLast)
}

// ParsePriority parses a priority value. The empty string yields
// [PriorityDefault].
func ParsePriority(v string) (Priority, error) {
	if v == "" {
		return PriorityDefault, nil
	}
	p, err := strconv.Atoi(v)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("option %s: %q is not a non-negative integer", OptionPriority, v)
	}
	return Priority(p), nil
}

// FormatPriority renders p as an option value.
func FormatPriority(p Priority) string { return strconv.Itoa(int(p)) }

var paddingRe = regexp.MustCompile(`^\[\s*((?:[a-z]+\s*=\s*-?[0-9.]+\s*,?\s*)*)\]$`)

// ParsePadding parses "[top=..,left=..,bottom=..,right=..]". Sides that are
// not named are zero.
func ParsePadding(v string) (Padding, error) {
	m := paddingRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return Padding{}, fmt.Errorf("option %s: malformed value %q", OptionPadding, v)
	}
	var p Padding
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, _ := strings.Cut(part, "=")
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || f < 0 {
			return Padding{}, fmt.Errorf("option %s: bad value for %s in %q", OptionPadding, name, v)
		}
		switch strings.TrimSpace(name) {
		case "top":
			p.Top = f
		case "left":
			p.Left = f
		case "bottom":
			p.Bottom = f
		case "right":
			p.Right = f
		default:
			return Padding{}, fmt.Errorf("option %s: unknown side %q", OptionPadding, name)
		}
	}
	return p, nil
}

func parseSpacing(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("option %s: %q is not a non-negative number", key, v)
	}
	return f, nil
}

func parseEnum[T ~string](key, v string, allowed ...T) (T, error) {
	for _, a := range allowed {
		if string(a) == v {
			return a, nil
		}
	}
	return "", fmt.Errorf("option %s: unsupported value %q", key, v)
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
