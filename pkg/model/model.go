package model

import (
	"errors"
	"slices"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

var (
	// ErrEmptyID is returned by [Validate] when a node has no identifier.
	ErrEmptyID = errors.New("node ID must not be empty")

	// ErrDuplicateID is returned by [Validate] when two nodes share an ID.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrNilTree is returned when a conversion is started without a tree.
	ErrNilTree = errors.New("tree must not be nil")
)

// =============================================================================
// Categories
// =============================================================================

// Category is the BPMN element type of a node.
type Category string

// Events.
const (
	CategoryStartEvent             Category = "startEvent"
	CategoryEndEvent               Category = "endEvent"
	CategoryIntermediateCatchEvent Category = "intermediateCatchEvent"
	CategoryIntermediateThrowEvent Category = "intermediateThrowEvent"
	CategoryBoundaryEvent          Category = "boundaryEvent"
)

// Activities.
const (
	CategoryTask             Category = "task"
	CategoryUserTask         Category = "userTask"
	CategoryServiceTask      Category = "serviceTask"
	CategoryScriptTask       Category = "scriptTask"
	CategoryManualTask       Category = "manualTask"
	CategorySendTask         Category = "sendTask"
	CategoryReceiveTask      Category = "receiveTask"
	CategoryBusinessRuleTask Category = "businessRuleTask"
	CategoryCallActivity     Category = "callActivity"
	CategorySubProcess       Category = "subProcess"
	CategoryAdHocSubProcess  Category = "adHocSubProcess"
	CategoryTransaction      Category = "transaction"
)

// Gateways.
const (
	CategoryExclusiveGateway  Category = "exclusiveGateway"
	CategoryParallelGateway   Category = "parallelGateway"
	CategoryInclusiveGateway  Category = "inclusiveGateway"
	CategoryEventBasedGateway Category = "eventBasedGateway"
	CategoryComplexGateway    Category = "complexGateway"
)

// Containers.
const (
	CategoryRoot          Category = "definitions"
	CategoryCollaboration Category = "collaboration"
	CategoryParticipant   Category = "participant"
	CategoryProcess       Category = "process"
	CategoryLane          Category = "lane"
)

// Artifacts.
const (
	CategoryDataObject          Category = "dataObject"
	CategoryDataObjectReference Category = "dataObjectReference"
	CategoryDataStoreReference  Category = "dataStoreReference"
	CategoryTextAnnotation      Category = "textAnnotation"
	CategoryGroup               Category = "group"
)

// IsEvent reports whether c is any kind of event.
func (c Category) IsEvent() bool {
	switch c {
	case CategoryStartEvent, CategoryEndEvent, CategoryIntermediateCatchEvent,
		CategoryIntermediateThrowEvent, CategoryBoundaryEvent:
		return true
	}
	return false
}

// IsGateway reports whether c is drawn as a diamond.
func (c Category) IsGateway() bool {
	switch c {
	case CategoryExclusiveGateway, CategoryParallelGateway, CategoryInclusiveGateway,
		CategoryEventBasedGateway, CategoryComplexGateway:
		return true
	}
	return false
}

// IsSubProcess reports whether c can be expanded to show children.
func (c Category) IsSubProcess() bool {
	switch c {
	case CategorySubProcess, CategoryAdHocSubProcess, CategoryTransaction:
		return true
	}
	return false
}

// IsActivity reports whether c is a task, call activity or sub-process.
func (c Category) IsActivity() bool {
	switch c {
	case CategoryTask, CategoryUserTask, CategoryServiceTask, CategoryScriptTask,
		CategoryManualTask, CategorySendTask, CategoryReceiveTask,
		CategoryBusinessRuleTask, CategoryCallActivity:
		return true
	}
	return c.IsSubProcess()
}

// IsFlowNode reports whether c takes part in sequence flow.
func (c Category) IsFlowNode() bool {
	return c.IsEvent() || c.IsGateway() || c.IsActivity()
}

// IsArtifact reports whether c is a data object, data store or annotation.
// Groups are handled separately and are not artifacts in this sense.
func (c Category) IsArtifact() bool {
	switch c {
	case CategoryDataObject, CategoryDataObjectReference, CategoryDataStoreReference,
		CategoryTextAnnotation:
		return true
	}
	return false
}

// IsSwimlane reports whether c is a lane or a pool.
func (c Category) IsSwimlane() bool {
	return c == CategoryLane || c == CategoryParticipant
}

// EdgeCategory is the BPMN type of a connecting object.
type EdgeCategory string

const (
	EdgeSequenceFlow          EdgeCategory = "sequenceFlow"
	EdgeMessageFlow           EdgeCategory = "messageFlow"
	EdgeDataInputAssociation  EdgeCategory = "dataInputAssociation"
	EdgeDataOutputAssociation EdgeCategory = "dataOutputAssociation"
	EdgeAssociation           EdgeCategory = "association"
)

// IsDataAssociation reports whether c links a data artifact to an activity.
func (c EdgeCategory) IsDataAssociation() bool {
	return c == EdgeDataInputAssociation || c == EdgeDataOutputAssociation
}

// IsAssociation reports whether c is any association, data or generic.
func (c EdgeCategory) IsAssociation() bool {
	return c.IsDataAssociation() || c == EdgeAssociation
}

// =============================================================================
// Node
// =============================================================================

// Padding is the inner spacing a container keeps around its children.
type Padding struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Uniform returns a padding with the same value on every side.
func Uniform(v float64) Padding { return Padding{Top: v, Right: v, Bottom: v, Left: v} }

// Label is a text label attached to a node or an edge.
type Label struct {
	Text   string  `json:"text" yaml:"text"`
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Node is an element of the diagram tree.
//
// X and Y are relative to the top-left corner of the parent node. Boundary
// events live in their host's BoundaryEvents list but share the host's parent
// coordinate space, so their X and Y are relative to the host's parent.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category,omitempty" yaml:"category,omitempty"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`

	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// IsExpanded marks a sub-process that is drawn with its children.
	IsExpanded bool `json:"isExpanded,omitempty" yaml:"isExpanded,omitempty"`
	// AttachedToRef is the host activity of a boundary event.
	AttachedToRef string `json:"attachedToRef,omitempty" yaml:"attachedToRef,omitempty"`
	// Order is the partition order of a lane among its siblings.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`
	// GroupedElements lists the IDs a group visually encloses.
	GroupedElements []string `json:"groupedElements,omitempty" yaml:"groupedElements,omitempty"`
	Padding         *Padding `json:"padding,omitempty" yaml:"padding,omitempty"`

	Children       []*Node `json:"children,omitempty" yaml:"children,omitempty"`
	Edges          []*Edge `json:"edges,omitempty" yaml:"edges,omitempty"`
	BoundaryEvents []*Node `json:"boundaryEvents,omitempty" yaml:"boundaryEvents,omitempty"`
	// Artifacts is accepted on input and folded into Children by Normalize.
	Artifacts []*Node `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`

	Labels        []Label           `json:"labels,omitempty" yaml:"labels,omitempty"`
	LayoutOptions map[string]string `json:"layoutOptions,omitempty" yaml:"layoutOptions,omitempty"`
	Props         map[string]any    `json:"props,omitempty" yaml:"props,omitempty"`
}

// Bounds returns the node rectangle in its parent's coordinate space.
func (n *Node) Bounds() geom.Rect { return geom.R(n.X, n.Y, n.Width, n.Height) }

// SetBounds assigns position and size from r.
func (n *Node) SetBounds(r geom.Rect) {
	n.X, n.Y, n.Width, n.Height = r.X, r.Y, r.W, r.H
}

// IsContainer reports whether the node lays out children of its own.
// Collapsed sub-processes are not containers even if the input lists
// children for them.
func (n *Node) IsContainer() bool {
	switch n.Category {
	case CategoryRoot, CategoryCollaboration, CategoryParticipant, CategoryProcess, CategoryLane:
		return true
	case "":
		return len(n.Children) > 0
	}
	if n.Category.IsSubProcess() {
		return n.IsExpanded || len(n.Children) > 0
	}
	return false
}

// IsBlackBox reports whether n is a pool without any content.
func (n *Node) IsBlackBox() bool {
	return n.Category == CategoryParticipant && len(n.Children) == 0
}

// HasLanes reports whether any direct child is a lane.
func (n *Node) HasLanes() bool {
	return slices.ContainsFunc(n.Children, func(c *Node) bool { return c.Category == CategoryLane })
}

// Child returns the direct child with the given ID.
func (n *Node) Child(id string) *Node {
	for _, c := range n.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RemoveChild detaches the direct child with the given ID and reports
// whether it was present.
func (n *Node) RemoveChild(id string) bool {
	before := len(n.Children)
	n.Children = slices.DeleteFunc(n.Children, func(c *Node) bool { return c.ID == id })
	return len(n.Children) != before
}

// PaddingOr returns the node's padding or def when none is set.
func (n *Node) PaddingOr(def Padding) Padding {
	if n.Padding != nil {
		return *n.Padding
	}
	return def
}

// Clone returns a deep copy of the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.GroupedElements = slices.Clone(n.GroupedElements)
	if n.Padding != nil {
		p := *n.Padding
		c.Padding = &p
	}
	c.Children = cloneNodes(n.Children)
	c.BoundaryEvents = cloneNodes(n.BoundaryEvents)
	c.Artifacts = cloneNodes(n.Artifacts)
	if n.Edges != nil {
		c.Edges = make([]*Edge, len(n.Edges))
		for i, e := range n.Edges {
			c.Edges[i] = e.Clone()
		}
	}
	c.Labels = slices.Clone(n.Labels)
	if n.LayoutOptions != nil {
		c.LayoutOptions = make(map[string]string, len(n.LayoutOptions))
		for k, v := range n.LayoutOptions {
			c.LayoutOptions[k] = v
		}
	}
	if n.Props != nil {
		c.Props = make(map[string]any, len(n.Props))
		for k, v := range n.Props {
			c.Props[k] = v
		}
	}
	return &c
}

func cloneNodes(in []*Node) []*Node {
	if in == nil {
		return nil
	}
	out := make([]*Node, len(in))
	for i, n := range in {
		out[i] = n.Clone()
	}
	return out
}

// =============================================================================
// Edge
// =============================================================================

// Route is an orthogonal edge path.
type Route struct {
	Start geom.Point   `json:"startPoint" yaml:"startPoint"`
	Bends []geom.Point `json:"bendPoints,omitempty" yaml:"bendPoints,omitempty"`
	End   geom.Point   `json:"endPoint" yaml:"endPoint"`
}

// NewRoute builds a route from an ordered point list. It returns nil when
// fewer than two points are given.
func NewRoute(pts []geom.Point) *Route {
	if len(pts) < 2 {
		return nil
	}
	r := &Route{Start: pts[0], End: pts[len(pts)-1]}
	if len(pts) > 2 {
		r.Bends = slices.Clone(pts[1 : len(pts)-1])
	}
	return r
}

// Points returns start, bends and end as one slice.
func (r *Route) Points() []geom.Point {
	if r == nil {
		return nil
	}
	pts := make([]geom.Point, 0, len(r.Bends)+2)
	pts = append(pts, r.Start)
	pts = append(pts, r.Bends...)
	return append(pts, r.End)
}

// Edge connects a source node to a target node.
type Edge struct {
	ID       string       `json:"id" yaml:"id"`
	Category EdgeCategory `json:"category,omitempty" yaml:"category,omitempty"`
	Sources  []string     `json:"sources" yaml:"sources"`
	Targets  []string     `json:"targets" yaml:"targets"`
	Route    *Route       `json:"route,omitempty" yaml:"route,omitempty"`
	Space    CoordSpace   `json:"coordSpace,omitempty" yaml:"coordSpace,omitempty"`
	Labels   []Label      `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Source returns the first source ID, or "" when none is set.
func (e *Edge) Source() string {
	if len(e.Sources) == 0 {
		return ""
	}
	return e.Sources[0]
}

// Target returns the first target ID, or "" when none is set.
func (e *Edge) Target() string {
	if len(e.Targets) == 0 {
		return ""
	}
	return e.Targets[0]
}

// Valid reports whether the edge names both a source and a target.
func (e *Edge) Valid() bool { return e.Source() != "" && e.Target() != "" }

// Clone returns a deep copy of e.
func (e *Edge) Clone() *Edge {
	c := *e
	c.Sources = slices.Clone(e.Sources)
	c.Targets = slices.Clone(e.Targets)
	if e.Route != nil {
		r := *e.Route
		r.Bends = slices.Clone(e.Route.Bends)
		c.Route = &r
	}
	c.Labels = slices.Clone(e.Labels)
	return &c
}
