package model

import (
	"math"

	"golang.org/x/text/width"
)

// Default element sizes in pixels.
const (
	EventSize           = 36
	GatewaySize         = 50
	TaskWidth           = 100
	TaskHeight          = 80
	CollapsedWidth      = 100
	CollapsedHeight     = 80
	ExpandedMinWidth    = 300
	ExpandedMinHeight   = 200
	DataObjectWidth     = 36
	DataObjectHeight    = 50
	DataStoreSize       = 50
	AnnotationWidth     = 100
	AnnotationHeight    = 30
	GroupWidth          = 100
	GroupHeight         = 80
	labelCharWidth      = 7
	labelMaxLines       = 3
	labelHorizontalPad  = 20
	labelWidthIncrement = 10
)

// DefaultSize returns the size a node gets when the input leaves width or
// height unset. Pools, lanes and processes return zero; their bounds are
// derived from their content.
func DefaultSize(n *Node) (w, h float64) {
	c := n.Category
	switch {
	case c.IsEvent():
		return EventSize, EventSize
	case c.IsGateway():
		return GatewaySize, GatewaySize
	case c.IsSubProcess():
		if n.IsExpanded || len(n.Children) > 0 {
			return ExpandedMinWidth, ExpandedMinHeight
		}
		return CollapsedWidth, CollapsedHeight
	case c == CategoryCallActivity:
		return CollapsedWidth, CollapsedHeight
	case c.IsActivity():
		return TaskWidthFor(n.Name), TaskHeight
	case c == CategoryDataObject, c == CategoryDataObjectReference:
		return DataObjectWidth, DataObjectHeight
	case c == CategoryDataStoreReference:
		return DataStoreSize, DataStoreSize
	case c == CategoryTextAnnotation:
		return AnnotationWidth, AnnotationHeight
	case c == CategoryGroup:
		return GroupWidth, GroupHeight
	}
	return 0, 0
}

// TaskWidthFor returns the width of a task whose label is name. Labels that
// would wrap onto more than three lines widen the task so they fit on three.
func TaskWidthFor(name string) float64 {
	text := float64(DisplayWidth(name) * labelCharWidth)
	if text <= labelMaxLines*(TaskWidth-labelHorizontalPad) {
		return TaskWidth
	}
	w := math.Ceil(text/labelMaxLines) + labelHorizontalPad
	return math.Ceil(w/labelWidthIncrement) * labelWidthIncrement
}

// DisplayWidth counts the columns s occupies, with East Asian wide and
// fullwidth runes taking two.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// ApplyDefaultSize fills in a zero width or height from [DefaultSize].
// Expanded sub-processes are raised to the minimum expanded size.
func ApplyDefaultSize(n *Node) {
	dw, dh := DefaultSize(n)
	if n.Width <= 0 {
		n.Width = dw
	}
	if n.Height <= 0 {
		n.Height = dh
	}
	if n.Category.IsSubProcess() && n.IsContainer() {
		n.Width = max(n.Width, ExpandedMinWidth)
		n.Height = max(n.Height, ExpandedMinHeight)
	}
}
