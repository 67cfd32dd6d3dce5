package layout

import (
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/model"
)

// GroupInfo lists the elements a group encloses.
type GroupInfo struct {
	ID       string
	Elements []string
	Padding  float64
}

// CollectGroupInfo returns every group that names at least one element. A
// group's own padding overrides Group.Padding; its top value is used on all
// sides.
func CollectGroupInfo(ix *model.Index, cfg config.Layout) []GroupInfo {
	var out []GroupInfo
	for _, n := range ix.Nodes() {
		if n.Category != model.CategoryGroup || len(n.GroupedElements) == 0 {
			continue
		}
		pad := cfg.Group.Padding
		if n.Padding != nil {
			pad = n.Padding.Top
		}
		out = append(out, GroupInfo{ID: n.ID, Elements: n.GroupedElements, Padding: pad})
	}
	return out
}

// RepositionGroups sets each group's bounds to the union of its resolvable
// elements' absolute bounds, expanded by its padding. Groups whose elements
// all fail to resolve keep their position.
func RepositionGroups(ix *model.Index, infos []GroupInfo) {
	for _, info := range infos {
		g, ok := ix.Node(info.ID)
		if !ok {
			continue
		}
		var rects []geom.Rect
		for _, id := range info.Elements {
			if b, ok := ix.Abs(id); ok && id != info.ID {
				rects = append(rects, b)
			}
		}
		if len(rects) == 0 {
			continue
		}
		box := geom.BoundingBox(rects...).Expand(info.Padding)
		ix.SetAbsPosition(g.ID, box.X, box.Y)
		g.Width, g.Height = box.W, box.H
	}
}
