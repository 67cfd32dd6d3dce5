package tree

import (
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

func leaf(id string) *Node { return &Node{ID: id, Width: 100, Height: 80} }

func rect(n *Node) geom.Rect { return geom.R(n.X, n.Y, n.Width, n.Height) }

func TestLayoutTopDown(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")
	root := &Node{ID: "r", Width: 36, Height: 36, Children: []*Node{a, b, c}}
	Layout(root, Options{Direction: TopDown, SiblingGap: 20, LevelGap: 50})

	if root.X+root.Width/2 != 0 || root.Y != 0 {
		t.Errorf("root at (%v,%v)", root.X, root.Y)
	}
	for i, n := range []*Node{a, b, c} {
		if n.Y != 36+50 {
			t.Errorf("%s.Y = %v, want 86", n.ID, n.Y)
		}
		if want := float64(i-1)*120 - 50; n.X != want {
			t.Errorf("%s.X = %v, want %v", n.ID, n.X, want)
		}
	}
}

func TestLayoutLeftToRight(t *testing.T) {
	a, b := leaf("a"), leaf("b")
	root := &Node{ID: "r", Width: 36, Height: 36, Children: []*Node{a, b}}
	Layout(root, Options{Direction: LeftToRight, SiblingGap: 20, LevelGap: 50})

	if a.X != 86 || b.X != 86 {
		t.Errorf("children X = %v, %v, want 86", a.X, b.X)
	}
	if b.Y-a.Y != 100 {
		t.Errorf("sibling distance = %v, want 100", b.Y-a.Y)
	}
	if got := (a.Y + b.Y + 80) / 2; got != root.Y+18 {
		t.Errorf("root not centred: children mid %v, root centre %v", got, root.Y+18)
	}
}

func TestLayoutSubtreesDoNotOverlap(t *testing.T) {
	// Two wide subtrees whose grandchildren would collide if the
	// children were only spaced by their own widths.
	l := &Node{ID: "l", Width: 10, Height: 10, Children: []*Node{leaf("l1"), leaf("l2"), leaf("l3")}}
	r := &Node{ID: "r", Width: 10, Height: 10, Children: []*Node{leaf("r1"), leaf("r2"), leaf("r3")}}
	root := &Node{ID: "root", Width: 10, Height: 10, Children: []*Node{l, r}}
	Layout(root, Options{SiblingGap: 10, LevelGap: 10})

	var all []*Node
	root.Walk(func(n *Node) { all = append(all, n) })
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if rect(all[i]).Overlaps(rect(all[j])) {
				t.Errorf("%s overlaps %s", all[i].ID, all[j].ID)
			}
		}
	}
	if c := l.X + l.Width/2; c != (l.Children[0].X+l.Children[2].X+100)/2 {
		t.Errorf("l not centred over its children")
	}
}

func TestBuildTreeBreaksCycles(t *testing.T) {
	sizes := map[string]Size{
		"a": {100, 80}, "b": {100, 80}, "c": {100, 80},
	}
	edges := map[string][]string{
		"a": {"b", "ghost"},
		"b": {"c"},
		"c": {"a"},
	}
	root := BuildTree("a", sizes, edges)
	if root == nil || len(root.Children) != 1 {
		t.Fatalf("root = %+v", root)
	}
	c := root.Children[0].Children[0]
	if c.ID != "c" || len(c.Children) != 1 {
		t.Fatalf("c = %+v", c)
	}
	back := c.Children[0]
	if back.ID != "a" || !back.Repeat || len(back.Children) != 0 {
		t.Errorf("cycle not cut: %+v", back)
	}
	if BuildTree("ghost", sizes, edges) != nil {
		t.Error("BuildTree on unknown root should return nil")
	}
}

func TestLayoutBoundaryBranch(t *testing.T) {
	host := geom.R(200, 100, 150, 80)
	tests := []struct {
		name string
		dir  Direction
	}{
		{"top down", TopDown},
		{"left to right", LeftToRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := BuildTree("h", map[string]Size{"h": {100, 80}, "x": {36, 36}, "y": {36, 36}},
				map[string][]string{"h": {"x", "y"}})
			LayoutBoundaryBranch(root, host, 50, Options{Direction: tt.dir, SiblingGap: 20, LevelGap: 30})

			if got := root.X + root.Width/2; got != host.CenterX() {
				t.Errorf("root centre x = %v, want %v", got, host.CenterX())
			}
			if top := root.Bounds().Top(); top != host.Bottom()+50 {
				t.Errorf("branch top = %v, want %v", top, host.Bottom()+50)
			}
		})
	}
}
