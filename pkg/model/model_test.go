package model

import (
	"errors"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

func sampleTree() *Node {
	return &Node{
		ID:       "root",
		Category: CategoryCollaboration,
		Children: []*Node{
			{
				ID: "pool", Category: CategoryParticipant, X: 10, Y: 20, Width: 600, Height: 300,
				Children: []*Node{
					{
						ID: "task", Category: CategoryTask, X: 100, Y: 50, Width: 100, Height: 80,
						BoundaryEvents: []*Node{
							{ID: "be", Category: CategoryBoundaryEvent, X: 130, Y: 112, Width: 36, Height: 36},
						},
					},
					{
						ID: "sub", Category: CategorySubProcess, IsExpanded: true, X: 250, Y: 40, Width: 300, Height: 200,
						Children: []*Node{{ID: "inner", Category: CategoryTask, X: 20, Y: 30, Width: 100, Height: 80}},
						Edges:    []*Edge{{ID: "local", Sources: []string{"inner"}, Targets: []string{"inner"}}},
					},
				},
				Edges: []*Edge{{ID: "seq", Sources: []string{"task"}, Targets: []string{"sub"}}},
			},
		},
		Edges: []*Edge{{ID: "msg", Category: EdgeMessageFlow, Sources: []string{"be"}, Targets: []string{"inner"}}},
	}
}

func TestIndexAbs(t *testing.T) {
	ix := NewIndex(sampleTree())

	tests := []struct {
		id   string
		want geom.Rect
	}{
		{"pool", geom.R(10, 20, 600, 300)},
		{"task", geom.R(110, 70, 100, 80)},
		{"be", geom.R(140, 132, 36, 36)},
		{"inner", geom.R(280, 90, 100, 80)},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := ix.Abs(tt.id)
			if !ok {
				t.Fatalf("Abs(%q) not found", tt.id)
			}
			if got != tt.want {
				t.Errorf("Abs(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}

	if h := ix.Host("be"); h == nil || h.ID != "task" {
		t.Errorf("Host(be) = %v, want task", h)
	}
	if p := ix.Parent("be"); p == nil || p.ID != "pool" {
		t.Errorf("Parent(be) = %v, want pool", p)
	}
	if p := ix.PoolOf("inner"); p == nil || p.ID != "pool" {
		t.Errorf("PoolOf(inner) = %v, want pool", p)
	}
	if got := len(ix.Outgoing("be")); got != 1 {
		t.Errorf("Outgoing(be) = %d edges, want 1", got)
	}
}

func TestIndexMoveBy(t *testing.T) {
	root := sampleTree()
	ix := NewIndex(root)

	ix.MoveBy("task", 5, 10)
	if got, _ := ix.Abs("task"); got != geom.R(115, 80, 100, 80) {
		t.Errorf("task after move = %v", got)
	}
	// Boundary events follow their host.
	if got, _ := ix.Abs("be"); got != geom.R(145, 142, 36, 36) {
		t.Errorf("be after move = %v", got)
	}

	ix.MoveBy("pool", 0, 100)
	if got, _ := ix.Abs("inner"); got != geom.R(280, 190, 100, 80) {
		t.Errorf("inner after pool move = %v", got)
	}

	// The incremental table agrees with a full rebuild.
	fresh := NewIndex(root)
	for _, n := range ix.Nodes() {
		a, _ := ix.Abs(n.ID)
		b, _ := fresh.Abs(n.ID)
		if a != b {
			t.Errorf("%s: incremental %v, rebuilt %v", n.ID, a, b)
		}
	}
}

func TestSetRouteAbs(t *testing.T) {
	ix := NewIndex(sampleTree())

	tests := []struct {
		edge  string
		space CoordSpace
		first geom.Point
	}{
		{"msg", SpaceAbsolute, geom.Pt(0, 0)},
		{"seq", SpacePool, geom.Pt(-10, -20)},
		{"local", SpaceLocal, geom.Pt(-260, -60)},
	}
	for _, tt := range tests {
		t.Run(tt.edge, func(t *testing.T) {
			ref, ok := ix.EdgeByID(tt.edge)
			if !ok {
				t.Fatalf("edge %q not indexed", tt.edge)
			}
			abs := []geom.Point{geom.Pt(0, 0), geom.Pt(50, 0), geom.Pt(50, 40)}
			ix.SetRouteAbs(ref, abs)
			if ref.Edge.Space != tt.space {
				t.Errorf("space = %v, want %v", ref.Edge.Space, tt.space)
			}
			if !ref.Edge.Route.Start.Eq(tt.first) {
				t.Errorf("stored start = %v, want %v", ref.Edge.Route.Start, tt.first)
			}
			back := ix.RouteAbs(ref)
			for i := range abs {
				if !back[i].Eq(abs[i]) {
					t.Errorf("RouteAbs[%d] = %v, want %v", i, back[i], abs[i])
				}
			}
		})
	}
}

func TestSpaceIsSetOnce(t *testing.T) {
	ix := NewIndex(sampleTree())
	ref, _ := ix.EdgeByID("seq")
	ref.Edge.Space = SpaceAbsolute
	ix.SetRouteAbs(ref, []geom.Point{geom.Pt(1, 2), geom.Pt(30, 2)})
	if ref.Edge.Space != SpaceAbsolute {
		t.Fatalf("space changed to %v", ref.Edge.Space)
	}
	if !ref.Edge.Route.Start.Eq(geom.Pt(1, 2)) {
		t.Errorf("absolute route was offset: %v", ref.Edge.Route.Start)
	}
}

func TestNormalize(t *testing.T) {
	root := &Node{
		ID: "p", Category: CategoryProcess,
		Children: []*Node{
			{ID: "t", Category: CategoryTask},
			{ID: "b", Category: CategoryBoundaryEvent, AttachedToRef: "t"},
			{ID: "sub", Category: CategorySubProcess, IsExpanded: true},
		},
		Artifacts: []*Node{{ID: "d", Category: CategoryDataObjectReference}},
		Edges:     []*Edge{{Sources: []string{"b"}, Targets: []string{"d"}}},
	}
	Normalize(root)

	if root.Child("b") != nil {
		t.Error("boundary event still listed as child")
	}
	host := root.Child("t")
	if len(host.BoundaryEvents) != 1 || host.BoundaryEvents[0].ID != "b" {
		t.Fatalf("host boundary events = %v", host.BoundaryEvents)
	}
	if root.Child("d") == nil || root.Artifacts != nil {
		t.Error("artifacts not hoisted")
	}
	if root.Edges[0].ID == "" {
		t.Error("edge ID not assigned")
	}
	if host.Width != TaskWidth || host.Height != TaskHeight {
		t.Errorf("task size = %vx%v", host.Width, host.Height)
	}
	if be := host.BoundaryEvents[0]; be.Width != EventSize {
		t.Errorf("boundary event width = %v", be.Width)
	}
	if sub := root.Child("sub"); sub.Width != ExpandedMinWidth || sub.Height != ExpandedMinHeight {
		t.Errorf("expanded sub-process size = %vx%v", sub.Width, sub.Height)
	}
	if d := root.Child("d"); d.Width != DataObjectWidth || d.Height != DataObjectHeight {
		t.Errorf("data object size = %vx%v", d.Width, d.Height)
	}

	id := root.Edges[0].ID
	Normalize(root)
	if root.Edges[0].ID != id || len(host.BoundaryEvents) != 1 {
		t.Error("Normalize is not idempotent")
	}
}

func TestTaskWidthFor(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Review", TaskWidth},
		{"", TaskWidth},
		// 40 runes * 7px = 280px > 240px, ceil(280/3)+20 = 114 -> 120.
		{"Check the incoming order against policy!", 120},
		// 22 wide runes count as 44 columns: ceil(308/3)+20 = 123 -> 130.
		{"注文を確認して在庫を引き当てる処理を行う手順", 130},
	}
	for _, tt := range tests {
		if got := TaskWidthFor(tt.name); got != tt.want {
			t.Errorf("TaskWidthFor(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrNilTree) {
		t.Errorf("Validate(nil) = %v", err)
	}
	dup := &Node{ID: "r", Children: []*Node{{ID: "a"}, {ID: "a"}}}
	if err := Validate(dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate: %v", err)
	}
	empty := &Node{ID: "r", Children: []*Node{{}}}
	if err := Validate(empty); !errors.Is(err, ErrEmptyID) {
		t.Errorf("empty: %v", err)
	}
	if err := Validate(sampleTree()); err != nil {
		t.Errorf("valid tree: %v", err)
	}
}

func TestClone(t *testing.T) {
	orig := sampleTree()
	c := orig.Clone()
	c.Children[0].Children[0].X = 999
	c.Edges[0].Sources[0] = "x"
	if orig.Children[0].Children[0].X == 999 || orig.Edges[0].Sources[0] == "x" {
		t.Error("Clone shares state with the original")
	}
}
