package graphviz

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/engine"
)

func level(dir engine.Direction) (*engine.Level, *engine.Node, *engine.Node) {
	a := &engine.Node{ID: "a", Width: 36, Height: 36, Options: map[string]string{
		engine.OptionPriority:        "10",
		engine.OptionLayerConstraint: "FIRST",
	}}
	b := &engine.Node{ID: "b", Width: 144, Height: 72}
	opts := engine.DefaultOptions()
	opts.Direction = dir
	return &engine.Level{
		Options: opts,
		Nodes:   []*engine.Node{a, b},
		Edges: []engine.LevelEdge{
			{ID: "e", Source: a, Target: b, Priority: engine.PriorityMainFlow},
			{ID: "loop", Source: b, Target: b},
		},
	}, a, b
}

func TestToDOT(t *testing.T) {
	lvl, _, _ := level(engine.DirectionDown)
	dot, ids := ToDOT(lvl)
	if len(ids) != 2 || ids[0] != "n0" || ids[1] != "n1" {
		t.Fatalf("ids = %v", ids)
	}
	for _, want := range []string{
		"rankdir=TB;",
		"n0 [width=0.5000, height=0.5000, group=main];",
		"n1 [width=2.0000, height=1.0000];",
		"{ rank=min; n0; }",
		"n0 -> n1 [weight=100];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "n1 -> n1") {
		t.Error("self loop emitted")
	}
}

const cannedOutput = `digraph G {
	graph [bb="0,0,252,36",
		nodesep=0.6944,
		rankdir=LR
	];
	node [label="",
		shape=box
	];
	n0	[height=0.5,
		pos="18,18",
		width=0.5];
	n1	[height=1,
		pos="180,-18",
		width=2];
	n0 -> n1	[pos="e,107.8,18 36.2,18 56.1,18 75.3,18 97.7,18",
		weight=100];
}
`

func TestParsePositions(t *testing.T) {
	got, err := ParsePositions([]byte(cannedOutput))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d positions: %v", len(got), got)
	}
	if got["n0"] != [2]float64{18, 18} || got["n1"] != [2]float64{180, -18} {
		t.Errorf("positions = %v", got)
	}
}

func TestLayoutLevelFlipsY(t *testing.T) {
	var seen string
	fake := func(_ context.Context, dot string) ([]byte, error) {
		seen = dot
		return []byte(cannedOutput), nil
	}
	lvl, a, b := level(engine.DirectionRight)
	l := &Layouter{render: fake}
	if err := l.LayoutLevel(context.Background(), lvl); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(seen, "rankdir=LR;") {
		t.Errorf("renderer got %q", seen)
	}
	if a.X != 0 || a.Y != -36 {
		t.Errorf("a at (%v,%v), want (0,-36)", a.X, a.Y)
	}
	if b.X != 108 || b.Y != -18 {
		t.Errorf("b at (%v,%v), want (108,-18)", b.X, b.Y)
	}
}

func TestLayoutLevelMissingNode(t *testing.T) {
	fake := func(context.Context, string) ([]byte, error) {
		return []byte("digraph G {\n\tn0 [pos=\"1,1\"];\n}\n"), nil
	}
	lvl, _, _ := level(engine.DirectionRight)
	if err := (&Layouter{render: fake}).LayoutLevel(context.Background(), lvl); err == nil {
		t.Fatal("expected error for missing n1")
	}
}
