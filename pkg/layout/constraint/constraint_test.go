package constraint

import (
	"errors"
	"testing"

	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

func TestSolveStacksInOrder(t *testing.T) {
	s := New()
	heights := []float64{60, 200, 120}
	ids := []string{"p1", "p2", "p3"}
	for i, id := range ids {
		if err := s.AddNode(id, geom.R(0, 0, 600, heights[i])); err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i < len(ids); i++ {
		if err := s.Below(ids[i], ids[i-1], 0, Required); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Solve()
	want := []float64{0, 60, 260}
	for i, id := range ids {
		if got[id].Y != want[i] {
			t.Errorf("%s.Y = %v, want %v", id, got[id].Y, want[i])
		}
	}
	if err := s.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestSolveKeepsLowerDesiredPosition(t *testing.T) {
	tests := []struct {
		name    string
		desired float64
		gap     float64
		want    float64
	}{
		{"pushed down", 10, 5, 55},
		{"already below", 100, 5, 100},
		{"exactly at gap", 55, 5, 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_ = s.AddNode("ref", geom.R(0, 0, 10, 50))
			_ = s.AddNode("n", geom.R(0, tt.desired, 10, 10))
			_ = s.Below("n", "ref", tt.gap, Strong)
			if got := s.Solve()["n"].Y; got != tt.want {
				t.Errorf("Y = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyReportsOutOfOrderReference(t *testing.T) {
	s := New()
	_ = s.AddNode("a", geom.R(0, 0, 10, 10))
	_ = s.AddNode("b", geom.R(0, 0, 10, 10))
	_ = s.AddNode("c", geom.R(0, 0, 10, 10))
	_ = s.Below("b", "c", 0, Required) // c is solved after b
	_ = s.Below("c", "a", 0, Required)
	s.Solve()
	if err := s.Verify(); !errors.Is(err, ErrUnsatisfied) {
		t.Fatalf("Verify = %v, want ErrUnsatisfied", err)
	}

	// A second pass settles it.
	s.Solve()
	if err := s.Verify(); err != nil {
		t.Errorf("after second pass: %v", err)
	}
}

func TestWeakConstraintsAreNotVerified(t *testing.T) {
	s := New()
	_ = s.AddNode("b", geom.R(0, 0, 10, 10))
	_ = s.AddNode("a", geom.R(0, 0, 10, 10))
	_ = s.Below("b", "a", 0, Weak)
	s.Solve()
	if err := s.Verify(); err != nil {
		t.Errorf("Verify = %v, want nil for weak constraint", err)
	}
}

func TestErrors(t *testing.T) {
	s := New()
	_ = s.AddNode("a", geom.R(0, 0, 1, 1))
	if err := s.AddNode("a", geom.R(0, 0, 1, 1)); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode duplicate = %v", err)
	}
	if err := s.Below("a", "ghost", 0, Required); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Below unknown = %v", err)
	}
	if _, ok := s.Box("ghost"); ok {
		t.Error("Box(ghost) reported ok")
	}
}
