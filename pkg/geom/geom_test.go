package geom

import (
	"math"
	"testing"
)

func TestSegmentIntersectsRect(t *testing.T) {
	box := R(100, 100, 50, 50)

	tests := []struct {
		name string
		a, b Point
		want bool
	}{
		{"horizontal through", Pt(0, 125), Pt(200, 125), true},
		{"vertical through", Pt(120, 0), Pt(120, 300), true},
		{"diagonal through", Pt(90, 90), Pt(160, 160), true},
		{"ends inside", Pt(0, 125), Pt(125, 125), true},
		{"fully inside", Pt(110, 110), Pt(140, 140), true},
		{"passes above", Pt(0, 90), Pt(200, 90), false},
		{"runs along top border", Pt(0, 100), Pt(200, 100), false},
		{"runs along left border", Pt(100, 0), Pt(100, 300), false},
		{"stops short", Pt(0, 125), Pt(99, 125), false},
		{"misses diagonally", Pt(0, 200), Pt(90, 300), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.a, tt.b, box); got != tt.want {
				t.Errorf("SegmentIntersectsRect(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSegmentIntersection(t *testing.T) {
	p, ok := SegmentIntersection(Pt(0, 0), Pt(10, 10), Pt(0, 10), Pt(10, 0))
	if !ok {
		t.Fatal("expected intersection")
	}
	if !p.Eq(Pt(5, 5)) {
		t.Errorf("intersection = %v, want (5,5)", p)
	}

	if _, ok := SegmentIntersection(Pt(0, 0), Pt(10, 0), Pt(0, 5), Pt(10, 5)); ok {
		t.Error("parallel segments should not intersect")
	}
	if _, ok := SegmentIntersection(Pt(0, 0), Pt(1, 1), Pt(5, 0), Pt(5, 10)); ok {
		t.Error("disjoint segments should not intersect")
	}
}

func TestSimplify(t *testing.T) {
	in := []Point{Pt(0, 0), Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(10, 10), Pt(10, 20)}
	got := Simplify(in)
	want := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 20)}
	if len(got) != len(want) {
		t.Fatalf("Simplify() = %v, want %v", got, want)
	}
	for i := range want {
		if !got[i].Eq(want[i]) {
			t.Errorf("Simplify()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestIsOrthogonal(t *testing.T) {
	if !IsOrthogonal([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 10)}) {
		t.Error("L-shape should be orthogonal")
	}
	if IsOrthogonal([]Point{Pt(0, 0), Pt(10, 10)}) {
		t.Error("diagonal should not be orthogonal")
	}
}

func TestDiamondCorners(t *testing.T) {
	d := Diamond{Box: R(0, 0, 50, 50)}
	c := d.Corners()
	want := [4]Point{Pt(0, 25), Pt(25, 0), Pt(50, 25), Pt(25, 50)}
	for i := range want {
		if !c[i].Eq(want[i]) {
			t.Errorf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}
	if got := d.NearestCorner(Pt(60, 20)); got != CornerRight {
		t.Errorf("NearestCorner = %v, want right", got)
	}
}

func TestDiamondIntersect(t *testing.T) {
	d := Diamond{Box: R(0, 0, 50, 50)}

	// Approaching horizontally at the centre line hits the left corner.
	p, ok := d.Intersect(Pt(-100, 25), Pt(25, 25))
	if !ok || !p.Eq(Pt(0, 25)) {
		t.Errorf("Intersect horizontal = %v (%v), want (0,25)", p, ok)
	}

	// Approaching off-centre hits a slanted side.
	p, ok = d.Intersect(Pt(-100, 15), Pt(25, 15))
	if !ok {
		t.Fatal("expected intersection on slanted side")
	}
	if !d.OnBoundary(p, 0.01) {
		t.Errorf("intersection %v not on diamond boundary", p)
	}
	if math.Abs(p.Y-15) > Epsilon {
		t.Errorf("intersection y = %v, want 15", p.Y)
	}
}

func TestDominantSides(t *testing.T) {
	a := R(0, 0, 100, 80)
	tests := []struct {
		name     string
		b        Rect
		src, dst Side
	}{
		{"right", R(300, 10, 100, 80), SideRight, SideLeft},
		{"left", R(-300, 10, 100, 80), SideLeft, SideRight},
		{"below", R(10, 300, 100, 80), SideBottom, SideTop},
		{"above", R(10, -300, 100, 80), SideTop, SideBottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := DominantSides(a, tt.b)
			if src != tt.src || dst != tt.dst {
				t.Errorf("DominantSides = %v,%v want %v,%v", src, dst, tt.src, tt.dst)
			}
		})
	}
}

func TestRectUnionAndContains(t *testing.T) {
	u := BoundingBox(R(0, 0, 10, 10), R(20, 5, 10, 30))
	if u != R(0, 0, 30, 35) {
		t.Errorf("BoundingBox = %v", u)
	}
	if !u.ContainsRect(R(5, 5, 10, 10)) {
		t.Error("ContainsRect should be true")
	}
	if R(0, 0, 10, 10).Overlaps(R(10, 0, 10, 10)) {
		t.Error("touching rects should not overlap")
	}
}
