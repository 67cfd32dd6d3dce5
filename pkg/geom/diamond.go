package geom

import "math"

// Corner identifies one of the four corners of a gateway diamond. The
// corners are the midpoints of the sides of the diamond's bounding box.
type Corner int

const (
	CornerLeft Corner = iota
	CornerTop
	CornerRight
	CornerBottom
)

// Diamond is the rhombus inscribed in a bounding rectangle.
type Diamond struct {
	Box Rect
}

// Corners returns the left, top, right and bottom corners, indexed by Corner.
func (d Diamond) Corners() [4]Point {
	b := d.Box
	return [4]Point{
		CornerLeft:   {b.Left(), b.CenterY()},
		CornerTop:    {b.CenterX(), b.Top()},
		CornerRight:  {b.Right(), b.CenterY()},
		CornerBottom: {b.CenterX(), b.Bottom()},
	}
}

// Corner returns a single corner point.
func (d Diamond) Corner(c Corner) Point { return d.Corners()[c] }

// NearestCorner returns the corner closest to p.
func (d Diamond) NearestCorner(p Point) Corner {
	best, bestDist := CornerLeft, math.Inf(1)
	for c, q := range d.Corners() {
		if dist := p.Dist(q); dist < bestDist {
			best, bestDist = Corner(c), dist
		}
	}
	return best
}

// Contains reports whether p lies inside the diamond or on its boundary.
func (d Diamond) Contains(p Point) bool {
	return d.norm(p) <= 1+Epsilon
}

// OnBoundary reports whether p lies on the diamond outline within tol pixels.
func (d Diamond) OnBoundary(p Point, tol float64) bool {
	hw, hh := d.Box.W/2, d.Box.H/2
	if hw <= 0 || hh <= 0 {
		return false
	}
	// Distance along the normal of the nearest diamond side.
	n := d.norm(p) - 1
	scale := (hw * hh) / math.Hypot(hw, hh)
	return math.Abs(n)*scale <= tol
}

func (d Diamond) norm(p Point) float64 {
	hw, hh := d.Box.W/2, d.Box.H/2
	if hw <= 0 || hh <= 0 {
		return math.Inf(1)
	}
	c := d.Box.Center()
	return math.Abs(p.X-c.X)/hw + math.Abs(p.Y-c.Y)/hh
}

// Edges returns the four sides of the diamond as point pairs.
func (d Diamond) Edges() [4][2]Point {
	c := d.Corners()
	return [4][2]Point{
		{c[CornerLeft], c[CornerTop]},
		{c[CornerTop], c[CornerRight]},
		{c[CornerRight], c[CornerBottom]},
		{c[CornerBottom], c[CornerLeft]},
	}
}

// Intersect returns the point where the segment from→to first crosses the
// diamond outline, measured from from. It reports false when the segment
// never reaches the outline.
func (d Diamond) Intersect(from, to Point) (Point, bool) {
	var best Point
	bestDist := math.Inf(1)
	found := false
	for _, e := range d.Edges() {
		p, ok := SegmentIntersection(from, to, e[0], e[1])
		if !ok {
			continue
		}
		if dist := from.Dist(p); dist < bestDist {
			best, bestDist, found = p, dist, true
		}
	}
	return best, found
}
