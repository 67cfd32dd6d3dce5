package geom

import "math"

// SegmentIntersectsRect reports whether the segment a→b passes through the
// interior of r. Touching the border does not count.
//
// The test clips the segment against a copy of r shrunk by Epsilon using the
// Liang–Barsky parametric form.
func SegmentIntersectsRect(a, b Point, r Rect) bool {
	inner := r.Expand(-Epsilon)
	if inner.W <= 0 || inner.H <= 0 {
		return false
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, a.X-inner.Left()) || !clip(dx, inner.Right()-a.X) ||
		!clip(-dy, a.Y-inner.Top()) || !clip(dy, inner.Bottom()-a.Y) {
		return false
	}
	return t0 <= t1
}

// PolylineIntersectsRect reports whether any segment of pts passes through
// the interior of r.
func PolylineIntersectsRect(pts []Point, r Rect) bool {
	for i := 0; i+1 < len(pts); i++ {
		if SegmentIntersectsRect(pts[i], pts[i+1], r) {
			return true
		}
	}
	return false
}

// SegmentIntersection returns the intersection point of segments p1→p2 and
// p3→p4. Parallel or collinear segments report no intersection.
func SegmentIntersection(p1, p2, p3, p4 Point) (Point, bool) {
	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < Epsilon {
		return Point{}, false
	}
	w := p3.Sub(p1)
	t := (w.X*d2.Y - w.Y*d2.X) / denom
	u := (w.X*d1.Y - w.Y*d1.X) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return Point{}, false
	}
	return Point{p1.X + t*d1.X, p1.Y + t*d1.Y}, true
}

// PathLength returns the total length of the polyline pts.
func PathLength(pts []Point) float64 {
	total := 0.0
	for i := 0; i+1 < len(pts); i++ {
		total += pts[i].Dist(pts[i+1])
	}
	return total
}

// Simplify drops repeated points and interior points that lie on a straight
// line between their neighbours. The first and last point are always kept.
func Simplify(pts []Point) []Point {
	if len(pts) < 2 {
		return pts
	}
	dedup := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(dedup) > 0 && dedup[len(dedup)-1].Eq(p) {
			continue
		}
		dedup = append(dedup, p)
	}
	if len(dedup) < 3 {
		if len(dedup) == 1 {
			return []Point{pts[0], pts[len(pts)-1]}
		}
		return dedup
	}
	out := []Point{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		prev, cur, next := out[len(out)-1], dedup[i], dedup[i+1]
		if collinear(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	return append(out, dedup[len(dedup)-1])
}

func collinear(a, b, c Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return math.Abs(cross) < Epsilon
}

// IsOrthogonal reports whether every segment of pts is horizontal or vertical.
func IsOrthogonal(pts []Point) bool {
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		if math.Abs(a.X-b.X) > Epsilon && math.Abs(a.Y-b.Y) > Epsilon {
			return false
		}
	}
	return true
}

// TranslateAll returns a copy of pts moved by (dx, dy).
func TranslateAll(pts []Point, dx, dy float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = p.Translate(dx, dy)
	}
	return out
}
