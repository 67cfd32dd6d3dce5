package geom

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for coordinate equality.
const Epsilon = 1e-6

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Translate returns p moved by (dx, dy).
func (p Point) Translate(dx, dy float64) Point { return Point{p.X + dx, p.Y + dy} }

// Eq reports whether p and q coincide within Epsilon.
func (p Point) Eq(q Point) bool {
	return math.Abs(p.X-q.X) < Epsilon && math.Abs(p.Y-q.Y) < Epsilon
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func (p Point) String() string { return fmt.Sprintf("(%g,%g)", p.X, p.Y) }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints returns the smallest rectangle containing a and b.
func RectFromPoints(a, b Point) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }
func (r Rect) CenterX() float64 {
	return r.X + r.W/2
}
func (r Rect) CenterY() float64 {
	return r.Y + r.H/2
}

// Center returns the centre point of r.
func (r Rect) Center() Point { return Point{r.CenterX(), r.CenterY()} }

// TopLeft returns the top-left corner of r.
func (r Rect) TopLeft() Point { return Point{r.X, r.Y} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Expand grows r by m on every side. A negative m shrinks it.
func (r Rect) Expand(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// ExpandSides grows r by individual amounts per side.
func (r Rect) ExpandSides(top, right, bottom, left float64) Rect {
	return Rect{X: r.X - left, Y: r.Y - top, W: r.W + left + right, H: r.H + top + bottom}
}

// Union returns the smallest rectangle containing r and o. An empty receiver
// is treated as absent so Union can be used as an accumulator starting from
// the zero Rect.
func (r Rect) Union(o Rect) Rect {
	if r.W == 0 && r.H == 0 && r.X == 0 && r.Y == 0 {
		return o
	}
	x0 := math.Min(r.Left(), o.Left())
	y0 := math.Min(r.Top(), o.Top())
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left()-Epsilon && p.X <= r.Right()+Epsilon &&
		p.Y >= r.Top()-Epsilon && p.Y <= r.Bottom()+Epsilon
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Left() >= r.Left()-Epsilon && o.Right() <= r.Right()+Epsilon &&
		o.Top() >= r.Top()-Epsilon && o.Bottom() <= r.Bottom()+Epsilon
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.Left() < o.Right()-Epsilon && o.Left() < r.Right()-Epsilon &&
		r.Top() < o.Bottom()-Epsilon && o.Top() < r.Bottom()-Epsilon
}

// OverlapsX reports whether r and o share a horizontal extent.
func (r Rect) OverlapsX(o Rect) bool {
	return r.Left() < o.Right()-Epsilon && o.Left() < r.Right()-Epsilon
}

// OverlapsY reports whether r and o share a vertical extent.
func (r Rect) OverlapsY(o Rect) bool {
	return r.Top() < o.Bottom()-Epsilon && o.Top() < r.Bottom()-Epsilon
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.W, r.H)
}

// BoundingBox returns the union of rects, or the zero Rect for none.
func BoundingBox(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		x0 := math.Min(out.Left(), r.Left())
		y0 := math.Min(out.Top(), r.Top())
		x1 := math.Max(out.Right(), r.Right())
		y1 := math.Max(out.Bottom(), r.Bottom())
		out = Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	}
	return out
}

// Side identifies one side of a rectangle.
type Side int

const (
	SideRight Side = iota
	SideLeft
	SideTop
	SideBottom
)

func (s Side) String() string {
	switch s {
	case SideRight:
		return "right"
	case SideLeft:
		return "left"
	case SideTop:
		return "top"
	default:
		return "bottom"
	}
}

// Anchor returns the midpoint of side s of r.
func (r Rect) Anchor(s Side) Point {
	switch s {
	case SideRight:
		return Point{r.Right(), r.CenterY()}
	case SideLeft:
		return Point{r.Left(), r.CenterY()}
	case SideTop:
		return Point{r.CenterX(), r.Top()}
	default:
		return Point{r.CenterX(), r.Bottom()}
	}
}

// DominantSides picks the sides through which an edge should leave from and
// enter to based on the centre-to-centre vector: horizontal sides when the
// horizontal distance dominates, vertical sides otherwise.
func DominantSides(from, to Rect) (src, dst Side) {
	d := to.Center().Sub(from.Center())
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if d.X >= 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if d.Y >= 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}
