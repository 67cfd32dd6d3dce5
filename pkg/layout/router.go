package layout

import (
	"container/heap"
	"math"

	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
)

// Router finds orthogonal paths around obstacles on a uniform grid.
//
// A search runs over the bounding box of both ends grown by Padding. Cells
// whose centre lies strictly inside an obstacle, or inside either end,
// grown by Margin, are blocked. The path leaves the source and enters the
// target through the sides facing each other and minimises length plus
// BendPenalty per turn. If no path exists the region grows once to cover
// every obstacle. The grid never exceeds MaxCells; larger regions use
// coarser cells.
type Router struct {
	cfg config.Router
}

// NewRouter returns a router for cfg.
func NewRouter(cfg config.Router) *Router {
	return &Router{cfg: cfg}
}

// Route returns a path from src to dst. When the grid search fails it
// returns the default orthogonal route and false.
func (r *Router) Route(src, dst geom.Rect, obstacles []geom.Rect) ([]geom.Point, bool) {
	ss, ds := geom.DominantSides(src, dst)
	s, t := src.Anchor(ss), dst.Anchor(ds)
	m := r.cfg.Margin
	s1, t1 := stub(s, ss, m), stub(t, ds, m)

	blocks := make([]geom.Rect, 0, len(obstacles)+2)
	blocks = append(blocks, src.Expand(m), dst.Expand(m))
	for _, o := range obstacles {
		blocks = append(blocks, o.Expand(m))
	}

	region := geom.BoundingBox(src, dst).Expand(r.cfg.Padding)
	path, ok := r.search(region, s1, t1, blocks)
	if !ok && len(obstacles) > 0 {
		all := geom.BoundingBox(append([]geom.Rect{region}, obstacles...)...).Expand(r.cfg.Padding)
		if all != region {
			path, ok = r.search(all, s1, t1, blocks)
		}
	}
	if !ok {
		return flowRoute(src, dst), false
	}

	end := path[len(path)-1]
	pts := make([]geom.Point, 0, len(path)+3)
	pts = append(pts, s)
	pts = append(pts, path...)
	if horizontalSide(ds) {
		pts = append(pts, geom.Pt(end.X, t.Y))
	} else {
		pts = append(pts, geom.Pt(t.X, end.Y))
	}
	pts = append(pts, t)
	return geom.Simplify(pts), true
}

// stub returns the point d away from p, outwards through side s.
func stub(p geom.Point, s geom.Side, d float64) geom.Point {
	switch s {
	case geom.SideRight:
		return p.Translate(d, 0)
	case geom.SideLeft:
		return p.Translate(-d, 0)
	case geom.SideTop:
		return p.Translate(0, -d)
	default:
		return p.Translate(0, d)
	}
}

type grid struct {
	ox, oy, cell float64
	cols, rows   int
	blocked      []bool
}

func (g *grid) point(c int) geom.Point {
	return geom.Pt(g.ox+float64(c%g.cols)*g.cell, g.oy+float64(c/g.cols)*g.cell)
}

func (g *grid) cellOf(p geom.Point) int {
	i := int(math.Round((p.X - g.ox) / g.cell))
	j := int(math.Round((p.Y - g.oy) / g.cell))
	i = min(max(i, 0), g.cols-1)
	j = min(max(j, 0), g.rows-1)
	return j*g.cols + i
}

// block marks every grid point strictly inside b.
func (g *grid) block(b geom.Rect) {
	i0 := max(int(math.Floor((b.Left()-g.ox)/g.cell)), 0)
	i1 := min(int(math.Ceil((b.Right()-g.ox)/g.cell)), g.cols-1)
	j0 := max(int(math.Floor((b.Top()-g.oy)/g.cell)), 0)
	j1 := min(int(math.Ceil((b.Bottom()-g.oy)/g.cell)), g.rows-1)
	for j := j0; j <= j1; j++ {
		y := g.oy + float64(j)*g.cell
		if y <= b.Top()+geom.Epsilon || y >= b.Bottom()-geom.Epsilon {
			continue
		}
		for i := i0; i <= i1; i++ {
			x := g.ox + float64(i)*g.cell
			if x > b.Left()+geom.Epsilon && x < b.Right()-geom.Epsilon {
				g.blocked[j*g.cols+i] = true
			}
		}
	}
}

func (r *Router) newGrid(region geom.Rect, anchor geom.Point) *grid {
	cell := r.cfg.CellSize
	if n := region.W * region.H / (cell * cell); n > float64(r.cfg.MaxCells) {
		cell = math.Ceil(math.Sqrt(region.W * region.H / float64(r.cfg.MaxCells)))
	}
	ox := anchor.X - math.Ceil((anchor.X-region.Left())/cell)*cell
	oy := anchor.Y - math.Ceil((anchor.Y-region.Top())/cell)*cell
	g := &grid{
		ox:   ox,
		oy:   oy,
		cell: cell,
		cols: int(math.Ceil((region.Right()-ox)/cell)) + 1,
		rows: int(math.Ceil((region.Bottom()-oy)/cell)) + 1,
	}
	g.blocked = make([]bool, g.cols*g.rows)
	return g
}

// Search directions: right, left, down, up. dirNone marks the start state.
var steps = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

const dirNone = 4

func (r *Router) search(region geom.Rect, start, goal geom.Point, blocks []geom.Rect) ([]geom.Point, bool) {
	g := r.newGrid(region, start)
	for _, b := range blocks {
		g.block(b)
	}
	sc, gc := g.cellOf(start), g.cellOf(goal)
	g.blocked[sc], g.blocked[gc] = false, false

	gi, gj := gc%g.cols, gc/g.cols
	h := func(c int) int {
		return abs(c%g.cols-gi) + abs(c/g.cols-gj)
	}

	n := g.cols * g.rows * 5
	dist := make([]int, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = math.MaxInt
		prev[i] = -1
	}
	first := sc*5 + dirNone
	dist[first] = 0
	q := &stateQueue{}
	heap.Push(q, queued{state: first, f: h(sc)})

	for q.Len() > 0 {
		cur := heap.Pop(q).(queued)
		c, d := cur.state/5, cur.state%5
		if cur.f-h(c) > dist[cur.state] {
			continue
		}
		if c == gc {
			return g.trace(prev, cur.state), true
		}
		ci, cj := c%g.cols, c/g.cols
		for nd, st := range steps {
			ni, nj := ci+st[0], cj+st[1]
			if ni < 0 || nj < 0 || ni >= g.cols || nj >= g.rows {
				continue
			}
			nc := nj*g.cols + ni
			if g.blocked[nc] {
				continue
			}
			cost := dist[cur.state] + 1
			if d != dirNone && d != nd {
				cost += r.cfg.BendPenalty
			}
			ns := nc*5 + nd
			if cost < dist[ns] {
				dist[ns] = cost
				prev[ns] = cur.state
				heap.Push(q, queued{state: ns, f: cost + h(nc)})
			}
		}
	}
	return nil, false
}

func (g *grid) trace(prev []int, state int) []geom.Point {
	var cells []int
	for s := state; s >= 0; s = prev[s] {
		cells = append(cells, s/5)
	}
	pts := make([]geom.Point, len(cells))
	for i, c := range cells {
		pts[len(cells)-1-i] = g.point(c)
	}
	return pts
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type queued struct {
	state int
	f     int
	seq   int
}

// stateQueue is a min-heap on f, first in first out among equal f.
type stateQueue struct {
	items []queued
	next  int
}

func (q *stateQueue) Len() int { return len(q.items) }

func (q *stateQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

func (q *stateQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *stateQueue) Push(x any) {
	it := x.(queued)
	it.seq = q.next
	q.next++
	q.items = append(q.items, it)
}

func (q *stateQueue) Pop() any {
	old := q.items
	it := old[len(old)-1]
	q.items = old[:len(old)-1]
	return it
}
