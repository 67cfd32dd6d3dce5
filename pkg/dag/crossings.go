package dag

import (
	"cmp"
	"slices"
)

// CountCrossings returns the weighted number of edge crossings between all
// pairs of consecutive rows in their current order.
func CountCrossings(g *DAG) int {
	rows := g.RowIDs()
	total := 0
	for i := 0; i+1 < len(rows); i++ {
		if rows[i+1] != rows[i]+1 {
			continue
		}
		total += CountLayerCrossings(g, NodeIDs(g.NodesInRow(rows[i])), NodeIDs(g.NodesInRow(rows[i+1])))
	}
	return total
}

// CountLayerCrossings counts crossings between edges running from upper to
// lower. Two edges (u1,v1) and (u2,v2) cross when pos(u1) < pos(u2) and
// pos(v1) > pos(v2); each crossing counts w1*w2, so crossings involving
// heavy main-flow edges dominate.
//
// The count is an inversion count over target positions, computed with a
// Fenwick tree in O(E log V).
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	upperPos, lowerPos := PosMap(upper), PosMap(lower)

	type span struct{ u, l, w int }
	var spans []span
	for _, e := range g.edges {
		u, okU := upperPos[e.From]
		l, okL := lowerPos[e.To]
		if okU && okL {
			spans = append(spans, span{u, l, e.Weight})
		}
	}
	if len(spans) < 2 {
		return 0
	}
	slices.SortFunc(spans, func(a, b span) int {
		if c := cmp.Compare(a.u, b.u); c != 0 {
			return c
		}
		return cmp.Compare(a.l, b.l)
	})

	fenwick := make([]int, len(lower)+1)
	crossings, seen := 0, 0
	for _, s := range spans {
		atMost := 0
		for q := s.l + 1; q > 0; q -= q & (-q) {
			atMost += fenwick[q]
		}
		crossings += (seen - atMost) * s.w
		seen += s.w
		for q := s.l + 1; q < len(fenwick); q += q & (-q) {
			fenwick[q] += s.w
		}
	}
	return crossings
}
