// Package group unions candidates into text lines (horizontal mode) or text
// columns (vertical mode) per spec §4.4, using an explicit disjoint-set rather
// than first-match membership testing, as spec §9's design note allows. Groups
// are the full transitive closure of the pairwise predicate: unlike
// first-match, a candidate compatible with members of two existing groups
// joins them into one.
package group

import (
	"math"
	"sort"

	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
	"github.com/moonlit-ink/vncrop/crop/mode"
)

// Group is an ordered, non-empty set of candidates forming one line or column.
type Group struct {
	Members []candidate.Candidate
}

// Bounds returns the union of every member's rectangle.
func (g Group) Bounds() geometry.Rect {
	rects := make([]geometry.Rect, len(g.Members))
	for i, c := range g.Members {
		rects[i] = c.Rect
	}
	return geometry.UnionAll(rects)
}

// Candidates builds line/column groups from the extracted candidates, per
// spec §4.4. The input slice is not mutated; Candidates sorts its own copy.
func Candidates(cands []candidate.Candidate, orientation mode.Orientation) []Group {
	if len(cands) == 0 {
		return nil
	}
	ordered := append([]candidate.Candidate(nil), cands...)
	var predicate func(a, b candidate.Candidate) bool
	if orientation == mode.Horizontal {
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Rect.Y != ordered[j].Rect.Y {
				return ordered[i].Rect.Y < ordered[j].Rect.Y
			}
			return ordered[i].Rect.X < ordered[j].Rect.X
		})
		predicate = sameLineOrStacked
	} else {
		sort.SliceStable(ordered, func(i, j int) bool {
			if ordered[i].Rect.X != ordered[j].Rect.X {
				return ordered[i].Rect.X > ordered[j].Rect.X
			}
			return ordered[i].Rect.Y < ordered[j].Rect.Y
		})
		predicate = sameColumn
	}

	ds := newDisjointSet(len(ordered))
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if predicate(ordered[i], ordered[j]) {
				ds.union(i, j)
			}
		}
	}

	groupIndex := make(map[int]int)
	var groups []Group
	for i, c := range ordered {
		root := ds.find(i)
		gi, ok := groupIndex[root]
		if !ok {
			gi = len(groups)
			groupIndex[root] = gi
			groups = append(groups, Group{})
		}
		groups[gi].Members = append(groups[gi].Members, c)
	}
	return groups
}

// sameLineOrStacked implements spec §4.4's horizontal predicate: same text
// line, or a nametag stacked directly over its dialogue box.
func sameLineOrStacked(a, b candidate.Candidate) bool {
	maxH := float64(max(a.Rect.H, b.Rect.H))

	centerA := a.Rect.Center()
	centerB := b.Rect.Center()
	vDist := math.Abs(centerA.Y - centerB.Y)
	hGap := float64(geometry.GapX(a.Rect, b.Rect))
	vGap := float64(geometry.GapY(a.Rect, b.Rect))
	xLeftDiff := math.Abs(float64(a.Rect.X - b.Rect.X))

	sameLine := vDist < 0.5*maxH && hGap < 2.5*maxH
	stacked := vGap < 2*maxH && (xLeftDiff < 1.5*maxH || hGap < 1.5*maxH)
	return sameLine || stacked
}

// sameColumn implements spec §4.4's vertical predicate.
func sameColumn(a, b candidate.Candidate) bool {
	maxW := float64(max(a.Rect.W, b.Rect.W))

	centerA := a.Rect.Center()
	centerB := b.Rect.Center()
	hDist := math.Abs(centerA.X - centerB.X)
	vGap := float64(geometry.GapY(a.Rect, b.Rect))

	return hDist < 0.5*maxW && vGap < 2.5*maxW
}

// disjointSet is a standard union-find over int indices with union by rank
// and path compression.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent, rank: make([]int, n)}
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	switch {
	case d.rank[ra] < d.rank[rb]:
		d.parent[ra] = rb
	case d.rank[ra] > d.rank[rb]:
		d.parent[rb] = ra
	default:
		d.parent[rb] = ra
		d.rank[ra]++
	}
}
