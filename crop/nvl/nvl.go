// Package nvl implements the NVL-mode paragraph clusterer, per spec §4.8:
// density-based clustering of candidate centers with a fixed radius and
// min_samples=1, which spec §9 notes reduces to single-linkage clustering —
// a grid-indexed flood fill on candidate centers suffices and avoids a
// clustering library dependency.
package nvl

import (
	"sort"

	"github.com/moonlit-ink/vncrop/crop/candidate"
	"github.com/moonlit-ink/vncrop/crop/geometry"
)

// Eps is the neighborhood radius, in ResizedFrame pixels, two candidate
// centers must fall within to join the same paragraph.
const Eps = 150

// cellSize buckets candidate centers into a grid so neighbor lookups only
// need to scan adjacent cells rather than every other candidate.
const cellSize = Eps

// Paragraph is an ordered set of candidates forming one density cluster,
// sorted by (y ascending, x ascending) per spec §4.8.
type Paragraph struct {
	Members []candidate.Candidate
}

// Bounds returns the union of every member's rectangle.
func (p Paragraph) Bounds() geometry.Rect {
	rects := make([]geometry.Rect, len(p.Members))
	for i, c := range p.Members {
		rects[i] = c.Rect
	}
	return geometry.UnionAll(rects)
}

type cellKey struct{ cx, cy int }

// Cluster partitions cands into paragraphs using a fixed-radius, min_samples=1
// density clustering (single-linkage with radius Eps). Every candidate ends
// up in exactly one paragraph; there is no noise label since min_samples=1
// admits isolated points as their own singleton paragraph. Paragraphs are
// returned sorted by their first member's y, per spec §4.8.
func Cluster(cands []candidate.Candidate) []Paragraph {
	if len(cands) == 0 {
		return nil
	}

	centers := make([]geometry.Point, len(cands))
	grid := make(map[cellKey][]int)
	for i, c := range cands {
		p := c.Rect.Center()
		centers[i] = p
		key := cellKey{int(p.X) / cellSize, int(p.Y) / cellSize}
		grid[key] = append(grid[key], i)
	}

	labels := make([]int, len(cands))
	for i := range labels {
		labels[i] = -1
	}

	label := 0
	for start := range cands {
		if labels[start] != -1 {
			continue
		}
		labels[start] = label
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := int(centers[cur].X)/cellSize, int(centers[cur].Y)/cellSize
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					for _, j := range grid[cellKey{cx + dx, cy + dy}] {
						if labels[j] != -1 {
							continue
						}
						if geometry.Distance(centers[cur], centers[j]) <= Eps {
							labels[j] = label
							queue = append(queue, j)
						}
					}
				}
			}
		}
		label++
	}

	byLabel := make([][]candidate.Candidate, label)
	for i, c := range cands {
		byLabel[labels[i]] = append(byLabel[labels[i]], c)
	}

	paragraphs := make([]Paragraph, 0, label)
	for _, members := range byLabel {
		sorted := append([]candidate.Candidate(nil), members...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Rect.Y != sorted[j].Rect.Y {
				return sorted[i].Rect.Y < sorted[j].Rect.Y
			}
			return sorted[i].Rect.X < sorted[j].Rect.X
		})
		paragraphs = append(paragraphs, Paragraph{Members: sorted})
	}

	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].Members[0].Rect.Y < paragraphs[j].Members[0].Rect.Y
	})
	return paragraphs
}
