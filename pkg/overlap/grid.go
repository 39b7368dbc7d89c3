package overlap

import "github.com/matzehuels/cellplace/pkg/geom"

type bucket struct{ x, y int }

// Grid is a uniform-grid spatial hash. Each rectangle is registered in every
// bucket its extent touches; a query checks only the rectangles found in the
// buckets the query rectangle touches.
type Grid struct {
	cell    int
	rects   []geom.Rect
	buckets map[bucket][]int // bucket -> indices into rects
}

// NewGrid creates an empty grid index with the given bucket edge length.
func NewGrid(cell int) *Grid {
	if cell <= 0 {
		cell = DefaultGridCell
	}
	return &Grid{cell: cell, buckets: make(map[bucket][]int)}
}

// Insert implements Index.
func (g *Grid) Insert(_ int, r geom.Rect) {
	slot := len(g.rects)
	g.rects = append(g.rects, r)
	g.span(r, func(b bucket) bool {
		g.buckets[b] = append(g.buckets[b], slot)
		return true
	})
}

// Overlaps implements Index.
func (g *Grid) Overlaps(r geom.Rect) bool {
	hit := false
	g.span(r, func(b bucket) bool {
		for _, slot := range g.buckets[b] {
			if r.Overlaps(g.rects[slot]) {
				hit = true
				return false
			}
		}
		return true
	})
	return hit
}

// Len implements Index.
func (g *Grid) Len() int { return len(g.rects) }

// span calls fn for every bucket the interior of r touches, stopping early
// when fn returns false.
func (g *Grid) span(r geom.Rect, fn func(bucket) bool) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	x0, x1 := floorDiv(r.X, g.cell), floorDiv(r.Right()-1, g.cell)
	y0, y1 := floorDiv(r.Y, g.cell), floorDiv(r.Top()-1, g.cell)
	for bx := x0; bx <= x1; bx++ {
		for by := y0; by <= y1; by++ {
			if !fn(bucket{bx, by}) {
				return
			}
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

var _ Index = (*Grid)(nil)
