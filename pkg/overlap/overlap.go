// Package overlap answers "does this rectangle overlap anything already
// placed?" for the placement engine.
//
// Two implementations share the [Index] interface:
//
//   - [Linear] scans every placed rectangle. O(P) per query, no setup cost;
//     this is the hotspot of the engine on large netlists.
//   - [Grid] buckets rectangles into a uniform grid keyed by their extents,
//     so a query only inspects rectangles in the buckets it touches.
//
// Both use the strict test of [geom.Rect.Overlaps]: edge contact is not an
// overlap. Queries are read-only and may run concurrently as long as no
// Insert happens at the same time.
package overlap

import (
	"fmt"

	"github.com/matzehuels/cellplace/pkg/geom"
)

// Index tracks placed rectangles.
type Index interface {
	// Insert records that cell id occupies r.
	Insert(id int, r geom.Rect)
	// Overlaps reports whether r overlaps any inserted rectangle.
	Overlaps(r geom.Rect) bool
	// Len returns the number of inserted rectangles.
	Len() int
}

// Kind selects an Index implementation.
type Kind string

const (
	KindLinear Kind = "linear"
	KindGrid   Kind = "grid"
)

// DefaultGridCell is the bucket edge length used when none is configured.
const DefaultGridCell = 16

// ParseKind validates an index name from flags or configuration.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLinear, KindGrid:
		return Kind(s), nil
	case "":
		return KindLinear, nil
	}
	return "", fmt.Errorf("invalid overlap index %q (must be one of: linear, grid)", s)
}

// New builds an empty index of the given kind. gridCell is only used by
// KindGrid; values <= 0 select DefaultGridCell.
func New(kind Kind, gridCell int) (Index, error) {
	switch kind {
	case KindLinear, "":
		return NewLinear(), nil
	case KindGrid:
		return NewGrid(gridCell), nil
	}
	return nil, fmt.Errorf("invalid overlap index %q", kind)
}

// =============================================================================
// Linear
// =============================================================================

// Linear is the brute-force index.
type Linear struct {
	rects []geom.Rect
}

// NewLinear creates an empty linear index.
func NewLinear() *Linear { return &Linear{} }

// Insert implements Index.
func (l *Linear) Insert(_ int, r geom.Rect) { l.rects = append(l.rects, r) }

// Overlaps implements Index.
func (l *Linear) Overlaps(r geom.Rect) bool {
	for _, o := range l.rects {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// Len implements Index.
func (l *Linear) Len() int { return len(l.rects) }

var _ Index = (*Linear)(nil)
