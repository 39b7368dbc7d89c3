// Package layout turns a finished placement into the reported result:
// total wire length, bounding box, and per-cell coordinates shifted so the
// layout's lower-left corner sits at (0,0).
//
// A Layout has two serializations. The text form is the line-oriented
// result file:
//
//	Total Wire Length: 3
//	bounding_box 4 3
//	gB 0 0
//	gC 0 2
//	gA 2 0
//
// The JSON form carries the same data plus cell dimensions and the scoring
// mode, and is what the cache, the run store and the HTTP API exchange.
package layout

import (
	"fmt"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/geom"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/place"
)

// Layout is a normalized placement result.
type Layout struct {
	WireLength int          `json:"wire_length" bson:"wire_length"`
	Width      int          `json:"width" bson:"width"`
	Height     int          `json:"height" bson:"height"`
	Mode       string       `json:"mode,omitempty" bson:"mode,omitempty"`
	Cells      []PlacedCell `json:"cells" bson:"cells"`
}

// PlacedCell is one cell at its normalized origin. Width and Height are
// zero when the layout was read from a text file and not yet attached to a
// netlist.
type PlacedCell struct {
	Name   string `json:"name" bson:"name"`
	X      int    `json:"x" bson:"x"`
	Y      int    `json:"y" bson:"y"`
	Width  int    `json:"width,omitempty" bson:"width,omitempty"`
	Height int    `json:"height,omitempty" bson:"height,omitempty"`
}

// Rect returns the cell's rectangle in layout coordinates.
func (c PlacedCell) Rect() geom.Rect {
	return geom.Rect{X: c.X, Y: c.Y, W: c.Width, H: c.Height}
}

// BoundingBox returns (max(x+w) - min(x), max(y+h) - min(y)) over rects.
// An empty slice has a 0x0 box.
func BoundingBox(rects []geom.Rect) (width, height int) {
	var b geom.Bounds
	for _, r := range rects {
		b.ExpandRect(r)
	}
	return b.Width(), b.Height()
}

// Offset returns the minimum x and minimum y over rects, taken
// independently.
func Offset(rects []geom.Rect) geom.Point {
	var b geom.Bounds
	for _, r := range rects {
		b.Expand(r.Origin())
	}
	return b.Min
}

// FromPlacement builds the normalized layout of p. Cells are listed in
// commit order. The placement itself is not modified.
func FromPlacement(nl *netlist.Netlist, p *place.Placement) Layout {
	rects := make([]geom.Rect, len(p.Order))
	for i, id := range p.Order {
		at, _ := p.Position(id)
		rects[i] = nl.Cells[id].Rect(at)
	}
	w, h := BoundingBox(rects)
	shift := Offset(rects)

	cells := make([]PlacedCell, len(rects))
	for i, r := range rects {
		at := r.Origin().Sub(shift)
		cells[i] = PlacedCell{
			Name:   nl.Cells[p.Order[i]].Name,
			X:      at.X,
			Y:      at.Y,
			Width:  r.W,
			Height: r.H,
		}
	}
	return Layout{
		WireLength: p.WireLength(nl),
		Width:      w,
		Height:     h,
		Mode:       string(p.Mode),
		Cells:      cells,
	}
}

// Attach fills cell dimensions from nl. Every cell in the layout must exist
// in nl.
func (l *Layout) Attach(nl *netlist.Netlist) error {
	for i := range l.Cells {
		c, ok := nl.Lookup(l.Cells[i].Name)
		if !ok {
			return errs.New(errs.ErrCodeReference, "layout cell %q is not in the netlist", l.Cells[i].Name)
		}
		l.Cells[i].Width, l.Cells[i].Height = c.Width, c.Height
	}
	return nil
}

// Verify checks that coordinates are normalized and, when dimensions are
// known, that no two cells overlap and the stored box matches.
func (l Layout) Verify() error {
	if len(l.Cells) == 0 {
		return nil
	}
	minX, minY := l.Cells[0].X, l.Cells[0].Y
	sized := true
	for _, c := range l.Cells {
		if c.X < 0 || c.Y < 0 {
			return errs.New(errs.ErrCodeInvalidFormat, "cell %s at (%d,%d) has a negative coordinate", c.Name, c.X, c.Y)
		}
		minX, minY = min(minX, c.X), min(minY, c.Y)
		sized = sized && c.Width > 0 && c.Height > 0
	}
	if minX != 0 || minY != 0 {
		return errs.New(errs.ErrCodeInvalidFormat, "layout is not normalized: minimum corner is (%d,%d)", minX, minY)
	}
	if !sized {
		return nil
	}

	rects := make([]geom.Rect, len(l.Cells))
	for i, c := range l.Cells {
		rects[i] = c.Rect()
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				return errs.New(errs.ErrCodeInvalidFormat, "cells %s and %s overlap", l.Cells[i].Name, l.Cells[j].Name)
			}
		}
	}
	if w, h := BoundingBox(rects); w != l.Width || h != l.Height {
		return errs.New(errs.ErrCodeInvalidFormat, "bounding box is %dx%d, layout reports %dx%d", w, h, l.Width, l.Height)
	}
	return nil
}

// Area returns Width*Height.
func (l Layout) Area() int { return l.Width * l.Height }

// Utilization returns the fraction of the bounding box covered by cells,
// or 0 when dimensions are unknown.
func (l Layout) Utilization() float64 {
	if l.Area() == 0 {
		return 0
	}
	used := 0
	for _, c := range l.Cells {
		used += c.Width * c.Height
	}
	return float64(used) / float64(l.Area())
}

func (l Layout) String() string {
	return fmt.Sprintf("%d cells, %dx%d, wire length %d", len(l.Cells), l.Width, l.Height, l.WireLength)
}
