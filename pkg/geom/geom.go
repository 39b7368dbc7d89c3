// Package geom provides the integer geometry shared by the placement
// packages: grid points, axis-aligned rectangles and bounding boxes.
//
// All coordinates live on an unbounded integer grid. A [Rect] is described
// by its lower-left origin plus a width and height; its interior is the
// half-open region [X, X+W) x [Y, Y+H), so rectangles that only share an
// edge do not overlap.
package geom

import "fmt"

// Point is a position on the integer grid.
type Point struct {
	X, Y int
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// String formats p as "(x,y)".
func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Manhattan returns the L1 distance between p and q.
func Manhattan(p, q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

// Rect is an axis-aligned rectangle anchored at its lower-left corner.
type Rect struct {
	X, Y int
	W, H int
}

// RectAt returns a w x h rectangle with its origin at p.
func RectAt(p Point, w, h int) Rect { return Rect{X: p.X, Y: p.Y, W: w, H: h} }

// Origin returns the lower-left corner.
func (r Rect) Origin() Point { return Point{r.X, r.Y} }

// Right returns the x coordinate one past the rectangle's right edge.
func (r Rect) Right() int { return r.X + r.W }

// Top returns the y coordinate one past the rectangle's top edge.
func (r Rect) Top() int { return r.Y + r.H }

// Area returns W*H.
func (r Rect) Area() int { return r.W * r.H }

// Overlaps reports whether r and o share positive area.
// Rectangles that touch along an edge or at a corner do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X+r.W > o.X && r.X < o.X+o.W &&
		r.Y+r.H > o.Y && r.Y < o.Y+o.H
}

// String formats r as "WxH@(x,y)".
func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", r.W, r.H, r.X, r.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
