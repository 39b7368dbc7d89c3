package geom

// Bounds accumulates the bounding box of a set of points and rectangles.
// The zero value is an empty box; Expand and ExpandRect grow it.
type Bounds struct {
	Min, Max Point
	nonEmpty bool
}

// Expand grows b to contain p.
func (b *Bounds) Expand(p Point) {
	if !b.nonEmpty {
		b.Min, b.Max, b.nonEmpty = p, p, true
		return
	}
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
}

// ExpandRect grows b to contain the full extent of r.
func (b *Bounds) ExpandRect(r Rect) {
	b.Expand(r.Origin())
	b.Expand(Point{r.Right(), r.Top()})
}

// Empty reports whether nothing has been added.
func (b Bounds) Empty() bool { return !b.nonEmpty }

// Width returns Max.X-Min.X, or 0 for an empty box.
func (b Bounds) Width() int { return b.Max.X - b.Min.X }

// Height returns Max.Y-Min.Y, or 0 for an empty box.
func (b Bounds) Height() int { return b.Max.Y - b.Min.Y }

// Semiperimeter returns half the perimeter of the box, the HPWL of the
// accumulated points.
func (b Bounds) Semiperimeter() int { return b.Width() + b.Height() }
