package place

import "github.com/matzehuels/cellplace/pkg/geom"

// Direction is a position relative to an anchor cell.
type Direction int

const (
	Right Direction = iota
	Above
	Below
	Left

	numDirections = 4
)

var directionNames = [numDirections]string{"right", "above", "below", "left"}

// String returns the lowercase direction name.
func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return "unknown"
	}
	return directionNames[d]
}

// Offset returns the origin for a w x h candidate placed in direction d of
// anchor.
func (d Direction) Offset(anchor geom.Rect, w, h int) geom.Point {
	switch d {
	case Right:
		return geom.Point{X: anchor.Right(), Y: anchor.Y}
	case Above:
		return geom.Point{X: anchor.X, Y: anchor.Top()}
	case Below:
		return geom.Point{X: anchor.X, Y: anchor.Y - h}
	default:
		return geom.Point{X: anchor.X - w, Y: anchor.Y}
	}
}

// Key identifies one (candidate, anchor, direction) combination of a round.
// Candidate and Anchor are ranks: positions in the remaining list and in
// commit order respectively.
type Key struct {
	Candidate int
	Anchor    int
	Direction Direction
}

// Less orders keys the way a nested candidate/anchor/direction loop visits
// them.
func (k Key) Less(o Key) bool {
	if k.Candidate != o.Candidate {
		return k.Candidate < o.Candidate
	}
	if k.Anchor != o.Anchor {
		return k.Anchor < o.Anchor
	}
	return k.Direction < o.Direction
}

// keyAt decodes a flat combination index for a round with the given number
// of anchors.
func keyAt(flat, anchors int) Key {
	d := flat % numDirections
	rest := flat / numDirections
	return Key{Candidate: rest / anchors, Anchor: rest % anchors, Direction: Direction(d)}
}

// choice is a scored, legal combination.
type choice struct {
	key   Key
	cell  int
	at    geom.Point
	score int
}

// better reports whether c beats o: lower score, then lower key.
func (c choice) better(o choice) bool {
	if c.score != o.score {
		return c.score < o.score
	}
	return c.key.Less(o.key)
}
