package wirelength

import (
	"fmt"

	"github.com/matzehuels/cellplace/pkg/geom"
	"github.com/matzehuels/cellplace/pkg/netlist"
)

// DefaultThreshold is the cells*wires product at which scoring switches from
// Full to Incremental.
const DefaultThreshold = 250 * 3000

// Mode is a scoring policy.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// ParseMode validates a mode name. The empty string is not a mode; callers
// that support automatic selection handle it before calling ParseMode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeIncremental:
		return Mode(s), nil
	}
	return "", fmt.Errorf("invalid wire-length mode %q (must be one of: full, incremental)", s)
}

// SelectMode applies the size policy: Full when cells*wires is below
// threshold, Incremental otherwise.
func SelectMode(cells, wires, threshold int) Mode {
	if cells*wires < threshold {
		return ModeFull
	}
	return ModeIncremental
}

// =============================================================================
// Views
// =============================================================================

// View reports the origin of placed cells.
type View interface {
	// Position returns the origin of cell id and whether it is placed.
	Position(id int) (geom.Point, bool)
}

// Positions is a dense, id-indexed View.
type Positions struct {
	At     []geom.Point
	Placed []bool
}

// NewPositions creates a View for n cells with nothing placed.
func NewPositions(n int) *Positions {
	return &Positions{At: make([]geom.Point, n), Placed: make([]bool, n)}
}

// Position implements View.
func (p *Positions) Position(id int) (geom.Point, bool) {
	if !p.Placed[id] {
		return geom.Point{}, false
	}
	return p.At[id], true
}

// Set places cell id at origin at.
func (p *Positions) Set(id int, at geom.Point) {
	p.At[id] = at
	p.Placed[id] = true
}

type overlay struct {
	base View
	id   int
	at   geom.Point
}

func (o overlay) Position(id int) (geom.Point, bool) {
	if id == o.id {
		return o.at, true
	}
	return o.base.Position(id)
}

// With returns a View in which cell id is tentatively placed at at, on top
// of base. base is not modified.
func With(base View, id int, at geom.Point) View {
	return overlay{base: base, id: id, at: at}
}

// =============================================================================
// Workspace
// =============================================================================

// Workspace holds reusable per-evaluation buffers for [Full].
type Workspace struct {
	base    []int  // cell id -> first pin slot
	visited []bool // pin slot -> visited
	touched []int  // slots set during the current evaluation
	order   []int  // scratch for callers building an evaluation order
}

// NewWorkspace sizes a workspace for nl.
func NewWorkspace(nl *netlist.Netlist) *Workspace {
	ws := &Workspace{base: make([]int, nl.Len())}
	slots := 0
	for i, c := range nl.Cells {
		ws.base[i] = slots
		slots += len(c.Pins)
	}
	ws.visited = make([]bool, slots)
	return ws
}

// Order returns a scratch slice holding placed followed by extra. The slice
// is owned by the workspace and overwritten by the next call.
func (ws *Workspace) Order(placed []int, extra ...int) []int {
	ws.order = append(append(ws.order[:0], placed...), extra...)
	return ws.order
}

func (ws *Workspace) slot(cell, pin int) int { return ws.base[cell] + pin }

func (ws *Workspace) mark(slot int) {
	ws.visited[slot] = true
	ws.touched = append(ws.touched, slot)
}

func (ws *Workspace) reset() {
	for _, s := range ws.touched {
		ws.visited[s] = false
	}
	ws.touched = ws.touched[:0]
}

// =============================================================================
// Scoring
// =============================================================================

// Full returns the one-hop HPWL of the cells in order, read through v.
// Cells in order that v does not report as placed are skipped.
func Full(ws *Workspace, nl *netlist.Netlist, order []int, v View) int {
	ws.reset()
	total := 0
	for _, id := range order {
		c := nl.Cells[id]
		at, ok := v.Position(id)
		if !ok {
			continue
		}
		for p := range c.Pins {
			s := ws.slot(id, p)
			if ws.visited[s] {
				continue
			}
			var box geom.Bounds
			box.Expand(at.Add(c.Pins[p].Offset))
			for _, ci := range c.Pins[p].Conns {
				conn := c.Connections[ci]
				if ws.visited[ws.slot(conn.Peer, conn.Remote)] {
					continue
				}
				peerAt, ok := v.Position(conn.Peer)
				if !ok {
					continue
				}
				box.Expand(peerAt.Add(nl.Cells[conn.Peer].Pins[conn.Remote].Offset))
			}
			total += box.Semiperimeter()
			ws.mark(s)
		}
	}
	return total
}

// Incremental returns the summed Manhattan distance from cell id, placed at
// at, to every already-placed peer pin. Connections to unplaced cells are
// ignored. A connection from id to itself is measured at at.
func Incremental(nl *netlist.Netlist, id int, at geom.Point, v View) int {
	c := nl.Cells[id]
	total := 0
	for _, conn := range c.Connections {
		peerAt := at
		if conn.Peer != id {
			var ok bool
			if peerAt, ok = v.Position(conn.Peer); !ok {
				continue
			}
		}
		from := at.Add(c.Pins[conn.Local].Offset)
		to := peerAt.Add(nl.Cells[conn.Peer].Pins[conn.Remote].Offset)
		total += geom.Manhattan(from, to)
	}
	return total
}

// Total is a convenience for reporting: the Full score of order under v
// using a throwaway workspace.
func Total(nl *netlist.Netlist, order []int, v View) int {
	return Full(NewWorkspace(nl), nl, order, v)
}
