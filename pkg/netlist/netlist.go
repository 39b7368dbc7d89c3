package netlist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matzehuels/cellplace/pkg/geom"
)

var (
	// ErrDuplicateCell is returned by [Netlist.AddCell] when a cell with the
	// same name already exists.
	ErrDuplicateCell = errors.New("duplicate cell")

	// ErrInvalidSize is returned by [Netlist.AddCell] when width or height is
	// not positive.
	ErrInvalidSize = errors.New("cell dimensions must be positive")

	// ErrPinsDefined is returned by [Netlist.SetPins] when the cell already
	// has a pin list.
	ErrPinsDefined = errors.New("pins already defined")

	// ErrUnknownCell is returned when a statement names an undefined cell.
	ErrUnknownCell = errors.New("unknown cell")

	// ErrUnknownPin is returned when a statement names a pin the cell does
	// not define.
	ErrUnknownPin = errors.New("unknown pin")

	// ErrBrokenConnection is returned by [Netlist.Validate] when connection
	// records are not mirrored or point at missing pins.
	ErrBrokenConnection = errors.New("broken connection")
)

// PinPrefix is the prefix of generated pin names: pins are named p1, p2, ...
// in the order their offsets appear.
const PinPrefix = "p"

// Pin is a named connection point at a fixed offset from its cell's origin.
type Pin struct {
	Name   string
	Offset geom.Point
	// Conns indexes the owning cell's Connections whose Local pin is this pin.
	Conns []int
}

// Connection is one endpoint's view of a wire.
type Connection struct {
	Peer   int // peer cell id
	Local  int // pin index on the owning cell
	Remote int // pin index on the peer cell
}

// Cell is a rectangular placement unit.
type Cell struct {
	ID            int
	Name          string
	Width, Height int
	Pins          []Pin
	Connections   []Connection

	pinsSet bool
}

// Degree returns the number of connection records on c.
func (c *Cell) Degree() int { return len(c.Connections) }

// Rect returns the rectangle c occupies with its origin at p.
func (c *Cell) Rect(p geom.Point) geom.Rect { return geom.RectAt(p, c.Width, c.Height) }

// Pin returns the index of the named pin.
func (c *Cell) Pin(name string) (int, bool) {
	for i := range c.Pins {
		if c.Pins[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// PinRef names one pin of one cell, as written in wire statements.
type PinRef struct {
	Cell string
	Pin  string
}

// ParsePinRef splits "cell.pin" into its parts.
func ParsePinRef(s string) (PinRef, error) {
	cell, pin, ok := strings.Cut(s, ".")
	if !ok || cell == "" || pin == "" || strings.Contains(pin, ".") {
		return PinRef{}, fmt.Errorf("invalid pin reference %q (want cell.pin)", s)
	}
	return PinRef{Cell: cell, Pin: pin}, nil
}

// String formats r as "cell.pin".
func (r PinRef) String() string { return r.Cell + "." + r.Pin }

// Netlist is the arena of all cells plus the global wire counter.
//
// The zero value is not usable; create one with [New].
type Netlist struct {
	Cells []*Cell
	// Wires counts wire statements. It feeds the evaluator mode threshold.
	Wires int

	byName map[string]int
}

// New creates an empty netlist.
func New() *Netlist {
	return &Netlist{byName: make(map[string]int)}
}

// Len returns the number of cells.
func (n *Netlist) Len() int { return len(n.Cells) }

// Cell returns the cell with the given id.
func (n *Netlist) Cell(id int) *Cell { return n.Cells[id] }

// Lookup returns the cell with the given name.
func (n *Netlist) Lookup(name string) (*Cell, bool) {
	id, ok := n.byName[name]
	if !ok {
		return nil, false
	}
	return n.Cells[id], true
}

// Degree returns the number of connection records on cell id.
func (n *Netlist) Degree(id int) int { return len(n.Cells[id].Connections) }

// PinCount returns the total number of pins over all cells.
func (n *Netlist) PinCount() int {
	total := 0
	for _, c := range n.Cells {
		total += len(c.Pins)
	}
	return total
}

// AddCell defines a new cell and assigns it the next id.
func (n *Netlist) AddCell(name string, width, height int) (*Cell, error) {
	if _, exists := n.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCell, name)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrInvalidSize, name, width, height)
	}
	c := &Cell{ID: len(n.Cells), Name: name, Width: width, Height: height}
	n.Cells = append(n.Cells, c)
	n.byName[name] = c.ID
	return c, nil
}

// SetPins assigns pins p1..pN with the given offsets to the named cell.
// A cell's pin list can be set once.
func (n *Netlist) SetPins(cell string, offsets []geom.Point) error {
	c, ok := n.Lookup(cell)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCell, cell)
	}
	if c.pinsSet {
		return fmt.Errorf("%w: %s", ErrPinsDefined, cell)
	}
	c.Pins = make([]Pin, len(offsets))
	for i, off := range offsets {
		c.Pins[i] = Pin{Name: fmt.Sprintf("%s%d", PinPrefix, i+1), Offset: off}
	}
	c.pinsSet = true
	return nil
}

// Connect records one wire between two pins and bumps the wire counter.
func (n *Netlist) Connect(a, b PinRef) error {
	ca, pa, err := n.resolve(a)
	if err != nil {
		return err
	}
	cb, pb, err := n.resolve(b)
	if err != nil {
		return err
	}
	n.link(ca, pa, cb, pb)
	n.link(cb, pb, ca, pa)
	n.Wires++
	return nil
}

func (n *Netlist) resolve(r PinRef) (*Cell, int, error) {
	c, ok := n.Lookup(r.Cell)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownCell, r.Cell)
	}
	p, ok := c.Pin(r.Pin)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownPin, r)
	}
	return c, p, nil
}

func (n *Netlist) link(c *Cell, local int, peer *Cell, remote int) {
	c.Connections = append(c.Connections, Connection{Peer: peer.ID, Local: local, Remote: remote})
	c.Pins[local].Conns = append(c.Pins[local].Conns, len(c.Connections)-1)
}

// Validate checks the connection invariant: every record references
// existing pins on both ends and has a mirror record on the peer.
func (n *Netlist) Validate() error {
	for _, c := range n.Cells {
		for i, conn := range c.Connections {
			if conn.Peer < 0 || conn.Peer >= len(n.Cells) {
				return fmt.Errorf("%w: %s record %d has peer %d", ErrBrokenConnection, c.Name, i, conn.Peer)
			}
			peer := n.Cells[conn.Peer]
			if conn.Local >= len(c.Pins) || conn.Remote >= len(peer.Pins) {
				return fmt.Errorf("%w: %s record %d references a missing pin", ErrBrokenConnection, c.Name, i)
			}
			if !hasMirror(peer, c.ID, conn) {
				return fmt.Errorf("%w: %s record %d has no mirror on %s", ErrBrokenConnection, c.Name, i, peer.Name)
			}
		}
	}
	return nil
}

func hasMirror(peer *Cell, owner int, conn Connection) bool {
	for _, m := range peer.Connections {
		if m.Peer == owner && m.Local == conn.Remote && m.Remote == conn.Local {
			return true
		}
	}
	return false
}
