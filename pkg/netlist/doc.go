// Package netlist models the cells, pins and pin-to-pin connections that the
// placement engine positions.
//
// # Overview
//
// A [Netlist] is an arena of [Cell] records addressed by dense integer ids:
// a cell's id is its index in [Netlist.Cells], assigned in definition order.
// Names are only used at the parser boundary ([Netlist.Lookup]); everything
// downstream works with ids and pin indices.
//
// Each cell carries its pins (fixed offsets relative to the cell origin) and
// a list of [Connection] records. Connections are stored symmetrically: a
// wire between pin p of cell A and pin q of cell B produces one record on A
// and the mirror record on B. A cell's degree is the number of records it
// carries.
//
// # Text Format
//
// [Parse] reads the line-oriented input format:
//
//	g1 4 2              cell g1, width 4, height 2
//	pins g1 0 0 4 1     pins p1=(0,0), p2=(4,1) on g1
//	wire g1.p2 g2.p1    one connection between two pins
//
// Blank lines and lines starting with '#' are ignored. Malformed lines fail
// with a PARSE_ERROR; references to undefined cells or pins fail with a
// REFERENCE_ERROR. Both carry the 1-based line number.
//
// # Example
//
//	nl, err := netlist.ParseFile("input.txt")
//	if err != nil {
//	    return err
//	}
//	for _, c := range nl.Cells {
//	    fmt.Println(c.Name, nl.Degree(c.ID))
//	}
package netlist
