// Package wirelength scores placements by interconnect length.
//
// # Modes
//
// [Full] computes a half-perimeter wire length (HPWL) over the whole placed
// set. Every pin of every placed cell is visited once, in placement order.
// For a pin that has not been visited yet, the bounding box of the pin and
// of its one-hop peers that have not been visited either is taken, and its
// semiperimeter is added to the total. The box is built over the pairwise
// wire graph; multi-pin nets are never reconstructed.
//
// [Incremental] scores a single candidate cell: it sums the Manhattan
// distance between each of the candidate's pins and the peer pin of every
// connection whose peer is already placed. Its magnitude is not comparable
// to Full; it only ranks alternative positions of the same cell within one
// placement round.
//
// [SelectMode] picks the mode once per run: Full while
// cells*wires < threshold, Incremental above it.
//
// # Positions
//
// Both modes read positions through a [View], which only reports cells that
// are placed. A pin on an unplaced cell is never read. Candidate positions
// are layered on top of the committed state with [With], so scoring never
// mutates the committed positions.
//
// # Workspaces
//
// Full needs a visited set over all pins. A [Workspace] keeps that buffer
// between calls; it is not safe for concurrent use, so each goroutine
// scoring in parallel owns one.
package wirelength
