// Package place implements the greedy sequential placement engine.
//
// # Algorithm
//
// Cells are ordered by descending degree (stable, so ties keep definition
// order). The first cell is committed at the origin. Every following round:
//
//  1. takes the first [Options.Candidates] cells of the remaining list,
//  2. tries each candidate against every placed anchor, in commit order,
//     at four positions: right of, above, below and left of the anchor,
//  3. rejects positions whose rectangle overlaps a placed cell,
//  4. scores the rest with the active [wirelength.Mode],
//  5. commits the lowest-scoring (candidate, position) pair.
//
// The winner of a round is the minimum of (score, [Key]) where Key orders
// combinations by candidate rank, then anchor rank, then direction. This is
// the order a nested sequential loop visits them in, so the first
// combination evaluated wins exact ties. Because the key is explicit, the
// parallel scorer ([Options.Workers] > 1) reduces per-worker results to
// exactly the same winner.
//
// # Exhaustion
//
// A round in which no candidate has a legal position is reported as an
// [ExhaustedError] listing the unplaced cells. With [ExhaustExpand] the
// round is first retried with every remaining cell as a candidate. For cells
// with positive dimensions the "right of the rightmost anchor" position is
// always free, so exhaustion signals corrupted input rather than a crowded
// layout.
//
// # Cancellation
//
// Place checks its context between rounds and inside parallel scoring. A
// deadline surfaces as a TIMEOUT error carrying the round reached.
package place
