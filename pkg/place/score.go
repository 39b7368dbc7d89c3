package place

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cellplace/pkg/geom"
	"github.com/matzehuels/cellplace/pkg/wirelength"
)

// minParallelUnits is the smallest round worth fanning out.
const minParallelUnits = 64

// tally is the outcome of scoring a contiguous range of combinations.
type tally struct {
	best      choice
	found     bool
	evaluated int
	rejected  int
}

func (t *tally) offer(c choice) {
	if !t.found || c.better(t.best) {
		t.best = c
		t.found = true
	}
}

// merge folds o into t. Tallies must be merged in range order.
func (t *tally) merge(o tally) {
	t.evaluated += o.evaluated
	t.rejected += o.rejected
	if o.found {
		t.offer(o.best)
	}
}

// score evaluates every (candidate, anchor, direction) combination for cands
// and returns the winner.
func (e *engine) score(ctx context.Context, cands []int) (choice, bool, error) {
	anchors := e.out.Order
	units := len(cands) * len(anchors) * numDirections

	workers := min(e.opts.Workers, units/minParallelUnits)
	e.growWorkspaces(max(workers, 1))
	var total tally
	if workers <= 1 {
		total = e.scoreRange(e.workspace(0), cands, anchors, 0, units)
	} else {
		parts := make([]tally, workers)
		g, gctx := errgroup.WithContext(ctx)
		chunk := (units + workers - 1) / workers
		for w := range workers {
			lo, hi := w*chunk, min((w+1)*chunk, units)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				parts[w] = e.scoreRange(e.workspace(w), cands, anchors, lo, hi)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return choice{}, false, err
		}
		for _, p := range parts {
			total.merge(p)
		}
	}

	e.out.Evaluations += total.evaluated
	e.out.Rejected += total.rejected
	return total.best, total.found, nil
}

// growWorkspaces makes sure n Full-mode workspaces exist. It runs before
// fanning out, so workers never allocate or touch the slice header.
func (e *engine) growWorkspaces(n int) {
	if e.out.Mode != wirelength.ModeFull {
		return
	}
	for len(e.workspaces) < n {
		e.workspaces = append(e.workspaces, wirelength.NewWorkspace(e.nl))
	}
}

func (e *engine) workspace(w int) *wirelength.Workspace {
	if e.workspaces == nil {
		return nil
	}
	return e.workspaces[w]
}

// scoreRange scores the flat combination indices [lo, hi). It only reads
// shared engine state.
func (e *engine) scoreRange(ws *wirelength.Workspace, cands, anchors []int, lo, hi int) tally {
	var t tally
	for flat := lo; flat < hi; flat++ {
		key := keyAt(flat, len(anchors))
		id := cands[key.Candidate]
		cell := e.nl.Cells[id]
		anchor := anchors[key.Anchor]
		at := key.Direction.Offset(e.nl.Cells[anchor].Rect(e.pos.At[anchor]), cell.Width, cell.Height)
		if e.idx.Overlaps(cell.Rect(at)) {
			t.rejected++
			continue
		}
		t.evaluated++
		t.offer(choice{key: key, cell: id, at: at, score: e.evaluate(ws, id, at)})
	}
	return t
}

func (e *engine) evaluate(ws *wirelength.Workspace, id int, at geom.Point) int {
	if e.out.Mode == wirelength.ModeIncremental {
		return wirelength.Incremental(e.nl, id, at, e.pos)
	}
	return wirelength.Full(ws, e.nl, ws.Order(e.out.Order, id), wirelength.With(e.pos, id, at))
}
