package place

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/geom"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/overlap"
	"github.com/matzehuels/cellplace/pkg/wirelength"
)

// Placement is the result of a successful run.
type Placement struct {
	// Order lists cell ids in commit order.
	Order []int
	// Positions holds the committed origin of every cell.
	Positions *wirelength.Positions
	// Mode is the wire-length mode used for scoring.
	Mode wirelength.Mode
	// Rounds counts candidate rounds (one per cell after the first).
	Rounds int
	// Evaluations counts scored, overlap-free combinations.
	Evaluations int
	// Rejected counts combinations discarded for overlapping.
	Rejected int
}

// Position returns the committed origin of cell id.
func (p *Placement) Position(id int) (geom.Point, bool) {
	return p.Positions.Position(id)
}

// WireLength returns the one-hop HPWL of the final placement.
func (p *Placement) WireLength(nl *netlist.Netlist) int {
	return wirelength.Total(nl, p.Order, p.Positions)
}

// Round describes one committed cell, as reported to Options.Progress.
type Round struct {
	Number    int
	Cell      int
	Name      string
	At        geom.Point
	Key       Key
	Score     int
	Placed    int
	Remaining int
}

// ExhaustedError reports a round in which no candidate had a legal position.
type ExhaustedError struct {
	Round     int
	Remaining []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("round %d: no legal position for any of %d remaining cells: %s",
		e.Round, len(e.Remaining), strings.Join(e.Remaining, ", "))
}

// Place runs greedy placement over nl.
func Place(ctx context.Context, nl *netlist.Netlist, opts Options) (*Placement, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidOptions, err, "placement options")
	}
	if nl.Len() == 0 {
		return nil, errs.New(errs.ErrCodeEmptyNetlist, "netlist has no cells")
	}

	idx, err := opts.index()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidOptions, err, "overlap index")
	}

	e := &engine{
		nl:   nl,
		opts: opts,
		idx:  idx,
		pos:  wirelength.NewPositions(nl.Len()),
		log:  opts.Logger,
		out: &Placement{
			Order: make([]int, 0, nl.Len()),
			Mode:  opts.ResolveMode(nl.Len(), nl.Wires),
		},
	}
	e.out.Positions = e.pos

	if err := e.run(ctx); err != nil {
		return nil, err
	}
	e.log.Info("placement complete",
		"cells", nl.Len(),
		"rounds", e.out.Rounds,
		"evaluations", e.out.Evaluations,
		"rejected", e.out.Rejected,
		"mode", e.out.Mode)
	return e.out, nil
}

func (o Options) index() (overlap.Index, error) {
	if o.newIndex != nil {
		return o.newIndex(), nil
	}
	return overlap.New(o.Index, o.GridCell)
}

// Order returns cell ids sorted by descending degree, ties in definition
// order.
func Order(nl *netlist.Netlist) []int {
	ids := make([]int, nl.Len())
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(nl.Degree(b), nl.Degree(a))
	})
	return ids
}

// =============================================================================
// Engine
// =============================================================================

type engine struct {
	nl         *netlist.Netlist
	opts       Options
	idx        overlap.Index
	pos        *wirelength.Positions
	workspaces []*wirelength.Workspace // Full mode only, grown by score
	log        *log.Logger
	out        *Placement
}

func (e *engine) run(ctx context.Context) error {
	remaining := Order(e.nl)
	first := remaining[0]
	remaining = remaining[1:]
	e.commit(first, geom.Point{})
	e.log.Debug("seed", "cell", e.nl.Cells[first].Name, "mode", e.out.Mode, "cells", e.nl.Len())
	e.report(Round{Cell: first, Name: e.nl.Cells[first].Name, Placed: 1, Remaining: len(remaining)})

	for len(remaining) > 0 {
		if err := e.checkContext(ctx); err != nil {
			return err
		}
		if e.opts.MaxRounds > 0 && e.out.Rounds >= e.opts.MaxRounds {
			return errs.New(errs.ErrCodeTimeout, "round budget of %d spent with %d cells unplaced", e.opts.MaxRounds, len(remaining))
		}
		e.out.Rounds++

		k := min(e.opts.Candidates, len(remaining))
		best, ok, err := e.score(ctx, remaining[:k])
		if err != nil {
			return e.contextError(err)
		}
		if !ok && e.opts.Exhaustion == ExhaustExpand && k < len(remaining) {
			e.log.Warn("no legal position among top candidates, expanding", "round", e.out.Rounds, "remaining", len(remaining))
			best, ok, err = e.score(ctx, remaining)
			if err != nil {
				return e.contextError(err)
			}
		}
		if !ok {
			return e.exhausted(remaining)
		}

		e.commit(best.cell, best.at)
		remaining = slices.Delete(remaining, best.key.Candidate, best.key.Candidate+1)

		e.log.Debug("commit",
			"round", e.out.Rounds,
			"cell", e.nl.Cells[best.cell].Name,
			"at", best.at,
			"dir", best.key.Direction,
			"score", best.score)
		e.report(Round{
			Number:    e.out.Rounds,
			Cell:      best.cell,
			Name:      e.nl.Cells[best.cell].Name,
			At:        best.at,
			Key:       best.key,
			Score:     best.score,
			Placed:    len(e.out.Order),
			Remaining: len(remaining),
		})
	}
	return nil
}

func (e *engine) commit(id int, at geom.Point) {
	e.pos.Set(id, at)
	e.idx.Insert(id, e.nl.Cells[id].Rect(at))
	e.out.Order = append(e.out.Order, id)
}

func (e *engine) report(r Round) {
	if e.opts.Progress != nil {
		e.opts.Progress(r)
	}
}

func (e *engine) exhausted(remaining []int) error {
	names := make([]string, len(remaining))
	for i, id := range remaining {
		names[i] = e.nl.Cells[id].Name
	}
	cause := &ExhaustedError{Round: e.out.Rounds, Remaining: names}
	return errs.Wrap(errs.ErrCodeExhausted, cause, "placement stopped with %d cells unplaced", len(names))
}

func (e *engine) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return e.contextError(err)
	}
	return nil
}

func (e *engine) contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ErrCodeTimeout, err, "placement timed out in round %d", e.out.Rounds)
	}
	return fmt.Errorf("placement interrupted in round %d: %w", e.out.Rounds, err)
}
