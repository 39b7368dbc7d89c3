package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellplace/pkg/buildinfo"
	"github.com/matzehuels/cellplace/pkg/cache"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/observability"
	"github.com/matzehuels/cellplace/pkg/place"
	"github.com/matzehuels/cellplace/pkg/store"
)

const (
	keyTypePlacement = "placement"
	keyTypeArtifact  = "artifact"
)

// Runner encapsulates pipeline execution with caching and run history.
// It holds no per-run state; one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	// TTL overrides cache.TTLPlacement for placement entries.
	TTL time.Duration
}

// NewRunner creates a runner. Nil arguments select NullCache,
// DefaultKeyer, NullStore and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if st == nil {
		st = store.NullStore{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// Execute parses src, places it (or loads the cached layout) and records
// the run.
func (r *Runner) Execute(ctx context.Context, src []byte, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{RunID: store.NewID(), InputHash: cache.Hash(src)}

	// Stage 1: Parse
	parseStart := time.Now()
	nl, err := r.Parse(ctx, src, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res.Netlist = nl
	res.Stats.Cells = nl.Len()
	res.Stats.Wires = nl.Wires
	res.Stats.ParseTime = time.Since(parseStart)

	r.Logger.Debug("parsed netlist",
		"cells", nl.Len(),
		"wires", nl.Wires,
		"pins", nl.PinCount(),
		"duration", res.Stats.ParseTime)

	// Stage 2: Place
	placeStart := time.Now()
	l, hit, err := r.placeWithCache(ctx, nl, res, opts)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	res.Layout = l
	res.CacheInfo.PlacementHit = hit
	res.Stats.PlaceTime = time.Since(placeStart)

	r.Logger.Info("placed cells",
		"cells", len(l.Cells),
		"wire_length", l.WireLength,
		"bbox", fmt.Sprintf("%dx%d", l.Width, l.Height),
		"cached", hit,
		"duration", res.Stats.PlaceTime)

	r.record(ctx, res, opts)
	return res, nil
}

// Parse reads a netlist, emitting observability events.
func (r *Runner) Parse(ctx context.Context, src []byte, source string) (*netlist.Netlist, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, source, len(src))
	start := time.Now()
	nl, err := netlist.Parse(bytes.NewReader(src))
	if err != nil {
		hooks.OnParseComplete(ctx, source, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnParseComplete(ctx, source, nl.Len(), nl.Wires, time.Since(start), nil)
	return nl, nil
}

func (r *Runner) placeWithCache(ctx context.Context, nl *netlist.Netlist, res *Result, opts Options) (layout.Layout, bool, error) {
	key := r.Keyer.PlacementKey(res.InputHash, opts.PlacementKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		} else if hit {
			if l, err := layout.Unmarshal(data); err == nil && len(l.Cells) == nl.Len() && l.Attach(nl) == nil {
				observability.Cache().OnCacheHit(ctx, keyTypePlacement)
				return l, true, nil
			}
			r.Logger.Debug("discarding unusable cache entry", "key", key)
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypePlacement)

	p, err := r.Place(ctx, nl, opts)
	if err != nil {
		return layout.Layout{}, false, err
	}
	res.Placement = p
	res.Stats.Rounds = p.Rounds
	res.Stats.Evaluations = p.Evaluations
	res.Stats.Rejected = p.Rejected

	l := layout.FromPlacement(nl, p)
	if data, err := layout.Marshal(l); err == nil {
		ttl := r.TTL
		if ttl <= 0 {
			ttl = cache.TTLPlacement
		}
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypePlacement, len(data))
		}
	}
	return l, false, nil
}

// Place runs the engine under the configured timeout.
func (r *Runner) Place(ctx context.Context, nl *netlist.Netlist, opts Options) (*place.Placement, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	hooks := observability.Pipeline()
	mode := opts.Engine.ResolveMode(nl.Len(), nl.Wires)
	hooks.OnPlaceStart(ctx, nl.Len(), string(mode))
	start := time.Now()

	p, err := place.Place(ctx, nl, opts.Engine)
	if err != nil {
		hooks.OnPlaceComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnPlaceComplete(ctx, p.Rounds, p.WireLength(nl), time.Since(start), nil)
	return p, nil
}

// record saves the run. Store failures are logged, not returned: the
// layout is already computed and the caller still gets it.
func (r *Runner) record(ctx context.Context, res *Result, opts Options) {
	run := &store.Run{
		ID:        res.RunID,
		CreatedAt: time.Now().UTC(),
		Source:    opts.Source,
		InputHash: res.InputHash,
		Settings: store.Settings{
			Candidates: opts.Engine.Candidates,
			Threshold:  opts.Engine.Threshold,
			Mode:       opts.Engine.Mode,
			Index:      string(opts.Engine.Index),
			Workers:    opts.Engine.Workers,
			Exhaustion: string(opts.Engine.Exhaustion),
		},
		Cells:       res.Stats.Cells,
		Wires:       res.Stats.Wires,
		Rounds:      res.Stats.Rounds,
		Evaluations: res.Stats.Evaluations,
		Duration:    res.Stats.ParseTime + res.Stats.PlaceTime,
		Cached:      res.CacheInfo.PlacementHit,
		Build:       buildinfo.Get().Short(),
		Layout:      res.Layout,
	}
	if err := r.Store.Save(ctx, run); err != nil {
		r.Logger.Warn("could not record run", "id", run.ID, "err", err)
	}
}

// Close releases the cache and the store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
