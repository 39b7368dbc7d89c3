package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/cellplace/pkg/cache"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/observability"
	"github.com/matzehuels/cellplace/pkg/render/floorplan"
)

// Render produces the artifact for l in the requested format. Graphviz
// formats are cached by layout hash; the bool reports a cache hit.
//
// nl is only needed when ro.Edges is set.
func (r *Runner) Render(ctx context.Context, l layout.Layout, nl *netlist.Netlist, ro RenderOptions) ([]byte, bool, error) {
	if err := ValidateFormat(ro.Format); err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInvalidOptions, err, "render")
	}
	if ro.Edges && nl == nil {
		return nil, false, errs.New(errs.ErrCodeInvalidOptions, "edges require the netlist")
	}

	// Text formats are cheaper to produce than to look up.
	if ro.Format == FormatText || ro.Format == FormatJSON {
		data, err := Render(ctx, l, nl, ro)
		return data, false, err
	}

	encoded, err := layout.Marshal(l)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.ArtifactKey(cache.Hash(encoded), ro.ArtifactKeyOpts())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	data, err := Render(ctx, l, nl, ro)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
	return data, false, nil
}

// Render produces the artifact for l without caching.
func Render(ctx context.Context, l layout.Layout, nl *netlist.Netlist, ro RenderOptions) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, ro.Format)
	start := time.Now()

	data, err := render(ctx, l, nl, ro)
	hooks.OnRenderComplete(ctx, ro.Format, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", ro.Format, err)
	}
	return data, nil
}

func render(ctx context.Context, l layout.Layout, nl *netlist.Netlist, ro RenderOptions) ([]byte, error) {
	switch ro.Format {
	case FormatText:
		var buf bytes.Buffer
		if err := layout.WriteText(&buf, l); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return layout.Marshal(l)
	case FormatDOT:
		return []byte(floorplan.ToDOT(l, ro.floorplan(nl))), nil
	case FormatSVG:
		return floorplan.RenderSVG(ctx, floorplan.ToDOT(l, ro.floorplan(nl)))
	case FormatPNG:
		return floorplan.RenderPNG(ctx, floorplan.ToDOT(l, ro.floorplan(nl)))
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "format %q", ro.Format)
}
