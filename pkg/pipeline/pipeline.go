// Package pipeline runs parse → place → render for the CLI and the API.
//
// Centralizing the stages keeps caching, run history and observability
// identical for every entry point.
//
// # Stages
//
//  1. Parse: read the netlist text into a [netlist.Netlist]
//  2. Place: run the engine and normalize the result into a [layout.Layout]
//  3. Render: optionally produce an artifact (text, JSON, DOT, SVG, PNG)
//
// Placement results are cached by the hash of the input bytes plus the
// engine options that can change the outcome, so re-running an unchanged
// netlist is a cache read.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, st, logger)
//	res, err := runner.Execute(ctx, src, pipeline.Options{Source: "input.txt"})
//	if err != nil {
//	    return err
//	}
//	err = layout.WriteText(os.Stdout, res.Layout)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellplace/pkg/cache"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/place"
	"github.com/matzehuels/cellplace/pkg/render/floorplan"
)

// Format constants for output artifacts.
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: txt, json, dot, svg, png)", format)
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Source names the input in logs and run history (a path or "api").
	Source string `json:"source,omitempty"`
	// Engine configures the placement engine.
	Engine place.Options `json:"engine"`
	// Timeout bounds the placement stage. Zero means no limit.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Refresh skips the cache read but still stores the new result.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults fills engine defaults and validates them.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Engine.Logger == nil {
		o.Engine.Logger = o.Logger
	}
	o.Engine = o.Engine.WithDefaults()
	if err := o.Engine.Validate(); err != nil {
		return err
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if o.Source == "" {
		o.Source = "stdin"
	}
	return nil
}

// PlacementKeyOpts returns the cache key options for the engine settings.
// Worker count and overlap index kind are excluded: they never change the
// result.
func (o *Options) PlacementKeyOpts() cache.PlacementKeyOpts {
	return cache.PlacementKeyOpts{
		Candidates: o.Engine.Candidates,
		Threshold:  o.Engine.Threshold,
		Mode:       o.Engine.Mode,
		Exhaustion: string(o.Engine.Exhaustion),
		MaxRounds:  o.Engine.MaxRounds,
	}
}

// RenderOptions configures artifact rendering.
type RenderOptions struct {
	Format      string  `json:"format"`
	Scale       float64 `json:"scale,omitempty"`
	Edges       bool    `json:"edges,omitempty"`
	Coordinates bool    `json:"coordinates,omitempty"`
}

// ArtifactKeyOpts returns the cache key options for ro.
func (ro RenderOptions) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      ro.Format,
		Scale:       ro.Scale,
		Edges:       ro.Edges,
		Coordinates: ro.Coordinates,
	}
}

func (ro RenderOptions) floorplan(nl *netlist.Netlist) floorplan.Options {
	fo := floorplan.Options{Scale: ro.Scale, Coordinates: ro.Coordinates}
	if ro.Edges {
		fo.Netlist = nl
	}
	return fo
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in the store.
	RunID string
	// InputHash is the SHA-256 of the netlist text.
	InputHash string
	// Netlist is the parsed input.
	Netlist *netlist.Netlist
	// Placement is the engine output; nil when the layout came from cache.
	Placement *place.Placement
	// Layout is the normalized result.
	Layout layout.Layout
	// Stats contains timing and size information.
	Stats Stats
	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells       int
	Wires       int
	Rounds      int
	Evaluations int
	Rejected    int
	ParseTime   time.Duration
	PlaceTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlacementHit bool
	RenderHit    bool
}
