package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/cellplace/pkg/config"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/pipeline"
	"github.com/matzehuels/cellplace/pkg/place"
)

// engineFlags holds the placement flags shared by place and inspect.
// Only flags the user set override the config file.
type engineFlags struct {
	candidates int
	threshold  int
	mode       string
	index      string
	gridCell   int
	workers    int
	exhaustion string
	maxRounds  int
	timeout    time.Duration
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.candidates, "candidates", "k", place.DefaultCandidates, "highest-degree cells considered per round")
	fs.IntVar(&f.threshold, "threshold", 0, "cells×wires below which full wire length is scored (default 750000)")
	fs.StringVarP(&f.mode, "mode", "m", place.ModeAuto, "scoring mode: auto, full, incremental")
	fs.StringVar(&f.index, "index", "linear", "overlap index: linear, grid")
	fs.IntVar(&f.gridCell, "grid-cell", 0, "grid index bucket size")
	fs.IntVarP(&f.workers, "workers", "j", place.DefaultWorkers, "parallel scoring workers (at most 256)")
	fs.StringVar(&f.exhaustion, "exhaustion", string(place.ExhaustFail), "when no candidate fits: fail, expand")
	fs.IntVar(&f.maxRounds, "max-rounds", 0, "stop after this many rounds (0 = no limit)")
	fs.DurationVar(&f.timeout, "timeout", 0, "placement time limit (0 = no limit)")
}

// apply copies every flag the user set onto e.
func (f *engineFlags) apply(fs *pflag.FlagSet, e *config.Engine) {
	if fs.Changed("candidates") {
		e.Candidates = f.candidates
	}
	if fs.Changed("threshold") {
		e.Threshold = f.threshold
	}
	if fs.Changed("mode") {
		e.Mode = f.mode
	}
	if fs.Changed("index") {
		e.Index = f.index
	}
	if fs.Changed("grid-cell") {
		e.GridCell = f.gridCell
	}
	if fs.Changed("workers") {
		e.Workers = f.workers
	}
	if fs.Changed("exhaustion") {
		e.Exhaustion = f.exhaustion
	}
	if fs.Changed("max-rounds") {
		e.MaxRounds = f.maxRounds
	}
	if fs.Changed("timeout") {
		e.Timeout = config.Duration{Duration: f.timeout}
	}
}

// placeCommand creates the place command. The root command reuses its
// RunE and flags.
func (c *CLI) placeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		ef      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "place [input.txt]",
		Short: "Place a netlist and write the result file",
		Long: `Place a netlist and write the result file.

The input defaults to input.txt and the result to output.txt. The result
lists the total wire length, the bounding box and one "name x y" line per
cell, with coordinates shifted so the lower-left corner is at (0, 0).

Results are cached by input content and engine settings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultInput
			if len(args) == 1 {
				input = args[0]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ef.apply(cmd.Flags(), &cfg.Engine)
			return c.runPlace(cmd.Context(), cfg, input, output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultOutput, "result file (.json writes JSON)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even if a cached result exists")
	ef.register(cmd.Flags())

	return cmd
}

// runPlace reads the netlist, places it and writes the result.
func (c *CLI) runPlace(ctx context.Context, cfg config.Config, input, output string, noCache, refresh bool) error {
	src, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Placing cells...")
	opts := pipeline.Options{
		Source:  input,
		Engine:  cfg.Engine.Options(),
		Timeout: cfg.Engine.Timeout.Duration,
		Refresh: refresh,
		Logger:  loggerFromContext(ctx),
	}
	opts.Engine.Progress = spinner.Track

	start := time.Now()
	spinner.Start()
	res, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Placement failed")
		return err
	}
	spinner.Stop()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := writeLayout(res.Layout, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	fmt.Printf("Execution time: %.4f seconds\n", elapsed.Seconds())
	printSuccess("Placement complete")
	printFile(output)
	printStats(res.Stats.Cells, res.Stats.Wires, res.CacheInfo.PlacementHit)
	printLayout(res.Layout.WireLength, res.Layout.Width, res.Layout.Height, res.Layout.Utilization())
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s --netlist %s -f svg", appName, output, input))

	return nil
}

// readInput reads a netlist file, mapping a missing file to FILE_NOT_FOUND.
func readInput(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "input %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return src, nil
}

// writeLayout writes l as text, or as JSON when path ends in .json.
func writeLayout(l layout.Layout, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := layout.Marshal(l)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return layout.WriteTextFile(l, path)
}
