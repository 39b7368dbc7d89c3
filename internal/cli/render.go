package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cellplace/pkg/config"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
	"github.com/matzehuels/cellplace/pkg/pipeline"
	"github.com/matzehuels/cellplace/pkg/render/floorplan"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output      string
	netlist     string
	noCache     bool
	ro          pipeline.RenderOptions
	formatsFlag string
}

// renderCommand creates the render command for drawing a result file.
func (c *CLI) renderCommand() *cobra.Command {
	f := renderFlags{ro: pipeline.RenderOptions{Scale: floorplan.DefaultScale}}

	cmd := &cobra.Command{
		Use:   "render [output.txt]",
		Short: "Draw a placement result as DOT, SVG or PNG",
		Long: `Draw a placement result as DOT, SVG or PNG.

The result file (text or JSON) only stores cell origins. Pass the netlist
with --netlist to draw cells at their real size; --edges then adds one line
per connected cell pair.

Several formats can be requested at once: -f svg,png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(f.formatsFlag)
			for _, format := range formats {
				if err := pipeline.ValidateFormat(format); err != nil {
					return err
				}
			}
			if f.ro.Edges && f.netlist == "" {
				return fmt.Errorf("--edges requires --netlist")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cfg, args[0], formats, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formatsFlag, "format", "f", "", "output format(s): svg (default), png, dot, json, txt (comma-separated)")
	cmd.Flags().StringVarP(&f.netlist, "netlist", "n", "", "netlist the result was placed from")
	cmd.Flags().Float64Var(&f.ro.Scale, "scale", f.ro.Scale, "inches per layout unit")
	cmd.Flags().BoolVar(&f.ro.Edges, "edges", false, "draw connections between cells")
	cmd.Flags().BoolVar(&f.ro.Coordinates, "coordinates", false, "label cells with their coordinates")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the layout, attaches cell sizes and writes one file per format.
func (c *CLI) runRender(ctx context.Context, cfg config.Config, input string, formats []string, f renderFlags) error {
	l, nl, err := loadLayout(input, f.netlist)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	base := strings.TrimSuffix(input, filepath.Ext(input))
	for _, format := range formats {
		ro := f.ro
		ro.Format = format

		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
		data, hit, err := runner.Render(ctx, l, nl, ro)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()

		path := outputPath(f.output, base, format, len(formats))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
		if hit {
			printDetail("%s from cache", format)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d cells", len(l.Cells)))
	return nil
}

// loadLayout reads a result file and, when netlistPath is set, attaches cell
// sizes from the netlist and verifies the layout.
func loadLayout(path, netlistPath string) (layout.Layout, *netlist.Netlist, error) {
	l, err := layout.ReadFile(path)
	if err != nil {
		return layout.Layout{}, nil, err
	}
	if netlistPath == "" {
		return l, nil, nil
	}
	nl, err := netlist.ParseFile(netlistPath)
	if err != nil {
		return layout.Layout{}, nil, err
	}
	if err := l.Attach(nl); err != nil {
		return layout.Layout{}, nil, err
	}
	if err := l.Verify(); err != nil {
		return layout.Layout{}, nil, err
	}
	return l, nl, nil
}

// outputPath picks the file for one format: the --output value when a single
// format is rendered, otherwise <base>.<format>.
func outputPath(output, base, format string, n int) string {
	if output != "" && n == 1 {
		return output
	}
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}
	return base + "." + format
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
