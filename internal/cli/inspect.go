package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellplace/pkg/config"
	"github.com/matzehuels/cellplace/pkg/pipeline"
)

// inspectCommand creates the inspect command for browsing a placement.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		noCache bool
		noTUI   bool
		ef      engineFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [input.txt]",
		Short: "Browse placed cells, pins and connections",
		Long: `Place a netlist (or load the cached result) and browse it interactively.

Each row is one cell in commit order with its position and size. Press
enter to show its pins at their absolute positions and the length of every
connection. Use --no-tui to print the table and exit.`,
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
			return c.runInspect(cmd.Context(), cfg, input, noCache, noTUI)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "print the cell table instead of starting the browser")
	ef.register(cmd.Flags())

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, cfg config.Config, input string, noCache, noTUI bool) error {
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
	engine := cfg.Engine.Options()
	engine.Progress = spinner.Track
	spinner.Start()
	res, err := runner.Execute(ctx, src, pipeline.Options{
		Source:  input,
		Engine:  engine,
		Timeout: cfg.Engine.Timeout.Duration,
		Logger:  loggerFromContext(ctx),
	})
	if err != nil {
		spinner.StopWithError("Placement failed")
		return err
	}
	spinner.Stop()

	rows, err := newInspectRows(res.Netlist, res.Layout)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s · wire length %d · %d×%d", input, res.Layout.WireLength, res.Layout.Width, res.Layout.Height)
	if noTUI {
		fmt.Println(StyleTitle.Render(title))
		fmt.Println(cellTable(rows, -1))
		return nil
	}

	p := tea.NewProgram(NewInspectModel(title, res.Netlist, rows), tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
