package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellplace/pkg/store"
)

// runsCommand creates the run history command.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the history of placement runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openRunStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Println(runTable(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	return cmd
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run, optionally writing its result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.ValidateID(args[0]); err != nil {
				return err
			}
			st, err := c.openRunStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(run)
			if output != "" {
				if err := writeLayout(run.Layout, output); err != nil {
					return fmt.Errorf("write output %s: %w", output, err)
				}
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the run's result file")
	return cmd
}

func (c *CLI) openRunStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// runTable renders runs as a lipgloss table.
func runTable(runs []*store.Run, now time.Time) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		cached := ""
		if r.Cached {
			cached = "cached"
		}
		rows[i] = []string{
			r.ID[:min(8, len(r.ID))],
			formatRelativeTime(r.CreatedAt, now),
			r.Source,
			fmt.Sprint(r.Cells),
			fmt.Sprint(r.Layout.WireLength),
			fmt.Sprintf("%d×%d", r.Layout.Width, r.Layout.Height),
			r.Duration.Round(time.Microsecond).String(),
			cached,
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("ID", "When", "Source", "Cells", "Wire length", "Box", "Took", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return listDimStyle
			case col == 7:
				return styleCached
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func printRun(r *store.Run) {
	printKeyValue("ID", r.ID)
	printKeyValue("Created", r.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Source", r.Source)
	printKeyValue("Input", r.InputHash[:min(12, len(r.InputHash))])
	printKeyValue("Cells", fmt.Sprintf("%d cells · %d wires", r.Cells, r.Wires))
	printKeyValue("Settings", fmt.Sprintf("k=%d mode=%s index=%s workers=%d", r.Settings.Candidates, r.Settings.Mode, r.Settings.Index, r.Settings.Workers))
	printKeyValue("Took", r.Duration.Round(time.Microsecond).String())
	if r.Build != "" {
		printKeyValue("Build", r.Build)
	}
	if r.Cached {
		printDetail("result loaded from cache")
	}
	printNewline()
	printLayout(r.Layout.WireLength, r.Layout.Width, r.Layout.Height, r.Layout.Utilization())
}

// formatRelativeTime renders t relative to now for recent times.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
