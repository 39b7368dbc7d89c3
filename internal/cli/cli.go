// Package cli implements the cellplace command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellplace/pkg/buildinfo"
	"github.com/matzehuels/cellplace/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cellplace"

	// defaultInput and defaultOutput are used when place runs without
	// arguments.
	defaultInput  = "input.txt"
	defaultOutput = "output.txt"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag; empty selects config.DefaultPath.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Without a subcommand it behaves like "place input.txt -o output.txt".
func (c *CLI) RootCommand() *cobra.Command {
	place := c.placeCommand()

	root := &cobra.Command{
		Use:   appName,
		Short: "Cellplace places netlist cells greedily to minimize wire length",
		Long: `Cellplace is a greedy cell placer. It reads a netlist of rectangular cells
with pins and point-to-point wires, and commits one cell per round at the
overlap-free position next to an already placed cell that adds the least
half-perimeter wire length.

Run without a subcommand to place input.txt and write output.txt.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         place.RunE,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cellplace/config.toml)")
	root.Flags().AddFlagSet(place.Flags())

	// Register all subcommands
	root.AddCommand(place)
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return cfg, nil
}
