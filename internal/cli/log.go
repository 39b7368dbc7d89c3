// Package cli implements the cellplace command-line interface.
//
// This package provides commands for placing netlists, rendering and
// inspecting the resulting floorplans, serving the HTTP API and managing
// the result cache and run history. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - place: Place a netlist and write the result file (the default command)
//   - render: Draw a result file as DOT, SVG or PNG
//   - inspect: Browse a placement interactively
//   - serve: Run the HTTP API
//   - runs, cache, config: Manage run history, the cache and configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// prints one line per placement round. Loggers are passed through
// context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger stamped with "15:04:05.00" times.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a multi-step command took, e.g.
// "Rendered 3 artifacts (412ms)". Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

// withLogger attaches l to ctx. The root command does this for every
// subcommand before it runs.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when a command runs outside the root command (tests).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
