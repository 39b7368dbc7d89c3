package place

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellplace/pkg/overlap"
	"github.com/matzehuels/cellplace/pkg/wirelength"
)

// Defaults applied by [Options.WithDefaults].
const (
	DefaultCandidates = 4
	DefaultWorkers    = 1

	// MaxWorkers caps Workers. Each Full-mode worker owns a workspace sized
	// to the netlist's pins.
	MaxWorkers = 256

	// ModeAuto selects the wire-length mode with [wirelength.SelectMode].
	ModeAuto = "auto"
)

// Exhaustion decides what happens when a round finds no legal position.
type Exhaustion string

const (
	// ExhaustFail stops with an ExhaustedError.
	ExhaustFail Exhaustion = "fail"
	// ExhaustExpand retries the round with every remaining cell as a
	// candidate before failing.
	ExhaustExpand Exhaustion = "expand"
)

// ParseExhaustion validates an exhaustion policy name.
func ParseExhaustion(s string) (Exhaustion, error) {
	switch Exhaustion(s) {
	case ExhaustFail, ExhaustExpand:
		return Exhaustion(s), nil
	case "":
		return ExhaustFail, nil
	}
	return "", fmt.Errorf("invalid exhaustion policy %q (must be one of: fail, expand)", s)
}

// Options configures a placement run.
type Options struct {
	// Candidates is how many remaining cells compete per round.
	Candidates int `json:"candidates,omitempty"`
	// Threshold is the cells*wires product above which Incremental scoring
	// is used in auto mode.
	Threshold int `json:"threshold,omitempty"`
	// Mode is "auto", "full" or "incremental".
	Mode string `json:"mode,omitempty"`
	// Index selects the overlap index implementation.
	Index overlap.Kind `json:"index,omitempty"`
	// GridCell is the bucket size for the grid index.
	GridCell int `json:"grid_cell,omitempty"`
	// Workers bounds parallel scoring goroutines; 1 scores sequentially.
	Workers int `json:"workers,omitempty"`
	// Exhaustion is the policy for rounds without a legal position.
	Exhaustion Exhaustion `json:"exhaustion,omitempty"`
	// MaxRounds stops the run with a TIMEOUT error once this many rounds
	// have been played. 0 means no limit.
	MaxRounds int `json:"max_rounds,omitempty"`

	// Logger receives per-round debug output.
	Logger *log.Logger `json:"-"`
	// Progress, if set, is called after every commit.
	Progress func(Round) `json:"-"`

	// newIndex overrides index construction in tests.
	newIndex func() overlap.Index
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.Candidates <= 0 {
		o.Candidates = DefaultCandidates
	}
	if o.Threshold <= 0 {
		o.Threshold = wirelength.DefaultThreshold
	}
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.Index == "" {
		o.Index = overlap.KindLinear
	}
	if o.GridCell <= 0 {
		o.GridCell = overlap.DefaultGridCell
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Exhaustion == "" {
		o.Exhaustion = ExhaustFail
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Validate checks enumerated fields. Call it after WithDefaults.
func (o Options) Validate() error {
	if o.Mode != ModeAuto {
		if _, err := wirelength.ParseMode(o.Mode); err != nil {
			return err
		}
	}
	if _, err := overlap.ParseKind(string(o.Index)); err != nil {
		return err
	}
	if _, err := ParseExhaustion(string(o.Exhaustion)); err != nil {
		return err
	}
	if o.Workers > MaxWorkers {
		return fmt.Errorf("workers must be at most %d, got %d", MaxWorkers, o.Workers)
	}
	if o.MaxRounds < 0 {
		return fmt.Errorf("max rounds must not be negative, got %d", o.MaxRounds)
	}
	return nil
}

// ResolveMode returns the scoring mode for a netlist of the given size.
func (o Options) ResolveMode(cells, wires int) wirelength.Mode {
	if o.Mode == ModeAuto || o.Mode == "" {
		threshold := o.Threshold
		if threshold <= 0 {
			threshold = wirelength.DefaultThreshold
		}
		return wirelength.SelectMode(cells, wires, threshold)
	}
	return wirelength.Mode(o.Mode)
}
