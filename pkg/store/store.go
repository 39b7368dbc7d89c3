// Package store keeps a history of placement runs.
//
// Backends:
//   - [FileStore]: one JSON file per run under ~/.local/share/cellplace/runs
//   - [MongoStore]: a MongoDB collection, for the HTTP server
//   - [NullStore]: discards everything (store backend "none")
//
// Runs are keyed by a UUID assigned by the pipeline.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// Run is one recorded placement.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Source    string    `json:"source,omitempty" bson:"source,omitempty"`
	InputHash string    `json:"input_hash" bson:"input_hash"`
	Settings  Settings  `json:"settings" bson:"settings"`

	Cells       int           `json:"cells" bson:"cells"`
	Wires       int           `json:"wires" bson:"wires"`
	Rounds      int           `json:"rounds" bson:"rounds"`
	Evaluations int           `json:"evaluations" bson:"evaluations"`
	Duration    time.Duration `json:"duration_ns" bson:"duration_ns"`
	Cached      bool          `json:"cached,omitempty" bson:"cached,omitempty"`
	// Build is the cellplace build that placed the layout, e.g. "v1.2.0 (3f2a9c1)".
	Build string `json:"build,omitempty" bson:"build,omitempty"`

	Layout layout.Layout `json:"layout" bson:"layout"`
}

// Settings records the engine options a run used.
type Settings struct {
	Candidates int    `json:"candidates" bson:"candidates"`
	Threshold  int    `json:"threshold" bson:"threshold"`
	Mode       string `json:"mode" bson:"mode"`
	Index      string `json:"index" bson:"index"`
	Workers    int    `json:"workers" bson:"workers"`
	Exhaustion string `json:"exhaustion" bson:"exhaustion"`
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, run *Run) error
	// Get returns the run with id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)
	// List returns up to limit runs, newest first. limit <= 0 selects
	// DefaultListLimit.
	List(ctx context.Context, limit int) ([]*Run, error)
	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh run id.
func NewID() string { return uuid.NewString() }

// ValidateID rejects ids that are not UUIDs. Ids end up in file paths and
// query filters, so nothing else is accepted.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.New(errs.ErrCodeInvalidInput, "invalid run id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "run %s not found", id)
}

// =============================================================================
// NullStore
// =============================================================================

// NullStore discards runs.
type NullStore struct{}

func (NullStore) Save(context.Context, *Run) error { return nil }

func (NullStore) Get(_ context.Context, id string) (*Run, error) { return nil, notFound(id) }

func (NullStore) List(context.Context, int) ([]*Run, error) { return nil, nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
