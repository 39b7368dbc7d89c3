package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/cellplace/pkg/cache"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
)

func sampleRun(created time.Time) *Run {
	return &Run{
		ID:        NewID(),
		CreatedAt: created,
		Source:    "input.txt",
		InputHash: "abc",
		Settings:  Settings{Candidates: 4, Mode: "auto", Index: "linear", Workers: 1, Exhaustion: "fail"},
		Cells:     2,
		Wires:     1,
		Rounds:    1,
		Layout: layout.Layout{
			WireLength: 2,
			Width:      4,
			Height:     2,
			Cells: []layout.PlacedCell{
				{Name: "g1", X: 0, Y: 0, Width: 2, Height: 2},
				{Name: "g2", X: 2, Y: 0, Width: 2, Height: 2},
			},
		},
	}
}

func TestFileStoreSaveGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	run := sampleRun(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	if err := s.Save(ctx, run); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), NewID()); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
}

func TestFileStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../etc/passwd", "run-1"} {
		if _, err := s.Get(ctx, id); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Get(%q) error = %v, want INVALID_INPUT", id, err)
		}
		if err := s.Save(ctx, &Run{ID: id}); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("Save(%q) error = %v, want INVALID_INPUT", id, err)
		}
	}
}

func TestFileStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 4 {
		run := sampleRun(base.Add(time.Duration(i) * time.Hour))
		ids = append(ids, run.ID)
		if err := s.Save(ctx, run); err != nil {
			t.Fatal(err)
		}
	}
	// junk in the directory is ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, NewID()+".json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, r := range runs {
		got = append(got, r.ID)
	}
	want := []string{ids[3], ids[2], ids[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("List(0) returned %d runs, want 4", len(all))
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NullStore{}
	run := sampleRun(time.Now())
	if err := s.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, run.ID); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
	if runs, err := s.List(ctx, 10); err != nil || len(runs) != 0 {
		t.Errorf("List() = %v, %v", runs, err)
	}
}

func TestNewMongoStoreRejectsBadURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), "redis://localhost", "")
	if !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("error = %v, want INVALID_OPTIONS", err)
	}
}

func TestClassifyMongo(t *testing.T) {
	network := &mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}}

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"network", network, true},
		{"wrapped network", fmt.Errorf("find: %w", network), true},
		{"no documents", mongo.ErrNoDocuments, false},
		{"command", &mongo.CommandError{Code: 11000, Message: "duplicate key"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMongo(tt.err)
			if cache.IsRetryable(got) != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", got, !tt.retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("classifyMongo lost the cause: %v", got)
			}
		})
	}
}

func TestMongoRetryStopsOnMissingDocument(t *testing.T) {
	calls := 0
	err := cache.Backoff{Attempts: 3, Delay: time.Millisecond}.Retry(context.Background(), func() error {
		calls++
		return classifyMongo(mongo.ErrNoDocuments)
	})
	if !errors.Is(err, mongo.ErrNoDocuments) || calls != 1 {
		t.Errorf("Retry() = %v after %d calls, want ErrNoDocuments after 1", err, calls)
	}
}

// TestMongoStoreLive runs against CELLPLACE_TEST_MONGO_URI when set.
func TestMongoStoreLive(t *testing.T) {
	uri := os.Getenv("CELLPLACE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CELLPLACE_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, uri, "cellplace_test")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	run := sampleRun(time.Now().UTC().Truncate(time.Millisecond))
	if err := s.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Layout.WireLength != run.Layout.WireLength || !got.CreatedAt.Equal(run.CreatedAt) {
		t.Errorf("Get() = %+v", got)
	}
	if _, err := s.Get(ctx, NewID()); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Get(missing) error = %v, want NOT_FOUND", err)
	}
}
