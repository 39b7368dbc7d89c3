package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/cellplace/pkg/buildinfo"
	"github.com/matzehuels/cellplace/pkg/cache"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/observability"
	"github.com/matzehuels/cellplace/pkg/place"
	"github.com/matzehuels/cellplace/pkg/store"
)

const chainSrc = `gA 2 2
gB 2 2
gC 3 1
pins gA 0 0
pins gB 0 0 2 2
pins gC 1 0
wire gA.p1 gB.p1
wire gB.p2 gC.p1
`

const chainText = `Total Wire Length: 3
bounding_box 4 3
gB 0 0
gC 0 2
gA 2 0
`

func newTestRunner(t *testing.T) (*Runner, *store.FileStore) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	r := NewRunner(c, nil, st, nil)
	t.Cleanup(func() { r.Close() })
	return r, st
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"txt", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Engine.Candidates != place.DefaultCandidates {
		t.Errorf("Candidates = %d, want %d", opts.Engine.Candidates, place.DefaultCandidates)
	}
	if opts.Source != "stdin" {
		t.Errorf("Source = %q, want stdin", opts.Source)
	}
	if opts.Logger == nil || opts.Engine.Logger == nil {
		t.Error("loggers not set")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Engine: place.Options{Candidates: 2, Mode: "full"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.PlacementKeyOpts()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.PlacementKeyOpts() != first {
		t.Errorf("second call changed options: %+v vs %+v", opts.PlacementKeyOpts(), first)
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"mode", Options{Engine: place.Options{Mode: "fastest"}}},
		{"index", Options{Engine: place.Options{Index: "quadtree"}}},
		{"timeout", Options{Timeout: -time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPlacementKeyIgnoresWorkers(t *testing.T) {
	a := Options{Engine: place.Options{Workers: 1, Index: "linear"}}
	b := Options{Engine: place.Options{Workers: 8, Index: "grid"}}
	if err := a.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := b.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	k := cache.NewDefaultKeyer()
	if k.PlacementKey("h", a.PlacementKeyOpts()) != k.PlacementKey("h", b.PlacementKeyOpts()) {
		t.Error("workers or index changed the cache key")
	}
}

func TestExecute(t *testing.T) {
	r, _ := newTestRunner(t)
	res, err := r.Execute(context.Background(), []byte(chainSrc), Options{Source: "chain.txt"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Placement == nil {
		t.Fatal("Placement is nil on a cold run")
	}
	if res.CacheInfo.PlacementHit {
		t.Error("cold run reported a cache hit")
	}
	if res.Stats.Cells != 3 || res.Stats.Wires != 2 || res.Stats.Rounds != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	data, err := Render(context.Background(), res.Layout, res.Netlist, RenderOptions{Format: FormatText})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(data) != chainText {
		t.Errorf("text output:\n%s\nwant:\n%s", data, chainText)
	}
}

func TestExecuteCached(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Execute(ctx, []byte(chainSrc), Options{})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := r.Execute(ctx, []byte(chainSrc), Options{Engine: place.Options{Workers: 4}})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.PlacementHit {
		t.Error("second run should hit the cache")
	}
	if second.Placement != nil {
		t.Error("Placement should be nil on a cache hit")
	}
	if second.Layout.String() != first.Layout.String() {
		t.Errorf("cached layout differs:\n%s\nvs\n%s", second.Layout, first.Layout)
	}
	for i, c := range second.Layout.Cells {
		if c.Width == 0 || c.Height == 0 {
			t.Errorf("cell %d has no dimensions after a cache hit", i)
		}
	}

	refreshed, err := r.Execute(ctx, []byte(chainSrc), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheInfo.PlacementHit {
		t.Error("Refresh should bypass the cache")
	}

	other, err := r.Execute(ctx, []byte(chainSrc), Options{Engine: place.Options{Candidates: 1}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if other.CacheInfo.PlacementHit {
		t.Error("different candidate count should miss")
	}
}

func TestExecuteInputErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errs.Code
	}{
		{"parse", "gA two 2\n", errs.ErrCodeParse},
		{"reference", "gA 1 1\npins gA 0 0\nwire gA.p1 gZ.p1\n", errs.ErrCodeReference},
		{"empty", "", errs.ErrCodeEmptyNetlist},
	}
	r := NewRunner(nil, nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), []byte(tt.src), Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if !errs.IsInputError(err) {
				t.Errorf("IsInputError(%v) = false", err)
			}
		})
	}
}

func TestExecuteRecordsRuns(t *testing.T) {
	r, st := newTestRunner(t)
	ctx := context.Background()

	first, err := r.Execute(ctx, []byte(chainSrc), Options{Source: "chain.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Execute(ctx, []byte(chainSrc), Options{Source: "chain.txt"}); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	got, err := st.Get(ctx, first.RunID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Source != "chain.txt" || got.Cached || got.Layout.WireLength != 3 {
		t.Errorf("run = %+v", got)
	}
	if got.InputHash != cache.Hash([]byte(chainSrc)) {
		t.Errorf("InputHash = %q", got.InputHash)
	}
	if got.Build != buildinfo.Get().Short() {
		t.Errorf("Build = %q, want %q", got.Build, buildinfo.Get().Short())
	}
	if got.Settings.Candidates != place.DefaultCandidates {
		t.Errorf("Settings.Candidates = %d", got.Settings.Candidates)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil, nil)
	if _, err := r.Execute(ctx, []byte(chainSrc), Options{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRenderFormats(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()
	res, err := r.Execute(ctx, []byte(chainSrc), Options{})
	if err != nil {
		t.Fatal(err)
	}

	data, hit, err := r.Render(ctx, res.Layout, res.Netlist, RenderOptions{Format: FormatDOT, Edges: true})
	if err != nil {
		t.Fatalf("Render dot: %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !bytes.Contains(data, []byte(`"gA" -- "gB"`)) {
		t.Errorf("dot output missing edge:\n%s", data)
	}

	again, hit, err := r.Render(ctx, res.Layout, res.Netlist, RenderOptions{Format: FormatDOT, Edges: true})
	if err != nil {
		t.Fatal(err)
	}
	if !hit || !bytes.Equal(again, data) {
		t.Error("second render should hit the artifact cache")
	}

	js, _, err := r.Render(ctx, res.Layout, nil, RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("Render json: %v", err)
	}
	if !strings.Contains(string(js), `"wire_length": 3`) && !strings.Contains(string(js), `"wire_length":3`) {
		t.Errorf("json output: %s", js)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil, nil)
	ctx := context.Background()
	res, err := r.Execute(ctx, []byte(chainSrc), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.Render(ctx, res.Layout, nil, RenderOptions{Format: "pdf"}); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("pdf: err = %v", err)
	}
	if _, _, err := r.Render(ctx, res.Layout, nil, RenderOptions{Format: FormatDOT, Edges: true}); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("edges without netlist: err = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnParseComplete(_ context.Context, _ string, cells, _ int, _ time.Duration, err error) {
	if err == nil {
		h.events = append(h.events, "parse")
	}
}

func (h *recordingHooks) OnPlaceComplete(_ context.Context, rounds, wl int, _ time.Duration, err error) {
	if err == nil {
		h.events = append(h.events, "place")
	}
}

func TestExecuteFiresHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil, nil)
	if _, err := r.Execute(context.Background(), []byte(chainSrc), Options{}); err != nil {
		t.Fatal(err)
	}
	if strings.Join(h.events, ",") != "parse,place" {
		t.Errorf("events = %v", h.events)
	}
}
