package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/cellplace/pkg/config"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/observability"
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

// isolate points every per-user directory at a temp dir and switches into
// a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(observability.Reset)
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI() *CLI {
	return New(io.Discard, LogInfo)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newTestCLI().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRootDefaultPlaces(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)

	if _, err := execute(t); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, defaultOutput)); got != chainText {
		t.Errorf("output.txt:\n%s\nwant:\n%s", got, chainText)
	}
}

func TestRootAcceptsEngineFlags(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)

	if _, err := execute(t, "--mode", "incremental", "-o", "inc.txt"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "inc.txt")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestPlaceCommand(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "chain.txt", chainSrc)

	if _, err := execute(t, "place", "chain.txt", "-o", "chain.json", "--mode", "full", "--workers", "2", "--no-cache"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	l, err := layout.ReadFile(filepath.Join(dir, "chain.json"))
	if err != nil {
		t.Fatal(err)
	}
	if l.WireLength != 3 || l.Width != 4 || l.Height != 3 {
		t.Errorf("layout = %+v", l)
	}
	if l.Mode != "full" {
		t.Errorf("Mode = %q, want full", l.Mode)
	}
}

func TestPlaceErrors(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "bad.txt", "gA 2 x\n")
	writeFile(t, dir, "dangling.txt", "gA 1 1\npins gA 0 0\nwire gA.p1 gB.p1\n")

	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"missing input", []string{"place", "nope.txt"}, errs.ErrCodeFileNotFound},
		{"parse error", []string{"place", "bad.txt"}, errs.ErrCodeParse},
		{"reference error", []string{"place", "dangling.txt"}, errs.ErrCodeReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, defaultOutput)); !os.IsNotExist(err) {
		t.Error("failed runs must not write output")
	}
}

func TestPlaceInvalidOptions(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)

	if _, err := execute(t, "place", "--index", "quadtree"); err == nil {
		t.Error("expected error for unknown index")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)
	if _, err := execute(t); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "render", defaultOutput, "--netlist", defaultInput, "-f", "dot,json", "--edges"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot := readFile(t, filepath.Join(dir, "output.dot"))
	if !strings.Contains(dot, `"gA" -- "gB"`) {
		t.Errorf("dot output missing edge:\n%s", dot)
	}
	l, err := layout.ReadFile(filepath.Join(dir, "output.json"))
	if err != nil {
		t.Fatal(err)
	}
	if l.Cells[0].Width != 2 {
		t.Errorf("json render lost cell sizes: %+v", l.Cells[0])
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultOutput, chainText)

	tests := []struct {
		name string
		args []string
	}{
		{"bad format", []string{"render", defaultOutput, "-f", "pdf"}},
		{"edges without netlist", []string{"render", defaultOutput, "--edges"}},
		{"missing result", []string{"render", "missing.txt", "-f", "dot"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInspectNoTUI(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)

	if _, err := execute(t, "inspect", "--no-tui"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
}

func TestRunsCommands(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)
	if _, err := execute(t); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "runs", "list"); err != nil {
		t.Fatalf("runs list: %v", err)
	}

	st, err := store.NewFileStore("")
	if err != nil {
		t.Fatal(err)
	}
	runs, err := st.List(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("List = %v, %v", runs, err)
	}

	if _, err := execute(t, "runs", "show", runs[0].ID, "-o", "copy.txt"); err != nil {
		t.Fatalf("runs show: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "copy.txt")); got != chainText {
		t.Errorf("copy.txt:\n%s", got)
	}

	if _, err := execute(t, "runs", "show", "../etc/passwd"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("runs show with a path: err = %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "cellplace.toml", "[engine]\ncandidates = 2\n")

	out, err := execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "candidates = 2") {
		t.Errorf("config show output:\n%s", out)
	}
	if !strings.Contains(out, `backend = "file"`) {
		t.Errorf("defaults missing from output:\n%s", out)
	}
}

func TestConfigErrors(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "cellplace.toml", "[engine]\ncandidtes = 2\n")

	if _, err := execute(t, "--config", path, "config", "show"); !errs.Is(err, errs.ErrCodeInvalidOptions) {
		t.Errorf("unknown key: err = %v", err)
	}
	if _, err := execute(t, "--config", "missing.toml", "config", "show"); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing config: err = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, defaultInput, chainSrc)
	if _, err := execute(t); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
}

func TestEngineFlagsApply(t *testing.T) {
	var ef engineFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	ef.register(fs)
	if err := fs.Parse([]string{"--workers", "8", "--timeout", "2s"}); err != nil {
		t.Fatal(err)
	}

	e := config.Default().Engine
	e.Candidates = 7
	ef.apply(fs, &e)

	if e.Workers != 8 {
		t.Errorf("Workers = %d, want 8", e.Workers)
	}
	if e.Timeout.Seconds() != 2 {
		t.Errorf("Timeout = %v, want 2s", e.Timeout)
	}
	if e.Candidates != 7 {
		t.Errorf("unset flag overrode Candidates: %d", e.Candidates)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, base, format string
		n                    int
		want                 string
	}{
		{"", "result", "svg", 1, "result.svg"},
		{"plan.svg", "result", "svg", 1, "plan.svg"},
		{"plan.svg", "result", "png", 2, "plan.png"},
		{"", "dir/result", "dot", 3, "dir/result.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.base, tt.format, tt.n); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %d) = %q, want %q", tt.output, tt.base, tt.format, tt.n, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "svg" {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("svg, png,"); len(got) != 2 || got[1] != "png" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestDisplayAddr(t *testing.T) {
	if got := displayAddr(":8080"); got != "localhost:8080" {
		t.Errorf("displayAddr(:8080) = %q", got)
	}
	if got := displayAddr("0.0.0.0:9000"); got != "0.0.0.0:9000" {
		t.Errorf("displayAddr = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "cellplace") {
				t.Errorf("%s script does not mention the command name", shell)
			}
		})
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}
