package netlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/geom"
)

const chainInput = `# three cells in a chain
g1 2 2
g2 2 2
g3 3 1

pins g1 0 0
pins g2 0 0 2 2
pins g3 1 0
wire g1.p1 g2.p1
wire g2.p2 g3.p1
`

func TestParse(t *testing.T) {
	n, err := Parse(strings.NewReader(chainInput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", n.Len())
	}
	if n.Wires != 2 {
		t.Errorf("Wires = %d, want 2", n.Wires)
	}

	g3, _ := n.Lookup("g3")
	if g3.Width != 3 || g3.Height != 1 {
		t.Errorf("g3 size = %dx%d, want 3x1", g3.Width, g3.Height)
	}
	if g3.Pins[0].Offset != (geom.Point{1, 0}) {
		t.Errorf("g3.p1 offset = %v", g3.Pins[0].Offset)
	}

	wantDegrees := []int{1, 2, 1}
	for id, want := range wantDegrees {
		if got := n.Degree(id); got != want {
			t.Errorf("Degree(%s) = %d, want %d", n.Cell(id).Name, got, want)
		}
	}
	if err := n.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseCellWithoutPins(t *testing.T) {
	n, err := Parse(strings.NewReader("g1 1 1\npins g1\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(n.Cell(0).Pins) != 0 {
		t.Errorf("pins = %v, want none", n.Cell(0).Pins)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		code     errs.Code
		wantLine string
	}{
		{"non-integer width", "g1 two 2\n", errs.ErrCodeParse, "line 1"},
		{"zero height", "g1 2 0\n", errs.ErrCodeParse, "line 1"},
		{"duplicate cell", "g1 1 1\ng1 2 2\n", errs.ErrCodeParse, "line 2"},
		{"odd pin coords", "g1 1 1\npins g1 0 0 1\n", errs.ErrCodeParse, "line 2"},
		{"non-integer pin", "g1 1 1\npins g1 0 x\n", errs.ErrCodeParse, "line 2"},
		{"pins twice", "g1 1 1\npins g1 0 0\npins g1 1 1\n", errs.ErrCodeParse, "line 3"},
		{"pins missing name", "pins\n", errs.ErrCodeParse, "line 1"},
		{"wire arity", "g1 1 1\npins g1 0 0\nwire g1.p1\n", errs.ErrCodeParse, "line 3"},
		{"wire bad ref", "g1 1 1\npins g1 0 0\nwire g1p1 g1.p1\n", errs.ErrCodeParse, "line 3"},
		{"unknown statement", "net a b\n", errs.ErrCodeParse, "line 1"},
		{"short cell line", "g1 1\n", errs.ErrCodeParse, "line 1"},
		{"pins undefined cell", "pins g9 0 0\n", errs.ErrCodeReference, "line 1"},
		{"wire undefined cell", "g1 1 1\npins g1 0 0\nwire g1.p1 g2.p1\n", errs.ErrCodeReference, "line 3"},
		{"wire undefined pin", "g1 1 1\npins g1 0 0\n\nwire g1.p1 g1.p2\n", errs.ErrCodeReference, "line 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.code, err)
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("error %q should mention %q", err, tt.wantLine)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(chainInput), 0644); err != nil {
		t.Fatal(err)
	}
	n, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if n.Len() != 3 {
		t.Errorf("Len() = %d, want 3", n.Len())
	}

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestParseExampleNetlists(t *testing.T) {
	tests := []struct {
		file         string
		cells, wires int
	}{
		{"chain.txt", 3, 2},
		{"mesh4.txt", 16, 24},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			n, err := ParseFile(filepath.Join("..", "..", "examples", "netlists", tt.file))
			if err != nil {
				t.Fatalf("ParseFile: %v", err)
			}
			if n.Len() != tt.cells || n.Wires != tt.wires {
				t.Errorf("got %d cells, %d wires; want %d, %d", n.Len(), n.Wires, tt.cells, tt.wires)
			}
			if err := n.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}
