package layout

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/cellplace/pkg/errors"
)

// =============================================================================
// Text result format
// =============================================================================

const (
	wireLengthPrefix = "Total Wire Length:"
	boundingBoxWord  = "bounding_box"
)

// WriteText writes l in the result file format.
func WriteText(w io.Writer, l Layout) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d\n", wireLengthPrefix, l.WireLength)
	fmt.Fprintf(bw, "%s %d %d\n", boundingBoxWord, l.Width, l.Height)
	for _, c := range l.Cells {
		fmt.Fprintf(bw, "%s %d %d\n", c.Name, c.X, c.Y)
	}
	return bw.Flush()
}

// ReadText parses a result file. Cell dimensions are left zero; use
// [Layout.Attach] to fill them from the netlist.
func ReadText(r io.Reader) (Layout, error) {
	var l Layout
	sc := bufio.NewScanner(r)
	line := 0
	seen := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		switch seen {
		case 0:
			rest, ok := strings.CutPrefix(text, wireLengthPrefix)
			if !ok {
				return Layout{}, formatError(line, "expected %q", wireLengthPrefix)
			}
			v, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return Layout{}, formatError(line, "wire length %q is not an integer", strings.TrimSpace(rest))
			}
			l.WireLength = v
		case 1:
			f := strings.Fields(text)
			if len(f) != 3 || f[0] != boundingBoxWord {
				return Layout{}, formatError(line, "expected %q followed by width and height", boundingBoxWord)
			}
			w, h, err := ints(f[1], f[2])
			if err != nil {
				return Layout{}, formatError(line, "%v", err)
			}
			l.Width, l.Height = w, h
		default:
			f := strings.Fields(text)
			if len(f) != 3 {
				return Layout{}, formatError(line, "expected \"<cell> <x> <y>\", got %d fields", len(f))
			}
			x, y, err := ints(f[1], f[2])
			if err != nil {
				return Layout{}, formatError(line, "%v", err)
			}
			l.Cells = append(l.Cells, PlacedCell{Name: f[0], X: x, Y: y})
		}
		seen++
	}
	if err := sc.Err(); err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	if seen < 2 {
		return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "layout is missing its header lines")
	}
	return l, nil
}

func ints(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not an integer", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not an integer", b)
	}
	return x, y, nil
}

func formatError(line int, format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidFormat, "line %d: %s", line, fmt.Sprintf(format, args...))
}

// WriteTextFile writes l to path in the result file format.
func WriteTextFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteText(f, l); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// =============================================================================
// JSON
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON bytes.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	return l, nil
}

// ReadFile reads a layout from path, accepting either the JSON form or the
// text result format.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "layout %s", path)
		}
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
		return Unmarshal(data)
	}
	return ReadText(strings.NewReader(string(data)))
}
