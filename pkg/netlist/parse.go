package netlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/geom"
)

// maxLineBytes bounds a single input line; pins statements on large cells
// can be long.
const maxLineBytes = 16 << 20

// Statement keywords.
const (
	keywordPins = "pins"
	keywordWire = "wire"
	cellPrefix  = "g"
)

// ParseFile reads and parses the netlist at path.
func ParseFile(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a netlist in the line-oriented text format. It stops at the
// first malformed or dangling statement.
func Parse(r io.Reader) (*Netlist, error) {
	n := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := n.parseStatement(fields); err != nil {
			return nil, lineError(line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeParse, err, "line %d: read failed", line+1)
	}
	return n, nil
}

func (n *Netlist) parseStatement(fields []string) error {
	switch {
	case fields[0] == keywordPins:
		return n.parsePins(fields)
	case fields[0] == keywordWire:
		return n.parseWire(fields)
	case len(fields) == 3 && strings.HasPrefix(fields[0], cellPrefix):
		return n.parseCell(fields)
	}
	return errs.New(errs.ErrCodeParse, "unrecognized statement %q", fields[0])
}

func (n *Netlist) parseCell(fields []string) error {
	name := fields[0]
	if err := errs.ValidateCellName(name); err != nil {
		return err
	}
	w, err := parseInt(fields[1])
	if err != nil {
		return err
	}
	h, err := parseInt(fields[2])
	if err != nil {
		return err
	}
	_, err = n.AddCell(name, w, h)
	return err
}

func (n *Netlist) parsePins(fields []string) error {
	if len(fields) < 2 {
		return errs.New(errs.ErrCodeParse, "pins statement needs a cell name")
	}
	coords := fields[2:]
	if len(coords)%2 != 0 {
		return errs.New(errs.ErrCodeParse, "pins %s has an odd number of coordinates (%d)", fields[1], len(coords))
	}
	offsets := make([]geom.Point, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		x, err := parseInt(coords[i])
		if err != nil {
			return err
		}
		y, err := parseInt(coords[i+1])
		if err != nil {
			return err
		}
		offsets = append(offsets, geom.Point{X: x, Y: y})
	}
	return n.SetPins(fields[1], offsets)
}

func (n *Netlist) parseWire(fields []string) error {
	if len(fields) != 3 {
		return errs.New(errs.ErrCodeParse, "wire statement needs exactly 2 pin references, got %d", len(fields)-1)
	}
	a, err := ParsePinRef(fields[1])
	if err != nil {
		return errs.Wrap(errs.ErrCodeParse, err, "bad wire endpoint")
	}
	b, err := ParsePinRef(fields[2])
	if err != nil {
		return errs.Wrap(errs.ErrCodeParse, err, "bad wire endpoint")
	}
	return n.Connect(a, b)
}

func parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errs.New(errs.ErrCodeParse, "expected integer, got %q", tok)
	}
	return v, nil
}

// lineError attaches the line number and maps model sentinels onto the
// PARSE_ERROR / REFERENCE_ERROR taxonomy.
func lineError(line int, err error) error {
	var coded *errs.Error
	if errors.As(err, &coded) {
		return errs.Wrap(coded.Code, coded.Cause, "line %d: %s", line, coded.Message)
	}
	switch {
	case errors.Is(err, ErrUnknownCell), errors.Is(err, ErrUnknownPin):
		return errs.Wrap(errs.ErrCodeReference, err, "line %d", line)
	default:
		return errs.Wrap(errs.ErrCodeParse, err, "line %d", line)
	}
}
