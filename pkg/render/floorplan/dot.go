package floorplan

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/netlist"
)

// DefaultScale is inches per layout unit.
const DefaultScale = 0.5

const maxPenWidth = 6

// Options configures floorplan rendering.
type Options struct {
	// Scale is inches per layout unit. Zero selects DefaultScale.
	Scale float64
	// Netlist, if set, adds one edge per connected cell pair.
	Netlist *netlist.Netlist
	// Coordinates appends "(x,y)" to each label.
	Coordinates bool
}

// ToDOT converts a layout to a pinned-position Graphviz graph. Cells with
// unknown dimensions are drawn as unit squares.
func ToDOT(l layout.Layout, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=filled, fillcolor=\"#dbe9f6\", fixedsize=true, fontsize=10];\n")
	buf.WriteString("  edge [color=\"#c0392b80\"];\n")
	buf.WriteString("\n")

	for _, c := range l.Cells {
		w, h := max(c.Width, 1), max(c.Height, 1)
		cx := (float64(c.X) + float64(w)/2) * scale
		cy := (float64(c.Y) + float64(h)/2) * scale
		label := c.Name
		if opts.Coordinates {
			label = fmt.Sprintf("%s\n(%d,%d)", c.Name, c.X, c.Y)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%s,%s!\", width=%s, height=%s];\n",
			c.Name, label, ftoa(cx), ftoa(cy), ftoa(float64(w)*scale), ftoa(float64(h)*scale))
	}

	if opts.Netlist != nil {
		placed := make(map[string]bool, len(l.Cells))
		for _, c := range l.Cells {
			placed[c.Name] = true
		}
		buf.WriteString("\n")
		for _, e := range cellEdges(opts.Netlist) {
			if !placed[e.a] || !placed[e.b] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -- %q [penwidth=%d];\n", e.a, e.b, min(e.wires, maxPenWidth))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type edge struct {
	a, b  string
	wires int
}

// cellEdges collapses pin-level connections into one edge per unordered
// cell pair, sorted by name. Self-connections are dropped.
func cellEdges(nl *netlist.Netlist) []edge {
	type pair struct{ lo, hi int }
	counts := make(map[pair]int)
	for _, c := range nl.Cells {
		for _, conn := range c.Connections {
			if conn.Peer <= c.ID {
				continue // each wire is recorded on both ends
			}
			counts[pair{c.ID, conn.Peer}]++
		}
	}
	edges := make([]edge, 0, len(counts))
	for p, n := range counts {
		edges = append(edges, edge{a: nl.Cells[p.lo].Name, b: nl.Cells[p.hi].Name, wires: n})
	}
	slices.SortFunc(edges, func(x, y edge) int {
		return cmp.Or(cmp.Compare(x.a, y.a), cmp.Compare(x.b, y.b))
	})
	return edges
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// =============================================================================
// Rendering
// =============================================================================

// RenderSVG renders a floorplan DOT graph to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a floorplan DOT graph to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
