// Package pkg provides the core libraries for cellplace, a greedy netlist
// cell placer.
//
// # Overview
//
// Cellplace reads a netlist of rectangular cells with pins and pairwise
// wires, then places one cell per round next to an already placed cell so
// that the half-perimeter wire length grows as little as possible. The pkg
// directory is organized into three areas:
//
//  1. Placement - netlist model, overlap index, wire-length scoring, engine
//  2. Output - normalized layouts, the result text format, floorplan renders
//  3. Infrastructure - pipeline, caching, run history, config, errors
//
// # Architecture
//
// The typical data flow:
//
//	netlist text
//	     ↓
//	[netlist] package (parse cells, pins, wires)
//	     ↓
//	[place] package (greedy rounds over [overlap] and [wirelength])
//	     ↓
//	[layout] package (bounding box, normalization, result file)
//	     ↓
//	text / JSON / DOT / SVG / PNG
//
// # Quick Start
//
//	nl, err := netlist.ParseFile("input.txt")
//	if err != nil {
//	    return err
//	}
//	p, err := place.Place(ctx, nl, place.Options{})
//	if err != nil {
//	    return err
//	}
//	err = layout.WriteTextFile(layout.FromPlacement(nl, p), "output.txt")
//
// # Main Packages
//
// ## Placement
//
// [netlist] - Cells, pins and mirrored connection records, plus the parser
// for the netlist text format. Parse and reference errors carry line numbers.
//
// [overlap] - Strict rectangle overlap queries over placed cells: a linear
// scan and a uniform grid that always agree.
//
// [wirelength] - One-hop half-perimeter wire length, scored in full or
// incrementally depending on netlist size.
//
// [place] - The placement engine: top-degree candidates, anchors in commit
// order, four directions, a deterministic tie-break and optional parallel
// scoring.
//
// [geom] - Integer points, rectangles and bounds.
//
// ## Output
//
// [layout] - Normalized layouts and the result file format.
//
// [render/floorplan] - Pinned-position Graphviz rendering of a layout.
//
// ## Infrastructure
//
// [pipeline] - parse → place → render with caching and run history, used by
// the CLI and the HTTP API alike.
//
// [cache] - Byte cache with file, Redis and null backends.
//
// [store] - Run history with file and MongoDB backends.
//
// [config] - The cellplace.toml configuration file.
//
// [errors] - Coded errors shared by the CLI and the API.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./...                                   # All tests
//	go test ./pkg/place/...                         # Specific package
//	CELLPLACE_TEST_REDIS_URL=redis://... go test ./pkg/cache/
//	CELLPLACE_TEST_MONGO_URI=mongodb://... go test ./pkg/store/
//
// [netlist]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/netlist
// [overlap]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/overlap
// [wirelength]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/wirelength
// [place]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/place
// [geom]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/geom
// [layout]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/layout
// [render/floorplan]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/render/floorplan
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cellplace/pkg/observability
package pkg
