// Package floorplan draws a placed layout with Graphviz.
//
// Every cell becomes a fixed-size box pinned at its layout coordinates
// (neato honours `pos="x,y!"`), so the picture is the placement itself, not
// a Graphviz layout of it. When the netlist is supplied, wires are drawn as
// straight edges between cell centres; parallel wires between the same two
// cells collapse into one thicker edge.
//
//	dot := floorplan.ToDOT(l, floorplan.Options{Netlist: nl})
//	svg, err := floorplan.RenderSVG(ctx, dot)
package floorplan
