// Package render turns a projected molecule into vector graphics.
//
// # Overview
//
// Rendering happens in two steps:
//
//  1. [Compose] builds a [Scene]: one circle per atom and one four-point
//     polygon per bond, in canvas coordinates, sorted back to front by depth
//     (painter's algorithm).
//  2. [RenderSVG] writes the scene as a self-contained SVG document with the
//     element gradients embedded in its defs.
//
// All render state (fit, element table, bond colour, bond width) travels in
// a [Context] value. Nothing is global, so concurrent renders of different
// molecules never interfere.
//
//	ctx := render.NewContext(m, elements.Default())
//	scene, err := render.Compose(m, ctx)
//	svg := render.RenderSVG(scene)
//
// # Depth Ordering
//
// Atoms are appended before bonds and the combined list is sorted stably by
// Z, ascending. Equal depths keep creation order, so an atom drawn at the
// same depth as a bond is painted underneath it.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// The [nodelink] subpackage draws the bond graph as a flat node-link diagram
// with Graphviz.
//
// [nodelink]: github.com/matzehuels/molview/pkg/render/nodelink
package render
