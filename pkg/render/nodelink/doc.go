// Package nodelink draws a molecule's bond graph as a flat node-link
// diagram using Graphviz. It ignores 3-D coordinates: atoms become labelled
// circles filled with their element colour, and bonds become undirected
// edges labelled with their order when it is above one.
//
//	dot := nodelink.ToDOT(m, tbl, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The layout engine is neato, which suits small undirected graphs.
package nodelink
