// Package render turns history trees into visual outputs.
//
// # Overview
//
// The renderer draws a tree as a grid: dataset releases become columns and
// stable identifiers become rows, matching the coordinates the layout
// engine computes. Version events appear as edges between node boxes, with
// transfer events (links that cross identifier rows) drawn dashed.
//
// # Usage
//
//	dot := render.ToDOT(tree, render.Options{})
//	svg, err := render.SVG(dot)
//	png, err := render.PNG(dot)
//
// [ToDOT] produces Graphviz DOT text; [SVG] and [PNG] rasterize it with the
// embedded Graphviz engine, so no external tools are required.
package render
