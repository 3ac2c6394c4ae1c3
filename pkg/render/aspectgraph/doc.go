// Package aspectgraph renders the aspects of a chart as an undirected graph.
//
// Bodies become nodes and aspect lines become edges coloured like the wheel.
// The DOT text from [ToDOT] can be laid out with Graphviz by [RenderSVG]:
//
//	dot := aspectgraph.ToDOT(layout, aspectgraph.Options{Detailed: true})
//	svg, err := aspectgraph.RenderSVG(ctx, dot)
package aspectgraph
