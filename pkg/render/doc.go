// Package render groups the drawing backends for natal chart wheels.
//
// # Overview
//
// The wheel layout in [wheel] is device independent. Drawing goes through the
// [canvas.Surface] interface so the same pass can target several outputs:
//
//   - [canvas]: Surface and icon Provider interfaces, the deferred-icon
//     [canvas.Painter], and a [canvas.Recorder] that captures draw operations
//   - [sink]: an SVG surface written into a buffer and a raster surface backed
//     by gogpu/gg that encodes PNG
//   - [aspectgraph]: the aspect network as a Graphviz graph, exported as DOT
//     or drawn to SVG
//
// # Drawing a wheel
//
//	surface := sink.NewSVGSurface(cfg.CanvasSize)
//	engine := wheel.NewEngine(canvas.NewPainter(surface, icons), cfg)
//	pass, err := engine.Render(resp)
//	if pass.Icons.Deferred > 0 {
//	    engine.Settle(ctx)
//	}
//	svg := surface.Bytes()
//
// [wheel]: github.com/matzehuels/natalchart/pkg/wheel
// [canvas]: github.com/matzehuels/natalchart/pkg/render/canvas
// [canvas.Surface]: github.com/matzehuels/natalchart/pkg/render/canvas.Surface
// [canvas.Painter]: github.com/matzehuels/natalchart/pkg/render/canvas.Painter
// [canvas.Recorder]: github.com/matzehuels/natalchart/pkg/render/canvas.Recorder
// [sink]: github.com/matzehuels/natalchart/pkg/render/sink
// [aspectgraph]: github.com/matzehuels/natalchart/pkg/render/aspectgraph
package render
