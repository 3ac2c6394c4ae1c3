// Package canvas provides the primitive drawing operations used by the wheel.
//
// A [Surface] is a square drawing target (SVG document, raster image, or the
// in-memory [Recorder]). A [Provider] supplies icon images that may still be
// loading. The [Painter] ties both together and runs one render pass at a
// time:
//
//	p := canvas.NewPainter(surface, icons)
//	gen, err := p.Begin()   // clears the surface, starts generation gen
//	p.StrokeCircle(center, 280)
//	p.StrokeLine(from, to, canvas.Color("#58A054"))
//	p.DrawIcon("ic_Sun", topLeft, 24)
//	p.End()
//	err = p.Settle(ctx)     // run icon draws that were deferred during the pass
//
// # Deferred icons
//
// When an icon is not ready, [Painter.DrawIcon] subscribes to the provider and
// returns immediately. The provider may fire the subscription from any
// goroutine; the painter only queues it. Queued draws execute on the goroutine
// that calls [Painter.Settle], so surfaces never see concurrent calls.
//
// Every pass has a generation number. A deferred draw captured during an
// earlier pass is dropped when it finally runs, so a slow icon from an
// abandoned chart never lands on the current one.
package canvas
