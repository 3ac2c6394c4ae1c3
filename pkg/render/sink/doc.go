// Package sink provides drawing surfaces that turn a wheel into output bytes.
//
// Both surfaces implement [canvas.Surface]:
//
//   - [SVGSurface]: a standalone SVG document; icons are embedded as PNG
//     data URIs
//   - [RasterSurface]: an anti-aliased bitmap drawn with gogpu/gg and encoded
//     as PNG
//
// The JSON scene export uses [canvas.Recorder] directly and needs no sink.
package sink
