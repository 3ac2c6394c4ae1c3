// Package wheel lays out and draws a natal chart as a radial wheel.
//
// The wheel is split into twelve 30° divisions, one per house, rotated so
// that House 1 begins at the Ascendant. Each division carries a house tick,
// the icon of its sign, and a tick plus icon for every body placed in the
// house. Aspect lines connect bodies across the inner circle.
//
// # Two passes
//
// [Plan] is pure: it computes every division, placement and aspect line for a
// chart and a [LayoutConfig] without touching a surface. Aspects are resolved
// once all bodies are placed, deduplicated by their unordered endpoint pair,
// so each non-conjunction aspect yields exactly one line regardless of the
// order in which the chart lists its bodies.
//
// [Engine.Render] then replays a plan through a [canvas.Painter]. Angles are
// in degrees, measured the way the canvas measures them: 0° points right and
// angles grow clockwise because screen Y points down. Zodiac longitude grows
// counter-clockwise around the wheel, so a body is placed at its division's
// start minus its longitude within the sign.
package wheel
