package wheel

import "github.com/matzehuels/natalchart/pkg/render/canvas"

// LayoutConfig holds the sizing of one wheel. It is chosen once per session
// and never mutated.
type LayoutConfig struct {
	CanvasSize    int     `json:"canvas_size"`
	OuterRadius   float64 `json:"outer_radius"`
	WallThickness float64 `json:"wall_thickness"`
}

// Full is the desktop wheel.
var Full = LayoutConfig{CanvasSize: 600, OuterRadius: 280, WallThickness: 40}

// Compact is the phone wheel.
var Compact = LayoutConfig{CanvasSize: 300, OuterRadius: 140, WallThickness: 20}

// ConfigFor selects Compact or Full.
func ConfigFor(compact bool) LayoutConfig {
	if compact {
		return Compact
	}
	return Full
}

// Origin is the centre of the canvas.
func (c LayoutConfig) Origin() canvas.Point {
	half := float64(c.CanvasSize) / 2
	return canvas.Point{X: half, Y: half}
}

// InnerRadius is the radius of the wall's inner edge.
func (c LayoutConfig) InnerRadius() float64 { return c.OuterRadius - c.WallThickness }

// IconSize is the edge length of sign and body icons.
func (c LayoutConfig) IconSize() float64 { return c.WallThickness * 0.6 }

// IconPadding is the gap between the inner wall edge and a sign icon.
func (c LayoutConfig) IconPadding() float64 { return c.IconSize() * 0.2 }

// SignIconRadius is the distance from the origin at which sign icons are anchored.
func (c LayoutConfig) SignIconRadius() float64 { return c.InnerRadius() + c.IconPadding() }

// PlanetTickLength is how far a body tick reaches inward from the inner wall.
func (c LayoutConfig) PlanetTickLength() float64 { return c.WallThickness * 0.5 }

// AspectLineRadius is the distance from the origin of aspect line endpoints.
func (c LayoutConfig) AspectLineRadius() float64 { return c.InnerRadius() * 0.75 }

// Validate rejects configurations that cannot produce a wheel.
func (c LayoutConfig) Validate() error {
	switch {
	case c.CanvasSize <= 0:
		return errInvalidConfig("canvas size must be positive")
	case c.WallThickness <= 0:
		return errInvalidConfig("wall thickness must be positive")
	case c.OuterRadius <= c.WallThickness:
		return errInvalidConfig("outer radius must exceed wall thickness")
	case 2*c.OuterRadius > float64(c.CanvasSize):
		return errInvalidConfig("wheel does not fit the canvas")
	}
	return nil
}
