package canvas

import "image"

// Point is a position in canvas pixels, Y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Color is a CSS hex colour such as "#58A054".
type Color string

// DefaultColor is the stroke colour used when an operation names none.
const DefaultColor Color = "#000000"

// Surface is a square drawing target. Implementations are not required to be
// safe for concurrent use; the Painter serialises all calls.
type Surface interface {
	// Size returns the edge length of the square canvas in pixels.
	Size() int
	// Clear erases everything drawn so far.
	Clear()
	// StrokeCircle outlines a circle without filling it.
	StrokeCircle(center Point, radius float64, c Color)
	// StrokeLine draws a straight segment.
	StrokeLine(from, to Point, c Color)
	// DrawImage blits img scaled to a size×size square at topLeft.
	DrawImage(id string, img image.Image, topLeft Point, size float64)
	// Placeholder renders the empty-state message instead of a chart.
	Placeholder(text string)
}

// Provider supplies icon images that may load asynchronously.
type Provider interface {
	// IsReady reports whether the image for id is loaded.
	IsReady(id string) bool
	// Subscribe registers fn to run once when id settles: with true when the
	// image is ready, with false when loading failed. It returns false when id
	// is unknown or already failed, in which case fn is never called. fn may
	// be invoked from any goroutine.
	Subscribe(id string, fn func(ok bool)) bool
	// Size returns the intrinsic pixel size of a loaded image.
	Size(id string) (w, h int, ok bool)
	// Image returns the loaded image for id.
	Image(id string) (image.Image, bool)
}
