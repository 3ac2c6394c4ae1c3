package wheel

import (
	"math"

	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// Vector is a direction on the canvas.
type Vector struct {
	X, Y float64
}

// UnitVector returns the unit vector for an angle in degrees.
func UnitVector(deg float64) Vector {
	theta := deg * math.Pi / 180
	return Vector{X: math.Cos(theta), Y: math.Sin(theta)}
}

// Right reports whether v points into the right half of the canvas.
func (v Vector) Right() bool { return v.X > 0 }

// Top reports whether v points into the upper half of the canvas.
func (v Vector) Top() bool { return v.Y < 0 }

// At returns the point at distance r from origin along v.
func (v Vector) At(origin canvas.Point, r float64) canvas.Point {
	return canvas.Point{X: origin.X + r*v.X, Y: origin.Y + r*v.Y}
}
