package canvas

import (
	"encoding/json"
	"image"
)

// Op kinds recorded by Recorder.
const (
	OpCircle      = "circle"
	OpLine        = "line"
	OpImage       = "image"
	OpPlaceholder = "placeholder"
)

// Op is one recorded drawing primitive.
type Op struct {
	Kind   string  `json:"kind"`
	From   Point   `json:"from,omitzero"`
	To     Point   `json:"to,omitzero"`
	Radius float64 `json:"radius,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Color  Color   `json:"color,omitempty"`
	ID     string  `json:"id,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Recorder is a Surface that keeps the primitives instead of drawing them.
// It backs the JSON scene export and the layout tests.
type Recorder struct {
	size int
	ops  []Op
}

// NewRecorder creates a recorder for a size×size canvas.
func NewRecorder(size int) *Recorder {
	return &Recorder{size: size}
}

func (r *Recorder) Size() int { return r.size }

func (r *Recorder) Clear() { r.ops = nil }

func (r *Recorder) StrokeCircle(center Point, radius float64, c Color) {
	r.ops = append(r.ops, Op{Kind: OpCircle, From: center, Radius: radius, Color: c})
}

func (r *Recorder) StrokeLine(from, to Point, c Color) {
	r.ops = append(r.ops, Op{Kind: OpLine, From: from, To: to, Color: c})
}

func (r *Recorder) DrawImage(id string, _ image.Image, topLeft Point, size float64) {
	r.ops = append(r.ops, Op{Kind: OpImage, ID: id, From: topLeft, Size: size})
}

func (r *Recorder) Placeholder(text string) {
	r.ops = append(r.ops, Op{Kind: OpPlaceholder, Text: text})
}

// Ops returns the recorded primitives in draw order.
func (r *Recorder) Ops() []Op { return r.ops }

// Count returns the number of recorded primitives of the given kind.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// DrawCalls returns the number of circle, line and image primitives.
func (r *Recorder) DrawCalls() int {
	return r.Count(OpCircle) + r.Count(OpLine) + r.Count(OpImage)
}

// Scene is the JSON form of a recorded pass.
type Scene struct {
	Size int  `json:"size"`
	Ops  []Op `json:"ops"`
}

// MarshalJSON encodes the recording as a Scene.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	ops := r.ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(Scene{Size: r.size, Ops: ops})
}

var _ Surface = (*Recorder)(nil)
