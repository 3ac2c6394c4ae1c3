package sink

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// RasterOption configures a RasterSurface.
type RasterOption func(*RasterSurface)

// WithRasterScale renders at scale× the canvas size (default 1).
func WithRasterScale(scale float64) RasterOption {
	return func(r *RasterSurface) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithRasterBackground sets the fill used by Clear (default white).
func WithRasterBackground(c canvas.Color) RasterOption {
	return func(r *RasterSurface) { r.background = c }
}

// WithRasterStrokeWidth sets the stroke width in canvas units (default 1).
func WithRasterStrokeWidth(w float64) RasterOption {
	return func(r *RasterSurface) { r.strokeWidth = w }
}

// RasterSurface draws primitives into a bitmap.
type RasterSurface struct {
	size        int
	scale       float64
	background  canvas.Color
	strokeWidth float64
	dc          *gg.Context
	err         error
}

// NewRasterSurface creates a raster surface for a size×size canvas. Call
// Close when done.
func NewRasterSurface(size int, opts ...RasterOption) *RasterSurface {
	r := &RasterSurface{size: size, scale: 1, background: "#FFFFFF", strokeWidth: 1}
	for _, opt := range opts {
		opt(r)
	}
	px := r.px(float64(size))
	r.dc = gg.NewContext(int(px), int(px))
	r.Clear()
	return r
}

func (r *RasterSurface) px(v float64) float64 { return v * r.scale }

func (r *RasterSurface) Size() int { return r.size }

func (r *RasterSurface) Clear() {
	r.err = nil
	if r.background == "" {
		r.dc.Clear()
		return
	}
	r.dc.ClearWithColor(gg.Hex(string(r.background)))
}

func (r *RasterSurface) stroke(c canvas.Color) {
	r.dc.SetColor(gg.Hex(string(c)).Color())
	r.dc.SetLineWidth(r.px(r.strokeWidth))
	if err := r.dc.Stroke(); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *RasterSurface) StrokeCircle(center canvas.Point, radius float64, c canvas.Color) {
	r.dc.DrawCircle(r.px(center.X), r.px(center.Y), r.px(radius))
	r.stroke(c)
}

func (r *RasterSurface) StrokeLine(from, to canvas.Point, c canvas.Color) {
	r.dc.DrawLine(r.px(from.X), r.px(from.Y), r.px(to.X), r.px(to.Y))
	r.stroke(c)
}

func (r *RasterSurface) DrawImage(_ string, img image.Image, topLeft canvas.Point, size float64) {
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         r.px(topLeft.X),
		Y:         r.px(topLeft.Y),
		DstWidth:  r.px(size),
		DstHeight: r.px(size),
	})
}

// Placeholder writes text centred on the canvas with the basic bitmap face.
func (r *RasterSurface) Placeholder(text string) {
	face := basicfont.Face7x13
	d := font.Drawer{Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Metrics().Height.Ceil()

	label := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(label, label.Bounds(), image.Transparent, image.Point{}, draw.Src)
	d.Dst = label
	d.Src = image.NewUniform(color.Black)
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(text)

	half := float64(r.size) / 2
	r.dc.DrawImageEx(gg.ImageBufFromImage(label), gg.DrawImageOptions{
		X:         r.px(half - float64(w)/2),
		Y:         r.px(half - float64(h)/2),
		DstWidth:  r.px(float64(w)),
		DstHeight: r.px(float64(h)),
	})
}

// Image returns the current bitmap.
func (r *RasterSurface) Image() image.Image { return r.dc.Image() }

// PNG encodes the bitmap. It reports the first stroke error of the pass.
func (r *RasterSurface) PNG() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	var buf bytes.Buffer
	if err := r.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases the drawing context.
func (r *RasterSurface) Close() error { return r.dc.Close() }

var _ canvas.Surface = (*RasterSurface)(nil)
