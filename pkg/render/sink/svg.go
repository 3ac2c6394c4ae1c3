package sink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"image"
	"image/png"

	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// SVGOption configures an SVGSurface.
type SVGOption func(*SVGSurface)

// WithSVGStrokeWidth sets the width of every stroke (default 1).
func WithSVGStrokeWidth(w float64) SVGOption { return func(s *SVGSurface) { s.strokeWidth = w } }

// WithSVGBackground fills the canvas with a colour before drawing.
func WithSVGBackground(c canvas.Color) SVGOption { return func(s *SVGSurface) { s.background = c } }

// SVGSurface writes primitives as SVG elements.
type SVGSurface struct {
	size        int
	strokeWidth float64
	background  canvas.Color
	body        bytes.Buffer
	uris        map[string]string
}

// NewSVGSurface creates an SVG surface for a size×size canvas.
func NewSVGSurface(size int, opts ...SVGOption) *SVGSurface {
	s := &SVGSurface{size: size, strokeWidth: 1, uris: make(map[string]string)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SVGSurface) Size() int { return s.size }

func (s *SVGSurface) Clear() { s.body.Reset() }

func (s *SVGSurface) StrokeCircle(center canvas.Point, radius float64, c canvas.Color) {
	fmt.Fprintf(&s.body, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		center.X, center.Y, radius, c, s.strokeWidth)
}

func (s *SVGSurface) StrokeLine(from, to canvas.Point, c canvas.Color) {
	fmt.Fprintf(&s.body, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
		from.X, from.Y, to.X, to.Y, c, s.strokeWidth)
}

func (s *SVGSurface) DrawImage(id string, img image.Image, topLeft canvas.Point, size float64) {
	uri, ok := s.uris[id]
	if !ok {
		var err error
		if uri, err = dataURI(img); err != nil {
			return
		}
		s.uris[id] = uri
	}
	fmt.Fprintf(&s.body, `  <image id="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" href="%s"/>`+"\n",
		html.EscapeString(id), topLeft.X, topLeft.Y, size, size, uri)
}

func (s *SVGSurface) Placeholder(text string) {
	half := float64(s.size) / 2
	fmt.Fprintf(&s.body, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="16">%s</text>`+"\n",
		half, half, html.EscapeString(text))
}

// Bytes returns the complete SVG document.
func (s *SVGSurface) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.size, s.size, s.size, s.size)
	if s.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", s.background)
	}
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func dataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

var _ canvas.Surface = (*SVGSurface)(nil)
