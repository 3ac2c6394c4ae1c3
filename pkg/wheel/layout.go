package wheel

import (
	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// IconPrefix is prepended to sign and body names to form icon ids.
const IconPrefix = "ic_"

// IconID returns the icon id for a sign or body name.
func IconID(name string) string {
	return IconPrefix + chart.CanonicalName(name)
}

// Segment is a straight stroke.
type Segment struct {
	From canvas.Point `json:"from"`
	To   canvas.Point `json:"to"`
}

// Icon is a square image placement.
type Icon struct {
	ID      string       `json:"id"`
	TopLeft canvas.Point `json:"top_left"`
	Size    float64      `json:"size"`
}

// PlanetPlacement is the resolved position of one body.
type PlanetPlacement struct {
	Name     string        `json:"name"`
	Sign     string        `json:"sign"`
	Division int           `json:"division"`
	Angle    float64       `json:"angle"`
	Vector   Vector        `json:"-"`
	Tick     Segment       `json:"tick"`
	Icon     Icon          `json:"icon"`
	Aspects  chart.Aspects `json:"-"`
}

// Layout is everything a render pass draws, in draw order per kind.
type Layout struct {
	Config    LayoutConfig      `json:"config"`
	Divisions []Division        `json:"divisions"`
	Ticks     []Segment         `json:"ticks"`
	SignIcons []Icon            `json:"sign_icons"`
	Planets   []PlanetPlacement `json:"planets"`
	Aspects   []AspectLine      `json:"aspects"`
}

// PlanetsIn returns the placements of division i in chart order.
func (l *Layout) PlanetsIn(i int) []PlanetPlacement {
	var out []PlanetPlacement
	for _, p := range l.Planets {
		if p.Division == i {
			out = append(out, p)
		}
	}
	return out
}

// Placement looks a body up by name.
func (l *Layout) Placement(name string) (PlanetPlacement, bool) {
	name = chart.CanonicalName(name)
	for _, p := range l.Planets {
		if p.Name == name {
			return p, true
		}
	}
	return PlanetPlacement{}, false
}

// AnchorOutward returns the top-left corner for an icon that sits at radius r
// along v and must grow away from the centre line it is anchored on: right of
// it in the right half, above it in the top half.
func AnchorOutward(origin canvas.Point, v Vector, r, size float64) canvas.Point {
	x := origin.X - size
	if v.Right() {
		x = origin.X
	}
	y := origin.Y
	if v.Top() {
		y = origin.Y - size
	}
	return canvas.Point{X: x + r*v.X, Y: y + r*v.Y}
}

// AnchorInward returns the top-left corner for an icon placed next to point
// end and growing back toward the centre of the wheel.
func AnchorInward(end canvas.Point, v Vector, size float64) canvas.Point {
	x := end.X
	if v.Right() {
		x = end.X - size
	}
	y := end.Y - size
	if v.Top() {
		y = end.Y
	}
	return canvas.Point{X: x, Y: y}
}

// Plan computes the full layout of c. It validates the chart first so a
// malformed input fails before anything is drawn.
func Plan(c *chart.Chart, cfg LayoutConfig) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	divisions, err := ComputeDivisions(c)
	if err != nil {
		return nil, err
	}

	origin := cfg.Origin()
	outer, inner := cfg.OuterRadius, cfg.InnerRadius()
	size := cfg.IconSize()
	tickEnd := inner - cfg.PlanetTickLength()

	l := &Layout{Config: cfg, Divisions: divisions}
	for _, d := range divisions {
		start := UnitVector(d.CanvasStart)
		l.Ticks = append(l.Ticks, Segment{From: start.At(origin, outer), To: start.At(origin, inner)})

		mid := UnitVector(d.Midpoint())
		l.SignIcons = append(l.SignIcons, Icon{
			ID:      IconID(d.Sign),
			TopLeft: AnchorOutward(origin, mid, cfg.SignIconRadius(), size),
			Size:    size,
		})

		for _, p := range d.Planets {
			angle := d.AngleOf(p.Location)
			v := UnitVector(angle)
			tick := Segment{From: v.At(origin, inner), To: v.At(origin, tickEnd)}
			l.Planets = append(l.Planets, PlanetPlacement{
				Name:     p.Name,
				Sign:     p.Sign,
				Division: d.Index,
				Angle:    angle,
				Vector:   v,
				Tick:     tick,
				Icon:     Icon{ID: IconID(p.Name), TopLeft: AnchorInward(tick.To, v, size), Size: size},
				Aspects:  p.Aspects,
			})
		}
	}
	l.Aspects = ResolveAspects(l.Planets, cfg)
	return l, nil
}
