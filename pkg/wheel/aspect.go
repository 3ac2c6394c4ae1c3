package wheel

import (
	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/render/canvas"
)

// Aspect line colours.
const (
	TrineColor      canvas.Color = "#58A054"
	SextileColor    canvas.Color = "#91B9BB"
	OppositionColor canvas.Color = "#F49DF5"
	SquareColor     canvas.Color = "#FD500B"
)

// AspectColor returns the stroke colour for an aspect type. Unknown types use
// the default stroke.
func AspectColor(typeName string) canvas.Color {
	switch typeName {
	case chart.Trine:
		return TrineColor
	case chart.Sextile:
		return SextileColor
	case chart.Opposition:
		return OppositionColor
	case chart.Square:
		return SquareColor
	default:
		return canvas.DefaultColor
	}
}

// AspectLine is a chord between two placed bodies.
type AspectLine struct {
	First  string       `json:"first"`
	Second string       `json:"second"`
	Type   string       `json:"type"`
	From   canvas.Point `json:"from"`
	To     canvas.Point `json:"to"`
	Color  canvas.Color `json:"color"`
}

// ResolveAspects turns the aspects of placed bodies into lines. Each
// unordered pair yields at most one line, taken from whichever body lists
// it first. Conjunctions, self-aspects and aspects naming a body that was not
// placed produce nothing.
func ResolveAspects(placements []PlanetPlacement, cfg LayoutConfig) []AspectLine {
	byName := make(map[string]*PlanetPlacement, len(placements))
	for i := range placements {
		if _, dup := byName[placements[i].Name]; !dup {
			byName[placements[i].Name] = &placements[i]
		}
	}

	origin := cfg.Origin()
	radius := cfg.AspectLineRadius()
	drawn := make(map[string]bool)

	var lines []AspectLine
	for i := range placements {
		src := &placements[i]
		for _, a := range src.Aspects {
			if a.TypeName == chart.Conjunction {
				continue
			}
			_, second := a.Pair()
			if second == src.Name {
				continue
			}
			dst, ok := byName[second]
			if !ok {
				continue
			}
			key := chart.Aspect{First: src.Name, Second: second}.Key()
			if drawn[key] {
				continue
			}
			drawn[key] = true

			lines = append(lines, AspectLine{
				First:  src.Name,
				Second: second,
				Type:   a.TypeName,
				From:   src.Vector.At(origin, radius),
				To:     dst.Vector.At(origin, radius),
				Color:  AspectColor(a.TypeName),
			})
		}
	}
	return lines
}
