package wheel

import (
	"github.com/matzehuels/natalchart/pkg/chart"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// DivisionWidth is the angular width of one house on the wheel.
const DivisionWidth = 30.0

// Division is one 30° slice of the wheel. CanvasEnd is always CanvasStart-30;
// the pair is shifted by 360 together, so CanvasEnd may be negative.
type Division struct {
	Index       int            `json:"index"`
	HouseKey    string         `json:"house"`
	Sign        string         `json:"sign"`
	CanvasStart float64        `json:"canvas_start"`
	CanvasEnd   float64        `json:"canvas_end"`
	Planets     []PlacedPlanet `json:"planets"`
}

// Midpoint is the angle halfway between the division's boundaries.
func (d Division) Midpoint() float64 {
	return d.CanvasStart + (d.CanvasEnd-d.CanvasStart)/2
}

// AngleOf returns the canvas angle of a body lying signlon degrees into the
// division.
func (d Division) AngleOf(signlon float64) float64 {
	return d.CanvasStart - signlon
}

// PlacedPlanet is a body assigned to a division.
type PlacedPlanet struct {
	Name     string        `json:"name"`
	Sign     string        `json:"sign"`
	Location float64       `json:"location"`
	Aspects  chart.Aspects `json:"aspects,omitempty"`
}

// ComputeDivisions maps the twelve houses onto canvas angles, starting at the
// Ascendant and running counter-clockwise. Bodies keep the chart's order.
// A chart missing a house or the Ascendant is rejected.
func ComputeDivisions(c *chart.Chart) ([]Division, error) {
	if c == nil {
		return nil, apperr.New(apperr.ErrCodeMalformedChart, "chart is missing")
	}
	asc, err := c.AscendantSignlon()
	if err != nil {
		return nil, err
	}

	divisions := make([]Division, chart.HouseCount)
	for i := range divisions {
		key := chart.HouseKey(i)
		house, ok := c.Houses[key]
		if !ok {
			return nil, apperr.New(apperr.ErrCodeMalformedChart, "house %s is missing", key)
		}

		begin := -float64(i)*DivisionWidth + asc
		start, end := 180+begin, 180+begin-DivisionWidth
		if start >= 360 {
			start -= 360
			end -= 360
		}

		var placed []PlacedPlanet
		for _, p := range c.Planets.InHouse(key) {
			placed = append(placed, PlacedPlanet{
				Name:     p.Name(),
				Sign:     p.Planet.Sign,
				Location: p.Planet.Signlon,
				Aspects:  p.Aspects,
			})
		}

		divisions[i] = Division{
			Index:       i,
			HouseKey:    key,
			Sign:        house.Sign,
			CanvasStart: start,
			CanvasEnd:   end,
			Planets:     placed,
		}
	}
	return divisions, nil
}

func errInvalidConfig(msg string) error {
	return apperr.New(apperr.ErrCodeInvalidInput, "layout: %s", msg)
}
