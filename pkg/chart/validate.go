package chart

import (
	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// Validate checks the invariants the wheel layout depends on: all twelve
// house keys are present, the Ascendant exists, every body sits in a valid
// house, and every signlon lies in [0, 30).
func (c *Chart) Validate() error {
	if c == nil {
		return apperr.New(apperr.ErrCodeMalformedChart, "chart is missing")
	}
	for i := range HouseCount {
		key := HouseKey(i)
		h, ok := c.Houses[key]
		if !ok {
			return apperr.New(apperr.ErrCodeMalformedChart, "house %s is missing", key)
		}
		if h.Sign == "" {
			return apperr.New(apperr.ErrCodeMalformedChart, "house %s has no sign", key)
		}
	}
	if _, ok := c.Planets.Get(Ascendant); !ok {
		return apperr.New(apperr.ErrCodeMalformedChart, "chart has no %s", Ascendant)
	}
	for _, p := range c.Planets {
		if _, ok := HouseIndex(p.House); !ok {
			return apperr.New(apperr.ErrCodeMalformedChart, "%s has invalid house %q", p.Name(), p.House)
		}
		if lon := p.Planet.Signlon; lon < 0 || lon >= 30 {
			return apperr.New(apperr.ErrCodeMalformedChart, "%s signlon %g outside [0, 30)", p.Name(), lon)
		}
	}
	return nil
}

// AscendantSignlon returns the Ascendant's degree within its sign.
func (c *Chart) AscendantSignlon() (float64, error) {
	asc, ok := c.Ascendant()
	if !ok {
		return 0, apperr.New(apperr.ErrCodeMalformedChart, "chart has no %s", Ascendant)
	}
	return asc.Planet.Signlon, nil
}

// Ascendant returns the rising-degree pseudo-body.
func (c *Chart) Ascendant() (Planet, bool) {
	if c == nil {
		return Planet{}, false
	}
	return c.Planets.Get(Ascendant)
}

// HouseOf returns the house key of the named body.
func (c *Chart) HouseOf(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	p, ok := c.Planets.Get(name)
	if !ok {
		return "", false
	}
	return p.House, true
}
