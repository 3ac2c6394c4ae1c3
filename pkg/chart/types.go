package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Names used by the chart service for the rising degree.
const (
	Ascendant      = "Ascendant"
	ascendantAlias = "Asc"
)

// HouseCount is the number of houses in the wheel.
const HouseCount = 12

// Aspect type names.
const (
	Conjunction = "conjunction"
	Sextile     = "sextile"
	Square      = "square"
	Trine       = "trine"
	Opposition  = "opposition"
)

// Response is the chart service payload.
type Response struct {
	// Person is present (and truthy) only when the service computed a chart.
	Person json.RawMessage `json:"person,omitempty"`
	Chart  *Chart          `json:"chart,omitempty"`
}

// HasChart reports whether the response carries a valid computed chart.
func (r *Response) HasChart() bool {
	return r != nil && r.Chart != nil && truthy(r.Person)
}

// SunSign returns the sign of the Sun, or "" when there is no chart.
func (r *Response) SunSign() string {
	if !r.HasChart() {
		return ""
	}
	if p, ok := r.Chart.Planets.Get("Sun"); ok {
		return p.Planet.Sign
	}
	return ""
}

func truthy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`, "0":
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}

// Chart holds the computed bodies and houses.
type Chart struct {
	Planets Planets          `json:"planets"`
	Houses  map[string]House `json:"houses"`
}

// House is one of the twelve houses.
type House struct {
	Sign string `json:"sign"`
}

// Body is the positional part of a planet entry.
type Body struct {
	ID      string  `json:"id"`
	Sign    string  `json:"sign"`
	Signlon float64 `json:"signlon"`
}

// Planet is a body placed in a house together with its aspects.
type Planet struct {
	Key     string  `json:"-"`
	Planet  Body    `json:"planet"`
	House   string  `json:"house"`
	Aspects Aspects `json:"aspects,omitempty"`
}

// Name returns the canonical body name, preferring the body id over the map key.
func (p Planet) Name() string {
	if p.Planet.ID != "" {
		return CanonicalName(p.Planet.ID)
	}
	return CanonicalName(p.Key)
}

// Aspect is a named angular relationship stored on the aspect list of First.
type Aspect struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	TypeName string `json:"type_name"`
}

// Pair returns both endpoint names in canonical form.
func (a Aspect) Pair() (first, second string) {
	return CanonicalName(a.First), CanonicalName(a.Second)
}

// Key returns an order-independent identity for the aspect's endpoints.
func (a Aspect) Key() string {
	first, second := a.Pair()
	if second < first {
		first, second = second, first
	}
	return first + "|" + second
}

// CanonicalName maps the service's short "Asc" alias to "Ascendant".
func CanonicalName(name string) string {
	if name == ascendantAlias {
		return Ascendant
	}
	return name
}

// HouseKey returns the house key for a zero-based index ("House1" for 0).
func HouseKey(i int) string {
	return "House" + strconv.Itoa(i+1)
}

// HouseIndex parses a house key into its zero-based index.
func HouseIndex(key string) (int, bool) {
	n, ok := strings.CutPrefix(key, "House")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(n)
	if err != nil || i < 1 || i > HouseCount || strconv.Itoa(i) != n {
		return 0, false
	}
	return i - 1, true
}

// Planets is the ordered list of bodies decoded from the service's planet object.
type Planets []Planet

// Get looks a body up by map key or canonical name.
func (ps Planets) Get(name string) (Planet, bool) {
	name = CanonicalName(name)
	for _, p := range ps {
		if CanonicalName(p.Key) == name || p.Name() == name {
			return p, true
		}
	}
	return Planet{}, false
}

// InHouse returns the bodies located in the given house, in chart order.
func (ps Planets) InHouse(key string) []Planet {
	var out []Planet
	for _, p := range ps {
		if p.House == key {
			out = append(out, p)
		}
	}
	return out
}

// UnmarshalJSON decodes a JSON object into an ordered slice.
func (ps *Planets) UnmarshalJSON(data []byte) error {
	var out Planets
	err := decodeObject(data, func(key string, dec *json.Decoder) error {
		var p Planet
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("planet %q: %w", key, err)
		}
		p.Key = key
		out = append(out, p)
		return nil
	})
	if err != nil {
		return err
	}
	*ps = out
	return nil
}

// MarshalJSON encodes the slice back into an object, keeping order.
func (ps Planets) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range ps {
		if i > 0 {
			buf.WriteByte(',')
		}
		key := p.Key
		if key == "" {
			key = p.Name()
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Aspects accepts either a JSON array or an object of aspect records.
type Aspects []Aspect

// UnmarshalJSON decodes an array, an object (values in key order) or null.
func (as *Aspects) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*as = nil
		return nil
	}
	if trimmed[0] == '[' {
		var list []Aspect
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		*as = list
		return nil
	}
	var out Aspects
	err := decodeObject(trimmed, func(key string, dec *json.Decoder) error {
		var a Aspect
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("aspect %q: %w", key, err)
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return err
	}
	*as = out
	return nil
}

// decodeObject walks the members of a JSON object in document order.
func decodeObject(data []byte, member func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := member(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
