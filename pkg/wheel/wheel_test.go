package wheel

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/natalchart/pkg/chart"
)

const eps = 1e-9

var testSigns = []string{
	"Capricorn", "Aquarius", "Pisces", "Aries", "Taurus", "Gemini",
	"Cancer", "Leo", "Virgo", "Libra", "Scorpio", "Sagittarius",
}

func aspect(first, second, typ string) chart.Aspect {
	return chart.Aspect{First: first, Second: second, TypeName: typ}
}

func body(key, id, sign string, lon float64, house string, aspects ...chart.Aspect) chart.Planet {
	return chart.Planet{
		Key:     key,
		Planet:  chart.Body{ID: id, Sign: sign, Signlon: lon},
		House:   house,
		Aspects: aspects,
	}
}

// testChart mirrors pkg/chart/testdata/chart.json.
func testChart() *chart.Chart {
	houses := make(map[string]chart.House, chart.HouseCount)
	for i, s := range testSigns {
		houses[chart.HouseKey(i)] = chart.House{Sign: s}
	}
	return &chart.Chart{
		Houses: houses,
		Planets: chart.Planets{
			body("Sun", "Sun", "Capricorn", 10, "House1",
				aspect("Sun", "Moon", chart.Square),
				aspect("Sun", "Mars", chart.Opposition)),
			body("Ascendant", "Asc", "Capricorn", 15, "House1",
				aspect("Asc", "Mars", chart.Trine)),
			body("Moon", "Moon", "Aries", 20, "House4",
				aspect("Moon", "Sun", chart.Square),
				aspect("Moon", "Venus", chart.Conjunction)),
			body("Mars", "Mars", "Cancer", 5, "House7",
				aspect("Mars", "Sun", chart.Opposition),
				aspect("Mars", "Asc", chart.Trine),
				aspect("Mars", "Chiron", chart.Sextile)),
			body("Venus", "Venus", "Aries", 22.5, "House4",
				aspect("Venus", "Moon", chart.Conjunction)),
		},
	}
}

func chartWithAscendant(lon float64) *chart.Chart {
	c := testChart()
	for i := range c.Planets {
		if c.Planets[i].Name() == chart.Ascendant {
			c.Planets[i].Planet.Signlon = lon
		}
	}
	return c
}

func mod360(a float64) float64 {
	m := math.Mod(a, 360)
	if m < 0 {
		m += 360
	}
	if 360-m < eps {
		m = 0
	}
	return m
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestUnitVector(t *testing.T) {
	tests := []struct {
		deg  float64
		want Vector
	}{
		{0, Vector{1, 0}},
		{90, Vector{0, 1}},
		{180, Vector{-1, 0}},
		{270, Vector{0, -1}},
		{-90, Vector{0, -1}},
		{45, Vector{math.Sqrt2 / 2, math.Sqrt2 / 2}},
	}
	for _, tt := range tests {
		got := UnitVector(tt.deg)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("UnitVector(%v) = %+v, want %+v", tt.deg, got, tt.want)
		}
		if !near(math.Hypot(got.X, got.Y), 1) {
			t.Errorf("UnitVector(%v) is not unit length", tt.deg)
		}
	}
}

func TestLayoutConfig(t *testing.T) {
	tests := []struct {
		name                         string
		cfg                          LayoutConfig
		origin, inner, icon, tick, r float64
	}{
		{"full", Full, 300, 240, 24, 20, 180},
		{"compact", Compact, 150, 120, 12, 10, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Origin(); got.X != tt.origin || got.Y != tt.origin {
				t.Errorf("Origin() = %+v", got)
			}
			if got := tt.cfg.InnerRadius(); got != tt.inner {
				t.Errorf("InnerRadius() = %v, want %v", got, tt.inner)
			}
			if got := tt.cfg.IconSize(); !near(got, tt.icon) {
				t.Errorf("IconSize() = %v, want %v", got, tt.icon)
			}
			if got := tt.cfg.PlanetTickLength(); got != tt.tick {
				t.Errorf("PlanetTickLength() = %v, want %v", got, tt.tick)
			}
			if got := tt.cfg.AspectLineRadius(); got != tt.r {
				t.Errorf("AspectLineRadius() = %v, want %v", got, tt.r)
			}
			if err := tt.cfg.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}

	if ConfigFor(true) != Compact || ConfigFor(false) != Full {
		t.Error("ConfigFor selected the wrong size")
	}
	bad := LayoutConfig{CanvasSize: 100, OuterRadius: 80, WallThickness: 10}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted a wheel larger than its canvas")
	}
}

func TestComputeDivisionsCoverage(t *testing.T) {
	for asc := 0.0; asc < 360; asc += 7.5 {
		divisions, err := ComputeDivisions(chartWithAscendant(asc))
		if err != nil {
			t.Fatalf("asc %v: %v", asc, err)
		}
		if len(divisions) != chart.HouseCount {
			t.Fatalf("asc %v: got %d divisions", asc, len(divisions))
		}

		seen := make(map[int]bool)
		for i, d := range divisions {
			if !near(d.CanvasStart-d.CanvasEnd, DivisionWidth) {
				t.Errorf("asc %v division %d: width %v", asc, i, d.CanvasStart-d.CanvasEnd)
			}
			if d.CanvasStart >= 360 {
				t.Errorf("asc %v division %d: start %v not normalised", asc, i, d.CanvasStart)
			}
			next := divisions[(i+1)%len(divisions)]
			if !near(mod360(d.CanvasEnd), mod360(next.CanvasStart)) {
				t.Errorf("asc %v division %d: end %v does not meet next start %v", asc, i, d.CanvasEnd, next.CanvasStart)
			}
			slot := int(math.Round(mod360(d.CanvasEnd-asc) / DivisionWidth))
			if seen[slot] {
				t.Errorf("asc %v division %d overlaps another division", asc, i)
			}
			seen[slot] = true
		}
	}
}

func TestComputeDivisionsRotation(t *testing.T) {
	base, err := ComputeDivisions(chartWithAscendant(3))
	if err != nil {
		t.Fatal(err)
	}
	for _, delta := range []float64{1, 12.5, 26.9, 90, 271} {
		rotated, err := ComputeDivisions(chartWithAscendant(3 + delta))
		if err != nil {
			t.Fatal(err)
		}
		for i := range base {
			if got := mod360(rotated[i].CanvasStart - base[i].CanvasStart - delta); !near(got, 0) {
				t.Errorf("delta %v division %d: start rotated by wrong amount", delta, i)
			}
			if got := mod360(rotated[i].CanvasEnd - base[i].CanvasEnd - delta); !near(got, 0) {
				t.Errorf("delta %v division %d: end rotated by wrong amount", delta, i)
			}
			if rotated[i].Sign != base[i].Sign || rotated[i].HouseKey != base[i].HouseKey {
				t.Errorf("delta %v division %d: labels changed", delta, i)
			}
		}
	}
}

func TestComputeDivisionsAssignment(t *testing.T) {
	divisions, err := ComputeDivisions(testChart())
	if err != nil {
		t.Fatal(err)
	}
	d := divisions[0]
	if d.CanvasStart != 195 || d.CanvasEnd != 165 {
		t.Errorf("division 0 = [%v, %v], want [195, 165]", d.CanvasStart, d.CanvasEnd)
	}
	if d.Sign != "Capricorn" || d.HouseKey != "House1" {
		t.Errorf("division 0 labelled %s/%s", d.HouseKey, d.Sign)
	}
	if len(d.Planets) != 2 || d.Planets[0].Name != "Sun" || d.Planets[1].Name != chart.Ascendant {
		t.Errorf("division 0 planets = %+v", d.Planets)
	}
	if got := divisions[3].Planets; len(got) != 2 || got[0].Name != "Moon" || got[1].Name != "Venus" {
		t.Errorf("division 3 planets = %+v, want Moon, Venus in chart order", got)
	}
	if divisions[7].CanvasStart != -15 || divisions[7].CanvasEnd != -45 {
		t.Errorf("division 7 = [%v, %v], want [-15, -45]", divisions[7].CanvasStart, divisions[7].CanvasEnd)
	}
}

func TestComputeDivisionsMissingHouse(t *testing.T) {
	c := testChart()
	delete(c.Houses, "House5")
	if _, err := ComputeDivisions(c); err == nil {
		t.Fatal("ComputeDivisions() accepted a chart without House5")
	}
}

func TestPlanSunAngle(t *testing.T) {
	l, err := Plan(testChart(), Full)
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	if l.Divisions[0].CanvasStart != 195 {
		t.Errorf("division 0 start = %v, want 195", l.Divisions[0].CanvasStart)
	}
	sun, ok := l.Placement("Sun")
	if !ok {
		t.Fatal("Sun not placed")
	}
	if sun.Angle != 185 {
		t.Errorf("Sun angle = %v, want 185", sun.Angle)
	}

	v := UnitVector(185)
	wantFrom := v.At(Full.Origin(), 240)
	wantTo := v.At(Full.Origin(), 220)
	if !near(sun.Tick.From.X, wantFrom.X) || !near(sun.Tick.To.Y, wantTo.Y) {
		t.Errorf("Sun tick = %+v", sun.Tick)
	}
	if sun.Icon.ID != "ic_Sun" || sun.Icon.Size != 24 {
		t.Errorf("Sun icon = %+v", sun.Icon)
	}
	if asc, ok := l.Placement("Asc"); !ok || asc.Icon.ID != "ic_Ascendant" {
		t.Errorf("Ascendant placement = %+v, %v", asc, ok)
	}
}

func TestPlanRejectsMalformedChart(t *testing.T) {
	c := testChart()
	c.Planets[0].House = "House13"
	if _, err := Plan(c, Full); err == nil {
		t.Fatal("Plan() accepted a body in House13")
	}
}

func TestAnchorOutward(t *testing.T) {
	origin := Full.Origin()
	const r, size = 100.0, 24.0
	tests := []struct {
		name         string
		v            Vector
		wantX, wantY float64
	}{
		{"right top", Vector{0.6, -0.8}, 300 + 60, 300 - 24 - 80},
		{"right bottom", Vector{0.6, 0.8}, 300 + 60, 300 + 80},
		{"left top", Vector{-0.6, -0.8}, 300 - 24 - 60, 300 - 24 - 80},
		{"left bottom", Vector{-0.6, 0.8}, 300 - 24 - 60, 300 + 80},
		{"vertical axis is left", Vector{0, 1}, 300 - 24, 300 + 100},
		{"horizontal axis is bottom", Vector{1, 0}, 300 + 100, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnchorOutward(origin, tt.v, r, size)
			if !near(got.X, tt.wantX) || !near(got.Y, tt.wantY) {
				t.Errorf("AnchorOutward() = %+v, want (%v, %v)", got, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestAnchorInward(t *testing.T) {
	end := Full.Origin().Add(50, -50)
	tests := []struct {
		name         string
		v            Vector
		wantX, wantY float64
	}{
		{"right top", Vector{0.6, -0.8}, 350 - 24, 250},
		{"right bottom", Vector{0.6, 0.8}, 350 - 24, 250 - 24},
		{"left top", Vector{-0.6, -0.8}, 350, 250},
		{"left bottom", Vector{-0.6, 0.8}, 350, 250 - 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnchorInward(end, tt.v, 24)
			if !near(got.X, tt.wantX) || !near(got.Y, tt.wantY) {
				t.Errorf("AnchorInward() = %+v, want (%v, %v)", got, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSignIconAnchor(t *testing.T) {
	l, err := Plan(testChart(), Full)
	if err != nil {
		t.Fatal(err)
	}
	// Division 0 spans 195..165, so its midpoint points left along the axis.
	icon := l.SignIcons[0]
	if icon.ID != "ic_Capricorn" {
		t.Errorf("icon id = %s", icon.ID)
	}
	r := Full.SignIconRadius()
	if !near(icon.TopLeft.X, 300-24-r) || !near(icon.TopLeft.Y, 300) {
		t.Errorf("sign icon top-left = %+v", icon.TopLeft)
	}
}

func TestAspectColor(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{chart.Trine, "#58A054"},
		{chart.Square, "#FD500B"},
		{chart.Sextile, "#91B9BB"},
		{chart.Opposition, "#F49DF5"},
		{chart.Conjunction, "#000000"},
		{"quincunx", "#000000"},
		{"", "#000000"},
	}
	for _, tt := range tests {
		if got := AspectColor(tt.typ); string(got) != tt.want {
			t.Errorf("AspectColor(%q) = %s, want %s", tt.typ, got, tt.want)
		}
	}
}

func aspectPairs(lines []AspectLine) map[string]int {
	out := make(map[string]int)
	for _, l := range lines {
		out[chart.Aspect{First: l.First, Second: l.Second}.Key()]++
	}
	return out
}

func TestResolveAspectsDrawOnce(t *testing.T) {
	want := map[string]int{
		"Moon|Sun":       1,
		"Mars|Sun":       1,
		"Ascendant|Mars": 1,
	}

	forward, err := Plan(testChart(), Full)
	if err != nil {
		t.Fatal(err)
	}

	c := testChart()
	for i, j := 0, len(c.Planets)-1; i < j; i, j = i+1, j-1 {
		c.Planets[i], c.Planets[j] = c.Planets[j], c.Planets[i]
	}
	reversed, err := Plan(c, Full)
	if err != nil {
		t.Fatal(err)
	}

	for name, l := range map[string]*Layout{"forward": forward, "reversed": reversed} {
		got := aspectPairs(l.Aspects)
		if len(got) != len(want) || len(l.Aspects) != len(want) {
			t.Errorf("%s: lines = %v, want %v", name, got, want)
			continue
		}
		for k, n := range want {
			if got[k] != n {
				t.Errorf("%s: %s drawn %d times, want %d", name, k, got[k], n)
			}
		}
	}

	first := forward.Aspects[0]
	if first.First != "Sun" || first.Second != "Moon" || first.Color != SquareColor {
		t.Errorf("first line = %+v", first)
	}
	sun, _ := forward.Placement("Sun")
	if from := sun.Vector.At(Full.Origin(), Full.AspectLineRadius()); !near(first.From.X, from.X) || !near(first.From.Y, from.Y) {
		t.Errorf("line does not start at the Sun: %+v", first.From)
	}
}

func TestResolveAspectsOneSided(t *testing.T) {
	c := testChart()
	for i := range c.Planets {
		if c.Planets[i].Name() == "Mars" {
			c.Planets[i].Aspects = nil
		}
	}
	l, err := Plan(c, Full)
	if err != nil {
		t.Fatal(err)
	}
	got := aspectPairs(l.Aspects)
	if got["Mars|Sun"] != 1 || got["Ascendant|Mars"] != 1 {
		t.Errorf("aspects listed on one side only were not drawn: %v", got)
	}
}

func TestResolveAspectsSuppressesConjunctions(t *testing.T) {
	c := testChart()
	for i := range c.Planets {
		for j := range c.Planets[i].Aspects {
			c.Planets[i].Aspects[j].TypeName = chart.Conjunction
		}
	}
	l, err := Plan(c, Full)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Aspects) != 0 {
		t.Errorf("conjunctions produced %d lines", len(l.Aspects))
	}
}

func TestResolveAspectsSkipsSelfAndUnknown(t *testing.T) {
	placements := []PlanetPlacement{
		{Name: "Sun", Vector: UnitVector(0), Aspects: chart.Aspects{
			aspect("Sun", "Sun", chart.Trine),
			aspect("Sun", "Pluto", chart.Square),
		}},
	}
	if got := ResolveAspects(placements, Full); len(got) != 0 {
		t.Errorf("ResolveAspects() = %+v, want none", got)
	}
}

func TestLayoutJSON(t *testing.T) {
	l, err := Plan(testChart(), Compact)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var decoded struct {
		Divisions []Division   `json:"divisions"`
		Aspects   []AspectLine `json:"aspects"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(decoded.Divisions) != 12 || len(decoded.Aspects) != 3 {
		t.Errorf("decoded %d divisions and %d aspects", len(decoded.Divisions), len(decoded.Aspects))
	}
}
