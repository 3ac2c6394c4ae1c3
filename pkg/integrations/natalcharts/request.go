package natalcharts

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/natalchart/pkg/cache"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
)

// DefaultName is sent when a request carries no name.
const DefaultName = "Chart"

// Location is a resolved place.
type Location struct {
	Name      string  `json:"location"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	UTCOffset float64 `json:"utc_offset"`
}

// Validate checks the coordinates and offset.
func (l Location) Validate() error {
	return apperr.ValidateCoordinates(l.Lat, l.Lon, l.UTCOffset)
}

// geocodeReply is the wire form of a geocode answer: {location, geo: [lat, lon], utc_offset}.
type geocodeReply struct {
	Location  string          `json:"location"`
	Geo       []float64       `json:"geo"`
	UTCOffset json.RawMessage `json:"utc_offset"`
}

func (g geocodeReply) location() (*Location, bool) {
	if len(g.Geo) < 2 {
		return nil, false
	}
	offset, err := parseNumber(g.UTCOffset)
	if err != nil {
		return nil, false
	}
	return &Location{Name: g.Location, Lat: g.Geo[0], Lon: g.Geo[1], UTCOffset: offset}, true
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// Request asks for the chart of one moment at one place. Time is read in
// its own location's wall clock; Location.UTCOffset tells the service how
// to interpret it.
type Request struct {
	Name     string
	Time     time.Time
	Location Location
}

// Validate checks the date and place.
func (r Request) Validate() error {
	if err := apperr.ValidateDate(r.Time.Year(), int(r.Time.Month()), r.Time.Day(), r.Time.Hour(), r.Time.Minute()); err != nil {
		return err
	}
	return r.Location.Validate()
}

// Form encodes the request as the service's form fields.
func (r Request) Form() url.Values {
	name := r.Name
	if name == "" {
		name = DefaultName
	}
	return url.Values{
		"name":                {name},
		"date_year":           {strconv.Itoa(r.Time.Year())},
		"date_month":          {strconv.Itoa(int(r.Time.Month()))},
		"date_day":            {strconv.Itoa(r.Time.Day())},
		"date_hour":           {strconv.Itoa(r.Time.Hour())},
		"date_min":            {strconv.Itoa(r.Time.Minute())},
		"location_lat":        {formatFloat(r.Location.Lat)},
		"location_lon":        {formatFloat(r.Location.Lon)},
		"location_utc_offset": {formatFloat(r.Location.UTCOffset)},
	}
}

// CacheKey returns the key fields of the request.
func (r Request) CacheKey() cache.ChartKeyOpts {
	return cache.ChartKeyOpts{
		Name:      r.Name,
		Year:      r.Time.Year(),
		Month:     int(r.Time.Month()),
		Day:       r.Time.Day(),
		Hour:      r.Time.Hour(),
		Minute:    r.Time.Minute(),
		Lat:       r.Location.Lat,
		Lon:       r.Location.Lon,
		UTCOffset: r.Location.UTCOffset,
	}
}

// String is a short human description used in logs.
func (r Request) String() string {
	place := r.Location.Name
	if place == "" {
		place = fmt.Sprintf("%.4f,%.4f", r.Location.Lat, r.Location.Lon)
	}
	return r.Time.Format("2006-01-02 15:04") + " @ " + place
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
