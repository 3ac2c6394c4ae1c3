// Package pipeline provides the chart pipeline shared by the CLI and the
// HTTP server.
//
// The pipeline consists of three stages:
//
//  1. Fetch: resolve the place and request the chart from the chart service
//  2. Layout: plan the wheel (divisions, placements, aspect lines)
//  3. Render: draw the wheel onto one surface per requested format
//
// Every stage is cached: geocoding and charts by the API client, artifacts
// by the Runner keyed on the chart hash and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Place:   "Berlin",
//	    Year:    1990, Month: 6, Day: 15, Hour: 14, Minute: 30,
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/natalchart/pkg/cache"
	"github.com/matzehuels/natalchart/pkg/chart"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/wheel"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG pixel density.
	DefaultScale = 1.0

	// DefaultStrokeWidth is the line width of rings, ticks and aspects.
	DefaultStrokeWidth = 1.0

	// DefaultSettleTimeout bounds the wait for icons that are still loading.
	DefaultSettleTimeout = 5 * time.Second
)

// Format constants for output formats.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatJSON  = "json"
	FormatDOT   = "dot"
	FormatGraph = "graph"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:   true,
	FormatPNG:   true,
	FormatJSON:  true,
	FormatDOT:   true,
	FormatGraph: true,
}

// ContentType returns the MIME type of a rendered format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatGraph:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz"
	}
}

// Extension returns the file extension of a rendered format.
func Extension(format string) string {
	switch format {
	case FormatGraph:
		return "graph.svg"
	case FormatDOT:
		return "dot"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one chart run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Subject
	Name     string                `json:"name,omitempty"`
	Place    string                `json:"place,omitempty"`    // free-text place, geocoded when Location is nil
	Location *natalcharts.Location `json:"location,omitempty"` // skips geocoding
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Day      int                   `json:"day"`
	Hour     int                   `json:"hour"`
	Minute   int                   `json:"minute"`
	Refresh  bool                  `json:"refresh,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Compact      bool     `json:"compact,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	StrokeWidth  float64  `json:"stroke_width,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`     // aspect graph node labels
	Conjunctions bool     `json:"conjunctions,omitempty"` // aspect graph conjunction edges

	// Runtime options (not serialized)
	Logger        *log.Logger   `json:"-"`
	SettleTimeout time.Duration `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Request is what was sent to the chart service.
	Request natalcharts.Request

	// Response is the chart service reply.
	Response *chart.Response

	// ChartHash is the content hash of the response.
	ChartHash string

	// Layout is the planned wheel, nil for the empty state.
	Layout *wheel.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Empty reports whether the service returned no chart.
func (r *Result) Empty() bool { return !r.Response.HasChart() }

// Stats contains pipeline execution statistics.
type Stats struct {
	Planets    int
	Aspects    int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LocationHit bool // Whether the geocode answer came from cache
	ChartHit    bool // Whether the chart came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperr.New(apperr.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, dot, graph)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats parses a comma-separated format list.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateSubject(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 || o.StrokeWidth < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "scale and stroke_width must not be negative")
	}
	o.validated = true
	return nil
}

// ValidateSubject checks the date and that a place is given.
func (o *Options) ValidateSubject() error {
	if o.Location == nil {
		if err := apperr.ValidateQuery(o.Place); err != nil {
			return err
		}
	} else if err := o.Location.Validate(); err != nil {
		return err
	}
	return apperr.ValidateDate(o.Year, o.Month, o.Day, o.Hour, o.Minute)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.StrokeWidth == 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.SettleTimeout == 0 {
		o.SettleTimeout = DefaultSettleTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Time returns the requested wall-clock moment.
func (o *Options) Time() time.Time {
	return time.Date(o.Year, time.Month(o.Month), o.Day, o.Hour, o.Minute, 0, 0, time.UTC)
}

// LayoutConfig returns the wheel geometry for the requested size class.
func (o *Options) LayoutConfig() wheel.LayoutConfig {
	return wheel.ConfigFor(o.Compact)
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format, iconSet string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		Compact:      o.Compact,
		Scale:        o.Scale,
		StrokeWidth:  o.StrokeWidth,
		Detailed:     o.Detailed,
		Conjunctions: o.Conjunctions,
		Icons:        iconSet,
	}
}
