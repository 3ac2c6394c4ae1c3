package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/pipeline"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	defaultTime = "12:00" // noon when no birth time is known
)

// subjectOpts identifies a moment and a place. Shared by render and odds.
type subjectOpts struct {
	name      string
	place     string
	date      string
	clock     string
	lat       float64
	lon       float64
	utcOffset float64
	refresh   bool
	noCache   bool
}

func (s *subjectOpts) register(cmd *cobra.Command, withClock bool) {
	cmd.Flags().StringVarP(&s.place, "place", "p", "", "birth place, geocoded by the chart service")
	cmd.Flags().StringVarP(&s.date, "date", "d", "", "birth date (YYYY-MM-DD)")
	if withClock {
		cmd.Flags().StringVarP(&s.clock, "time", "t", defaultTime, "local birth time (HH:MM)")
	}
	cmd.Flags().StringVar(&s.name, "name", "", "chart name")
	cmd.Flags().Float64Var(&s.lat, "lat", 0, "latitude; skips geocoding together with --lon")
	cmd.Flags().Float64Var(&s.lon, "lon", 0, "longitude; skips geocoding together with --lat")
	cmd.Flags().Float64Var(&s.utcOffset, "utc-offset", 0, "UTC offset in hours, used with --lat/--lon")
	cmd.Flags().BoolVar(&s.refresh, "refresh", false, "bypass cached answers from the chart service")
	cmd.Flags().BoolVar(&s.noCache, "no-cache", false, "disable the cache entirely")
	_ = cmd.MarkFlagRequired("date")
}

// location returns explicit coordinates when both --lat and --lon are set.
func (s *subjectOpts) location(cmd *cobra.Command) (*natalcharts.Location, error) {
	latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
	if latSet != lonSet {
		return nil, apperr.New(apperr.ErrCodeInvalidLocation, "--lat and --lon must be given together")
	}
	if !latSet {
		if s.place == "" {
			return nil, apperr.New(apperr.ErrCodeInvalidInput, "either --place or --lat/--lon is required")
		}
		return nil, nil
	}
	return &natalcharts.Location{Name: s.place, Lat: s.lat, Lon: s.lon, UTCOffset: s.utcOffset}, nil
}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	subjectOpts
	output       string  // output file (single format) or base path
	formats      string  // comma-separated output formats
	compact      bool    // phone-sized wheel
	scale        float64 // raster scale factor
	strokeWidth  float64 // line width multiplier
	detailed     bool    // label aspect graph nodes with sign and house
	conjunctions bool    // include conjunctions in the aspect graph
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch a natal chart and draw it as a wheel",
		Long: `Fetch a natal chart for a birth date, time and place and draw it.

Formats:
  svg    vector wheel (default)
  png    raster wheel
  json   layout and draw operations
  dot    aspect graph in Graphviz DOT
  graph  aspect graph drawn by Graphviz`,
		Example: `  natalchart render --place "New York, NY" --date 1990-01-01 --time 08:30
  natalchart render --lat 51.5 --lon -0.12 --date 1985-07-13 -f svg,png -o wheel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.renderPipelineOpts(cmd, &opts)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), po, &opts)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg, png, json, dot, graph (comma-separated)")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "draw the compact wheel used on phones")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "raster scale factor")
	cmd.Flags().Float64Var(&opts.strokeWidth, "stroke-width", 0, "line width multiplier")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label aspect graph nodes with sign and house")
	cmd.Flags().BoolVar(&opts.conjunctions, "conjunctions", false, "include conjunctions in the aspect graph")

	return cmd
}

// renderPipelineOpts merges flags over the configured render defaults.
func (c *CLI) renderPipelineOpts(cmd *cobra.Command, opts *renderOpts) (pipeline.Options, error) {
	year, month, day, err := parseDate(opts.date)
	if err != nil {
		return pipeline.Options{}, err
	}
	hour, minute, err := parseClock(opts.clock)
	if err != nil {
		return pipeline.Options{}, err
	}
	loc, err := opts.location(cmd)
	if err != nil {
		return pipeline.Options{}, err
	}

	rc := c.cfg.Render
	po := pipeline.Options{
		Name:         opts.name,
		Place:        opts.place,
		Location:     loc,
		Year:         year,
		Month:        month,
		Day:          day,
		Hour:         hour,
		Minute:       minute,
		Refresh:      opts.refresh,
		Formats:      rc.Formats,
		Compact:      rc.Compact,
		Scale:        rc.Scale,
		StrokeWidth:  rc.StrokeWidth,
		Detailed:     opts.detailed,
		Conjunctions: opts.conjunctions,
		Logger:       loggerFromContext(cmd.Context()),
	}
	if cmd.Flags().Changed("format") {
		po.Formats = pipeline.ParseFormats(opts.formats)
	}
	if cmd.Flags().Changed("compact") {
		po.Compact = opts.compact
	}
	if cmd.Flags().Changed("scale") {
		po.Scale = opts.scale
	}
	if cmd.Flags().Changed("stroke-width") {
		po.StrokeWidth = opts.strokeWidth
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return po, nil
}

func (c *CLI) runRender(ctx context.Context, po pipeline.Options, opts *renderOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Drawing chart...")
	spinner.Start()
	result, err := runner.Execute(ctx, po)
	spinner.Stop()
	if err != nil {
		return err
	}

	base := basePath(opts.output, po.Name)
	var written []string
	for _, format := range po.Formats {
		path := outputPath(opts.output, base, format, len(po.Formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return apperr.Wrap(apperr.ErrCodeInternal, err, "write %s", path)
		}
		written = append(written, path)
	}

	prog.done(fmt.Sprintf("Rendered %d file(s)", len(written)))
	if result.Empty() {
		printWarning("The chart service returned no chart; drew the empty wheel")
	} else {
		printSuccess("Chart for %s", result.Request)
		printChartStats(result.Response.SunSign(), result.Stats.Planets, result.Stats.Aspects, result.CacheInfo.ChartHit)
	}
	for _, path := range written {
		printFile(path)
	}
	return nil
}

// parseDate parses YYYY-MM-DD. Range checks happen in pipeline validation.
func parseDate(s string) (year, month, day int, err error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, 0, apperr.New(apperr.ErrCodeInvalidDate, "invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// parseClock parses HH:MM. An empty string means noon.
func parseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = defaultTime
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, 0, apperr.New(apperr.ErrCodeInvalidDate, "invalid time %q (want HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// basePath derives the base output path. Without -o it is the slugged chart
// name, or "chart". A known format extension on -o is stripped.
func basePath(output, name string) string {
	if output == "" {
		slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
		if slug == "" {
			slug = "chart"
		}
		return slug
	}
	for _, format := range []string{pipeline.FormatGraph, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON, pipeline.FormatDOT} {
		if ext := "." + pipeline.Extension(format); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// outputPath returns where one format is written. A single format honours
// -o verbatim; several formats share the base path.
func outputPath(output, base, format string, count int) string {
	if count == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + pipeline.Extension(format)
}
