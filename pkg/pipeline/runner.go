package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/natalchart/pkg/cache"
	"github.com/matzehuels/natalchart/pkg/chart"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/observability"
	"github.com/matzehuels/natalchart/pkg/render/canvas"
	"github.com/matzehuels/natalchart/pkg/wheel"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators: it doesn't store
// pipeline results, so multiple goroutines can share one Runner.
type Runner struct {
	Client *natalcharts.Client
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Icons supplies glyphs for planets and signs; nil renders without them.
	Icons canvas.Provider
	// IconSet names the icon source in artifact cache keys.
	IconSet string
}

// NewRunner creates a runner around client.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(client *natalcharts.Client, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	if client == nil {
		client = natalcharts.NewClient(c, "")
	}
	client.SetKeyer(keyer)
	return &Runner{
		Client: client,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// SetIcons installs an icon provider. set identifies it in cache keys, so
// artifacts drawn with different icons never collide.
func (r *Runner) SetIcons(p canvas.Provider, set string) {
	r.Icons = p
	r.IconSet = set
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Fetch
	fetchStart := time.Now()
	place := opts.Place
	observability.Pipeline().OnFetchStart(ctx, place)
	err := r.fetch(ctx, opts, result)
	result.Stats.FetchTime = time.Since(fetchStart)
	observability.Pipeline().OnFetchComplete(ctx, place, result.CacheInfo.ChartHit, result.Stats.FetchTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("fetched chart",
		"request", result.Request,
		"cached", result.CacheInfo.ChartHit,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Compact)
	layout, err := PlanLayout(result.Response, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	if layout != nil {
		result.Stats.Planets = len(layout.Planets)
		result.Stats.Aspects = len(layout.Aspects)
	}
	observability.Pipeline().OnLayoutComplete(ctx, result.Stats.Planets, result.Stats.Aspects, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout

	if layout == nil {
		r.Logger.Warn("service returned no chart, rendering the empty state")
	} else {
		r.Logger.Info("planned wheel",
			"planets", result.Stats.Planets,
			"aspects", result.Stats.Aspects,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Response, layout, result.ChartHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) fetch(ctx context.Context, opts Options, result *Result) error {
	loc, locHit, err := r.Resolve(ctx, opts.Place, opts.Location, opts.Refresh)
	if err != nil {
		return err
	}
	result.CacheInfo.LocationHit = locHit
	result.Request = natalcharts.Request{Name: opts.Name, Time: opts.Time(), Location: *loc}

	resp, chartHit, err := r.Client.Chart(ctx, result.Request, opts.Refresh)
	if err != nil {
		return err
	}
	result.Response = resp
	result.CacheInfo.ChartHit = chartHit
	result.ChartHash = ChartHash(resp)
	return nil
}

// Resolve returns loc when set and geocodes place otherwise.
func (r *Runner) Resolve(ctx context.Context, place string, loc *natalcharts.Location, refresh bool) (*natalcharts.Location, bool, error) {
	if loc != nil {
		return loc, false, loc.Validate()
	}
	found, hit, err := r.Client.Locate(ctx, place, refresh)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Debug("resolved place", "query", place, "location", found.Name, "cached", hit)
	return found, hit, nil
}

// PlanLayout plans the wheel for resp. It returns a nil layout without error
// when resp carries no chart.
func PlanLayout(resp *chart.Response, opts Options) (*wheel.Layout, error) {
	if !resp.HasChart() {
		return nil, nil
	}
	return wheel.Plan(resp.Chart, opts.LayoutConfig())
}

// ChartHash is the content hash of a response, used in artifact keys.
func ChartHash(resp *chart.Response) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, resp *chart.Response, layout *wheel.Layout, chartHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	if chartHash != "" && !opts.Refresh {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format, r.IconSet))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, partial, err := Render(ctx, resp, layout, r.Icons, opts)
	if err != nil {
		return nil, false, err
	}

	if chartHash != "" {
		for format, data := range rendered {
			if slices.Contains(partial, format) {
				r.Logger.Debug("not caching artifact with missing icons", "format", format)
				continue
			}
			key := r.Keyer.ArtifactKey(chartHash, opts.ArtifactKeyOpts(format, r.IconSet))
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
