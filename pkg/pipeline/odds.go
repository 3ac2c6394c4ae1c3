package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/natalchart/pkg/chart"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
)

const (
	// OddsStep is the spacing between samples.
	OddsStep = 2 * time.Hour

	// DefaultOddsWorkers bounds concurrent chart requests.
	DefaultOddsWorkers = 4
)

// OddsOptions describes a day whose birth time is unknown.
type OddsOptions struct {
	Name     string                `json:"name,omitempty"`
	Place    string                `json:"place,omitempty"`
	Location *natalcharts.Location `json:"location,omitempty"`
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Day      int                   `json:"day"`
	Refresh  bool                  `json:"refresh,omitempty"`
	Workers  int                   `json:"-"`
}

// OddsResult is the Sun sign distribution over the sampled day.
type OddsResult struct {
	Location natalcharts.Location `json:"location"`
	Samples  []time.Time          `json:"samples"`
	Odds     []chart.SignOdds     `json:"odds"`
}

// SampleTimes returns start, start+step, ... up to and including end.
func SampleTimes(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || end.Before(start) {
		return nil
	}
	var out []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

// Odds samples the chart every OddsStep from midnight to the following
// midnight inclusive and reports how often the Sun fell in each sign.
func (r *Runner) Odds(ctx context.Context, opts OddsOptions) (*OddsResult, error) {
	if err := apperr.ValidateDate(opts.Year, opts.Month, opts.Day, 0, 0); err != nil {
		return nil, err
	}
	if opts.Location == nil {
		if err := apperr.ValidateQuery(opts.Place); err != nil {
			return nil, err
		}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultOddsWorkers
	}

	loc, _, err := r.Resolve(ctx, opts.Place, opts.Location, opts.Refresh)
	if err != nil {
		return nil, err
	}

	start := time.Date(opts.Year, time.Month(opts.Month), opts.Day, 0, 0, 0, 0, time.UTC)
	times := SampleTimes(start, start.Add(24*time.Hour), OddsStep)
	samples := make([]*chart.Response, len(times))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range times {
		g.Go(func() error {
			req := natalcharts.Request{Name: opts.Name, Time: t, Location: *loc}
			resp, _, err := r.Client.Chart(gctx, req, opts.Refresh)
			if err != nil {
				return err
			}
			samples[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("sampled day", "place", loc.Name, "samples", len(samples))
	return &OddsResult{
		Location: *loc,
		Samples:  times,
		Odds:     chart.SunSignOdds(samples),
	}, nil
}
