package natalcharts

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/matzehuels/natalchart/pkg/cache"
	"github.com/matzehuels/natalchart/pkg/chart"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/integrations"
)

// DefaultBaseURL is the public chart service.
const DefaultBaseURL = "https://api.natalcharts.app"

// Client talks to the chart service.
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(c cache.Cache, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(c, "natalcharts:", cache.TTLChart, nil),
		baseURL: strings.TrimRight(baseURL, "/"),
		keyer:   cache.NewDefaultKeyer(),
	}
}

// SetKeyer replaces the cache keyer, e.g. with a scoped one.
func (c *Client) SetKeyer(k cache.Keyer) { c.keyer = k }

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Chart fetches the chart for req. A reply without the person marker is
// returned as is; callers render it as the empty state.
func (c *Client) Chart(ctx context.Context, req Request, refresh bool) (*chart.Response, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	var resp chart.Response
	hit, err := c.Cached(ctx, c.keyer.ChartKey(req.CacheKey()), refresh, &resp, func() error {
		resp = chart.Response{}
		return c.PostForm(ctx, c.baseURL+"/chart", req.Form(), &resp)
	})
	if err != nil {
		return nil, false, wrap(err, "fetch chart for %s", req)
	}
	return &resp, hit, nil
}

// Locate resolves a free-text place. An empty answer from the service is
// reported as LOCATION_NOT_FOUND.
func (c *Client) Locate(ctx context.Context, query string, refresh bool) (*Location, bool, error) {
	if err := apperr.ValidateQuery(query); err != nil {
		return nil, false, err
	}
	query = strings.TrimSpace(query)

	var reply geocodeReply
	hit, err := c.CachedFor(ctx, c.keyer.LocationKey(query), cache.TTLLocation, refresh, &reply, func() error {
		reply = geocodeReply{}
		err := c.PostForm(ctx, c.baseURL+"/geocode", url.Values{"q": {query}}, &reply)
		if err != nil && !errors.Is(err, integrations.ErrNotFound) {
			return err
		}
		if _, ok := reply.location(); !ok {
			return errNoMatch
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNoMatch) {
		return nil, false, wrap(err, "locate %q", query)
	}
	loc, ok := reply.location()
	if !ok {
		return nil, false, apperr.New(apperr.ErrCodeLocationNotFound, "no place matches %q", query)
	}
	return loc, hit, nil
}

// errNoMatch keeps empty geocode answers out of the cache.
var errNoMatch = errors.New("no match")

func wrap(err error, format string, args ...any) error {
	var coded *apperr.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.ErrCodeTimeout, err, format, args...)
	case errors.Is(err, integrations.ErrNotFound):
		return apperr.Wrap(apperr.ErrCodeNotFound, err, format, args...)
	case errors.Is(err, integrations.ErrNetwork):
		return apperr.Wrap(apperr.ErrCodeNetwork, err, format, args...)
	default:
		return apperr.Wrap(apperr.ErrCodeInternal, err, format, args...)
	}
}
