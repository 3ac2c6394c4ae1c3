// Package natalcharts is a client for the natalcharts.app chart service.
//
// The service exposes two form-encoded POST endpoints:
//
//   - /chart computes a chart for a moment and place
//   - /geocode resolves a free-text place into coordinates and a UTC offset
//
// Results are cached through [cache.Cache]; charts for a fixed moment never
// change, so repeated renders of the same chart cost one request.
//
//	c := natalcharts.NewClient(store, natalcharts.DefaultBaseURL)
//	loc, err := c.Locate(ctx, "New York, NY", false)
//	resp, err := c.Chart(ctx, natalcharts.Request{Time: t, Location: *loc}, false)
//
// [cache.Cache]: github.com/matzehuels/natalchart/pkg/cache.Cache
package natalcharts
