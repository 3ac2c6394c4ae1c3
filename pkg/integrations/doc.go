// Package integrations provides the HTTP plumbing shared by the chart API
// clients.
//
// [Client] posts form-encoded requests, decodes JSON replies, maps HTTP
// status codes onto [ErrNotFound] and [ErrNetwork], and caches decoded
// results in a [cache.Cache] with retry on transient failures:
//
//	c := integrations.NewClient(store, "natalcharts:", cache.TTLChart, nil)
//	var out Result
//	hit, err := c.Cached(ctx, key, false, &out, func() error {
//	    return c.PostForm(ctx, url, form, &out)
//	})
//
// The chart service client lives in the [natalcharts] subpackage.
//
// [natalcharts]: github.com/matzehuels/natalchart/pkg/integrations/natalcharts
// [cache.Cache]: github.com/matzehuels/natalchart/pkg/cache.Cache
package integrations
