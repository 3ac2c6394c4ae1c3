// Package httputil provides retry support for the chart API clients.
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// marked transient with [Retryable] (connection failures, 5xx responses).
// Everything else is returned immediately:
//
//	err := httputil.Retry(ctx, httputil.DefaultPolicy, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
package httputil
