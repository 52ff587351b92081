// Package httputil provides HTTP retry helpers for package registry clients.
//
// [Retry] wraps HTTP requests with automatic retry for transient failures:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return nil
//	})
//
// Only errors wrapped in [RetryableError] are retried; anything else is
// treated as permanent and returned immediately. Response caching lives in
// pkg/cache, which the registry clients layer on top of these retries.
package httputil
