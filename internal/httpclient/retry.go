package httpclient

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy controls when DoWithRetry retries a response.
type RetryPolicy struct {
	Retry429   bool          // on 429, wait Retry-After (capped) and retry once
	Max429Wait time.Duration // cap on the 429 wait
	Retry5xx   bool          // on 5xx, wait Backoff5xx and retry once
	Backoff5xx time.Duration
}

// SourceRetryPolicy is the policy for playlist-source fetches.
var SourceRetryPolicy = RetryPolicy{
	Retry429:   true,
	Max429Wait: 30 * time.Second,
	Retry5xx:   true,
	Backoff5xx: 2 * time.Second,
}

// DoWithRetry performs req; on 429/5xx (when the policy allows) it waits and
// retries once. Other 4xx are returned as-is. The caller must close resp.Body
// when err == nil. Requests must have no body: the retry rebuilds the request
// from its URL.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	if client == nil {
		client = Default()
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	code := resp.StatusCode

	var wait time.Duration
	switch {
	case code == http.StatusTooManyRequests && policy.Retry429:
		wait = parseRetryAfter(resp.Header.Get("Retry-After"), policy.Max429Wait)
	case code >= 500 && policy.Retry5xx:
		wait = policy.Backoff5xx
	default:
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wait):
	}

	retry, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), nil)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Header {
		retry.Header[k] = v
	}
	return client.Do(retry)
}

// parseRetryAfter parses a Retry-After value (seconds or HTTP-date), capped at max.
func parseRetryAfter(s string, max time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Second
	}
	if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
		return minDuration(time.Duration(sec)*time.Second, max)
	}
	t, err := time.Parse(time.RFC1123, s)
	if err != nil {
		return time.Second
	}
	until := time.Until(t)
	if until <= 0 {
		return 0
	}
	return minDuration(until, max)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
