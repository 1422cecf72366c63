// Package httpclient provides the shared tuned HTTP client used for every
// remote playlist download, plus a one-retry policy and a per-host rate
// limiter so repeated refreshes don't hammer a provider.
package httpclient

import (
	"net/http"
	"time"
)

// UserAgent is sent on every outbound request.
const UserAgent = "m3u-merge/1.0"

const (
	defaultTimeout         = 60 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	maxIdleConnsPerHost    = 8
)

var defaultClient = &http.Client{
	Timeout: defaultTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	},
}

// Default returns the shared client.
func Default() *http.Client {
	return defaultClient
}

// WithTimeout returns a client sharing Default's transport with its own timeout.
func WithTimeout(timeout time.Duration) *http.Client {
	t, ok := defaultClient.Transport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{Timeout: timeout, Transport: t.Clone()}
}
