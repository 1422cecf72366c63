// Package source loads playlist text from local files and remote URLs. Remote
// fetches go through the shared HTTP client with per-host rate limiting, a
// one-retry policy, conditional GET against the sqlite cache, and gzip/brotli
// response decoding.
package source

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/m3umerge/m3u-merge/internal/httpclient"
)

// ErrUnavailable marks a source that could not be read at all. Callers decide
// whether that is fatal (first source) or skippable (later sources).
var ErrUnavailable = errors.New("source: unavailable")

// Loader fetches source texts. The zero value works: it uses the default
// client and no cache.
type Loader struct {
	Client *http.Client
	Cache  *Cache
}

// IsRemote reports whether ref is an http(s) URL rather than a local path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load returns the playlist text behind ref. Local paths are read from disk;
// URLs are downloaded with conditional GET, serving the cached body on 304.
func (l *Loader) Load(ctx context.Context, ref string) (string, error) {
	if !IsRemote(ref) {
		data, err := os.ReadFile(ref)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, ref, err)
		}
		return string(data), nil
	}
	return l.fetch(ctx, ref)
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	if err := httpclient.Hosts.Wait(ctx, url); err != nil {
		return "", err
	}

	var cached *Entry
	if l.Cache != nil {
		e, err := l.Cache.Get(url)
		if err != nil {
			return "", fmt.Errorf("source: cache read %s: %w", url, err)
		}
		cached = e
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("source: build request: %w", err)
	}
	req.Header.Set("User-Agent", httpclient.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := httpclient.DoWithRetry(ctx, l.Client, req, httpclient.SourceRetryPolicy)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return string(cached.Body), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: HTTP %d", ErrUnavailable, url, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", fmt.Errorf("source: read %s: %w", url, err)
	}

	if l.Cache != nil {
		err := l.Cache.Put(&Entry{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			ContentHash:  contentHash(body),
			Body:         body,
		})
		if err != nil {
			return "", fmt.Errorf("source: cache write %s: %w", url, err)
		}
	}
	return string(body), nil
}

// decodeBody reads the full response body, decompressing it if the server
// honoured our Accept-Encoding. Setting that header by hand disables the
// transport's transparent gzip, so both codings are handled here.
func decodeBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(r)
}

// contentHash is a short sha256 prefix used to spot provider-side changes
// when validators are absent.
func contentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}
