package httpclient

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter is a process-global per-host request limiter. All fetch paths
// share one limiter per scheme+host, so a refresh touching many lists on the
// same provider spreads its requests out instead of bursting.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// Hosts is the shared limiter: 4 requests/second per host, bursts of 4.
var Hosts = NewHostLimiter(4, 4)

// NewHostLimiter returns a limiter allowing perSecond requests per host with
// the given burst.
func NewHostLimiter(perSecond float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Wait blocks until the host's limiter grants a slot or ctx is done. rawURL
// is reduced to scheme+host; unparseable URLs share the "" bucket.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return h.limiterFor(rawURL).Wait(ctx)
}

func (h *HostLimiter) limiterFor(rawURL string) *rate.Limiter {
	key := ""
	if u, err := url.Parse(rawURL); err == nil {
		key = u.Scheme + "://" + u.Host
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[key] = l
	}
	return l
}
