package acquire

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiters enforces a minimum interval between successive requests to
// the same host. Limiters are created lazily per host at the interval of the
// first request; stealth and basic passes share one registry so escalation
// does not double the request rate against a host.
type HostLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiters creates an empty limiter registry.
func NewHostLimiters() *HostLimiters {
	return &HostLimiters{limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until the host's limiter allows a request, or the context is
// done. A zero delay waits only for context liveness.
func (h *HostLimiters) Wait(ctx context.Context, rawURL string, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	host := hostOf(rawURL)

	h.mu.Lock()
	lim, ok := h.limiters[host]
	if !ok {
		// Burst 1: the first request goes through immediately, subsequent
		// ones space out by the politeness delay.
		lim = rate.NewLimiter(rate.Every(delay), 1)
		h.limiters[host] = lim
	}
	h.mu.Unlock()

	return lim.Wait(ctx)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
