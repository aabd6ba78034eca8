// Package httpclient builds the outbound HTTP client shared by the prober,
// fetcher and search sources.
package httpclient

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent on every outbound request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (compatible; FontHunter/1.0; +https://github.com/fonthunter)"

const maxRedirects = 10

// Options configures New.
type Options struct {
	Timeout     time.Duration
	UserAgent   string
	RatePerHost float64 // requests per second per host; <= 0 disables limiting
	Burst       int
	Transport   http.RoundTripper
}

// New returns an http.Client with a per-call timeout, a redirect cap and a
// per-host token bucket.
func New(opts Options) *http.Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 4
	}

	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &transport{
			base:     base,
			ua:       ua,
			limit:    rate.Limit(opts.RatePerHost),
			burst:    burst,
			limiters: make(map[string]*rate.Limiter),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

type transport struct {
	base  http.RoundTripper
	ua    string
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limit > 0 {
		if err := t.limiter(req.URL.Host).Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.ua)
	}
	return t.base.RoundTrip(req)
}

func (t *transport) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[host]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[host] = l
	}
	return l
}
