// Package probe decides whether a candidate font URL is worth fetching.
package probe

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"fonthunter/internal/validation"
)

// Result is the outcome of probing one candidate URL.
type Result struct {
	URL         string
	Live        bool
	StatusCode  int
	ContentType string
	// Skipped is set when the pre-filter rejected the URL without any
	// network I/O.
	Skipped bool
	Reason  string
}

// HTML reports whether the server declared an HTML body for the URL.
func (r Result) HTML() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// Prober issues header-only existence checks.
type Prober struct {
	client       *http.Client
	timeout      time.Duration
	allowPrivate bool
	logger       *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) { p.timeout = d }
}

// WithAllowPrivateHosts disables the private-address guard.
func WithAllowPrivateHosts(allow bool) Option {
	return func(p *Prober) { p.allowPrivate = allow }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) { p.logger = l }
}

// New creates a Prober using client for all requests.
func New(client *http.Client, opts ...Option) *Prober {
	p := &Prober{
		client:  client,
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Probe performs a HEAD request against rawURL. Any 2xx or 3xx is live.
// Network failures yield a non-live result, never an error.
func (p *Prober) Probe(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	if !validation.IsFontURL(rawURL) {
		res.Skipped = true
		res.Reason = "not a font URL"
		return res
	}
	if valid, msg := validation.ValidateURLForProbe(rawURL, p.allowPrivate); !valid {
		res.Skipped = true
		res.Reason = msg
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		res.Reason = "invalid URL: " + err.Error()
		return res
	}

	resp, err := p.client.Do(req)
	if err != nil {
		res.Reason = "connection failed: " + err.Error()
		p.logger.Debug("probe failed", "url", rawURL, "error", err)
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")
	res.Live = resp.StatusCode >= 200 && resp.StatusCode < 400
	if !res.Live {
		res.Reason = "HTTP " + resp.Status
	}
	return res
}
