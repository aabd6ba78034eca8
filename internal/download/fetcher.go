// Package download fetches candidate font URLs and persists validated assets.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fonthunter/internal/fontcheck"
	"fonthunter/internal/validation"
)

// DefaultMaxBytes caps a single font download.
const DefaultMaxBytes = 20 << 20

// Asset is a fetched buffer together with its validator verdict.
type Asset struct {
	URL         string
	Data        []byte
	ContentType string
	Verdict     fontcheck.Verdict
	Family      string
}

// Fetcher downloads candidate URLs.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBytes     int64
	allowPrivate bool
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-download timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithMaxBytes caps the accepted response size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithAllowPrivateHosts disables the private-address guard.
func WithAllowPrivateHosts(allow bool) Option {
	return func(f *Fetcher) { f.allowPrivate = allow }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher using client for all requests.
func NewFetcher(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   client,
		timeout:  30 * time.Second,
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch GETs rawURL and returns the body. Only 2xx/3xx responses are read.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	if valid, msg := validation.ValidateURLForProbe(rawURL, f.allowPrivate); !valid {
		return nil, "", &FetchError{URL: rawURL, Stage: StageRequest, Err: fmt.Errorf("%w: %s", ErrUnsafeURL, msg)}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Stage: StageRequest, Err: err}
	}
	req.Header.Set("Accept", "font/woff2,font/woff,font/ttf,font/otf,application/octet-stream;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Stage: StageRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return nil, "", &FetchError{URL: rawURL, Stage: StageStatus, Err: fmt.Errorf("HTTP %s", resp.Status)}
	}

	// Read one byte past the cap so oversized bodies are detected, not truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Stage: StageRead, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, "", &FetchError{URL: rawURL, Stage: StageRead, Err: ErrTooLarge}
	}

	f.logger.Debug("fetched", "url", rawURL, "status", resp.StatusCode, "size", len(body))
	return body, resp.Header.Get("Content-Type"), nil
}

// FetchFont downloads rawURL and runs the content validator over the body.
// A rejected body is returned as a FetchError at the validate stage.
func (f *Fetcher) FetchFont(ctx context.Context, rawURL string) (*Asset, error) {
	body, contentType, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	verdict := fontcheck.Inspect(body)
	if !verdict.Accepted {
		return nil, &FetchError{URL: rawURL, Stage: StageValidate, Err: fmt.Errorf("%w: %s", ErrInvalidFont, verdict.Reason)}
	}

	return &Asset{
		URL:         rawURL,
		Data:        body,
		ContentType: contentType,
		Verdict:     verdict,
		Family:      fontcheck.FamilyName(body),
	}, nil
}
