package hunter

import (
	"log/slog"
	"net/http"
	"time"

	"fonthunter/internal/candidates"
	"fonthunter/internal/config"
	"fonthunter/internal/download"
	"fonthunter/internal/httpclient"
	"fonthunter/internal/probe"
	"fonthunter/internal/search"
)

// DefaultStrategies returns the enabled strategies in priority order:
// direct, CDN, archive, code-host API, web-search scraping.
func DefaultStrategies(settings config.HuntSettings, gen *candidates.Generator, source SearchSource, logger *slog.Logger) []Strategy {
	all := []Strategy{
		PatternStrategy(candidates.StrategyDirect, gen.Direct),
		PatternStrategy(candidates.StrategyCDN, gen.CDN),
		ArchiveStrategy(gen, source, logger),
		CodeHostStrategy(gen, source, logger),
		SearchStrategy(gen, source, logger),
	}
	enabled := make([]Strategy, 0, len(all))
	for _, s := range all {
		if settings.StrategyEnabled(s.Name()) {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// NewGenerator builds the candidate generator described by settings.
func NewGenerator(settings config.HuntSettings) *candidates.Generator {
	gen := candidates.NewGenerator(settings.ExtraDirectTemplates, settings.ExtraCDNTemplates)
	if settings.GitHubAPIURL != "" {
		gen.GitHubAPIURL = settings.GitHubAPIURL
	}
	if settings.ArchiveURL != "" {
		gen.ArchiveURL = settings.ArchiveURL
	}
	return gen
}

// NewHTTPClient builds the rate-limited outbound client described by settings.
func NewHTTPClient(settings config.HuntSettings) *http.Client {
	return httpclient.New(httpclient.Options{
		Timeout:     settings.Timeout,
		UserAgent:   settings.UserAgent,
		RatePerHost: settings.RatePerHost,
	})
}

// FromSettings wires a Hunter with the network-backed prober, fetcher,
// search client and on-disk store.
func FromSettings(settings config.HuntSettings, logger *slog.Logger, opts ...Option) *Hunter {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	client := NewHTTPClient(settings)

	prober := probe.New(client,
		probe.WithTimeout(settings.Timeout),
		probe.WithAllowPrivateHosts(settings.AllowPrivateHosts),
		probe.WithLogger(logger),
	)
	fetchOpts := []download.Option{
		download.WithTimeout(settings.Timeout),
		download.WithAllowPrivateHosts(settings.AllowPrivateHosts),
		download.WithLogger(logger),
	}
	if settings.MaxFontBytes > 0 {
		fetchOpts = append(fetchOpts, download.WithMaxBytes(settings.MaxFontBytes))
	}
	fetcher := download.NewFetcher(client, fetchOpts...)
	source := search.New(client, search.WithLogger(logger))
	strategies := DefaultStrategies(settings, NewGenerator(settings), source, logger)

	opts = append([]Option{WithLogger(logger)}, opts...)
	return New(settings, strategies, prober, fetcher, download.NewStore(settings.OutputDir), opts...)
}
