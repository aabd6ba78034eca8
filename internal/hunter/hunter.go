// Package hunter runs the ordered strategy list for one font name and
// returns exactly one Outcome per hunt.
package hunter

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fonthunter/internal/candidates"
	"fonthunter/internal/config"
	"fonthunter/internal/download"
	"fonthunter/internal/fallback"
	"fonthunter/internal/probe"
)

// DefaultCooldown separates fetch attempts in attempts mode.
const DefaultCooldown = time.Second

// Outcome is the terminal result of one hunt.
type Outcome struct {
	ID             string        `json:"id"`
	FontName       string        `json:"font_name"`
	Success        bool          `json:"success"`
	FilePaths      []string      `json:"file_paths,omitempty"`
	Strategy       string        `json:"strategy,omitempty"`
	SourceURL      string        `json:"source_url,omitempty"`
	Format         string        `json:"format,omitempty"`
	Confidence     string        `json:"confidence,omitempty"`
	Family         string        `json:"family,omitempty"`
	FetchAttempts  int           `json:"fetch_attempts"`
	LastResortInfo string        `json:"last_resort_info,omitempty"`
	Queries        []string      `json:"queries,omitempty"`
	ReportPath     string        `json:"report_path,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
}

// Prober decides whether a candidate is worth fetching.
type Prober interface {
	Probe(ctx context.Context, rawURL string) probe.Result
}

// Fetcher downloads and validates one candidate.
type Fetcher interface {
	FetchFont(ctx context.Context, rawURL string) (*download.Asset, error)
}

// Persister writes a validated asset to disk.
type Persister interface {
	Persist(asset *download.Asset, fontName string) (string, error)
}

// Observer receives hunt events. Implementations must be safe for
// concurrent hunts.
type Observer interface {
	ObserveProbe(strategy string, res probe.Result)
	ObserveFetch(strategy string, err error)
	ObserveHunt(o Outcome)
}

// Hunter holds the immutable settings and collaborators shared by hunts.
type Hunter struct {
	settings   config.HuntSettings
	strategies []Strategy
	prober     Prober
	fetcher    Fetcher
	store      Persister
	observers  []Observer
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration)
	cooldown   time.Duration
	now        func() time.Time
}

// Option configures a Hunter.
type Option func(*Hunter)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hunter) { h.logger = l }
}

// WithObserver adds an Observer; it may be given more than once.
func WithObserver(o Observer) Option {
	return func(h *Hunter) { h.observers = append(h.observers, o) }
}

// WithSleep replaces the cooldown sleep, mainly for tests.
func WithSleep(sleep func(context.Context, time.Duration)) Option {
	return func(h *Hunter) { h.sleep = sleep }
}

// WithCooldown sets the pause between attempts in attempts mode.
func WithCooldown(d time.Duration) Option {
	return func(h *Hunter) { h.cooldown = d }
}

// New creates a Hunter that tries strategies in the given order.
func New(settings config.HuntSettings, strategies []Strategy, prober Prober, fetcher Fetcher, store Persister, opts ...Option) *Hunter {
	h := &Hunter{
		settings:   settings,
		strategies: strategies,
		prober:     prober,
		fetcher:    fetcher,
		store:      store,
		logger:     slog.Default(),
		sleep:      sleepContext,
		cooldown:   DefaultCooldown,
		now:        time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Settings returns the snapshot the hunter was built with.
func (h *Hunter) Settings() config.HuntSettings { return h.settings }

// Strategies returns the strategy names in priority order.
func (h *Hunter) Strategies() []string {
	names := make([]string, len(h.strategies))
	for i, s := range h.strategies {
		names[i] = s.Name()
	}
	return names
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// hunt is the per-invocation state.
type hunt struct {
	query   candidates.Query
	budget  *Budget
	tried   map[string]struct{}
	logger  *slog.Logger
	outcome *Outcome
}

// Hunt locates, validates and stores a font. It never returns an error:
// exhaustion is reported as an unsuccessful Outcome with a fallback report.
func (h *Hunter) Hunt(ctx context.Context, fontName string) Outcome {
	out := Outcome{
		ID:        uuid.NewString(),
		FontName:  fontName,
		StartedAt: h.now(),
	}
	st := &hunt{
		query:   candidates.NewQuery(fontName),
		budget:  NewBudget(h.settings.MaxAttempts),
		tried:   make(map[string]struct{}),
		logger:  h.logger.With("hunt_id", out.ID, "font", fontName),
		outcome: &out,
	}

	if st.query.Blank() {
		st.logger.Warn("empty font name, skipping search")
	} else {
		st.logger.Info("hunt started", "max_attempts", h.settings.MaxAttempts, "mode", h.settings.Mode)
		for _, s := range h.strategies {
			if st.budget.Exhausted() {
				st.logger.Info("attempt budget exhausted, skipping remaining strategies", "next", s.Name())
				break
			}
			if ctx.Err() != nil {
				st.logger.Warn("hunt deadline reached", "error", ctx.Err())
				break
			}
			if h.runStrategy(ctx, s, st) {
				break
			}
		}
	}

	out.FetchAttempts = st.budget.Used()
	if !out.Success {
		h.reportFailure(st)
	}
	out.Duration = h.now().Sub(out.StartedAt)

	st.logger.Info("hunt finished",
		"success", out.Success,
		"strategy", out.Strategy,
		"attempts", out.FetchAttempts,
		"duration", out.Duration)
	for _, o := range h.observers {
		o.ObserveHunt(out)
	}
	return out
}

// runStrategy walks one strategy's candidates and reports whether the hunt
// succeeded.
func (h *Hunter) runStrategy(ctx context.Context, s Strategy, st *hunt) bool {
	name := s.Name()
	logger := st.logger.With("strategy", name)
	logger.Debug("strategy started")

	for c, err := range s.Candidates(ctx, st.query) {
		if err != nil {
			logger.Warn("strategy abandoned", "error", err)
			return false
		}
		if st.budget.Exhausted() {
			return false
		}
		if _, dup := st.tried[c.URL]; dup {
			continue
		}
		st.tried[c.URL] = struct{}{}

		res := h.prober.Probe(ctx, c.URL)
		h.observeProbe(name, res)
		if !res.Live {
			continue
		}
		if res.HTML() {
			logger.Debug("probe returned HTML, not fetching", "url", c.URL)
			continue
		}

		if !st.budget.Take() {
			logger.Info("attempt budget exhausted")
			return false
		}
		if h.settings.Mode == config.ModeAttempts && st.budget.Used() > 1 {
			h.sleep(ctx, h.cooldown)
		}

		asset, err := h.fetcher.FetchFont(ctx, c.URL)
		if err != nil {
			h.observeFetch(name, err)
			logger.Info("candidate rejected", "url", c.URL, "stage", download.StageOf(err), "error", err)
			// Stop before the strategy loads another result page.
			if st.budget.Exhausted() {
				logger.Info("attempt budget exhausted")
				return false
			}
			continue
		}

		path, err := h.store.Persist(asset, st.query.Name)
		h.observeFetch(name, err)
		if err != nil {
			logger.Error("persist failed, abandoning strategy", "url", c.URL, "error", err)
			return false
		}

		out := st.outcome
		out.Success = true
		out.FilePaths = []string{path}
		out.Strategy = name
		out.SourceURL = c.URL
		out.Format = string(asset.Verdict.Format)
		out.Confidence = string(asset.Verdict.Confidence)
		out.Family = asset.Family
		logger.Info("font downloaded", "url", c.URL, "path", path, "format", out.Format, "confidence", out.Confidence)
		return true
	}
	logger.Debug("strategy exhausted")
	return false
}

func (h *Hunter) reportFailure(st *hunt) {
	report := fallback.New(st.query.Name)
	st.outcome.LastResortInfo = report.Text
	st.outcome.Queries = report.Queries

	if st.query.Blank() {
		return
	}
	path, err := fallback.Write(h.settings.OutputDir, report)
	if err != nil {
		st.logger.Error("failed to write hunting instructions", "error", err)
		return
	}
	st.outcome.ReportPath = path
	st.logger.Info("wrote hunting instructions", "path", path)
}

func (h *Hunter) observeProbe(strategy string, res probe.Result) {
	for _, o := range h.observers {
		o.ObserveProbe(strategy, res)
	}
}

func (h *Hunter) observeFetch(strategy string, err error) {
	for _, o := range h.observers {
		o.ObserveFetch(strategy, err)
	}
}
