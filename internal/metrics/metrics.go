package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fonthunter/internal/db"
	"fonthunter/internal/download"
	"fonthunter/internal/hunter"
	"fonthunter/internal/models"
	"fonthunter/internal/probe"
	"fonthunter/internal/validation"
)

var (
	huntStatsDesc = prometheus.NewDesc(
		"fonthunter_hunts_recorded_total",
		"Total recorded hunts by winning strategy and outcome",
		[]string{"strategy", "outcome"},
		nil,
	)

	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fonthunter_probes_total",
		Help: "Candidate URL probes by strategy and liveness",
	}, []string{"strategy", "live"})

	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fonthunter_fetches_total",
		Help: "Font fetch attempts by strategy and failing stage (ok on success)",
	}, []string{"strategy", "stage"})

	huntsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fonthunter_hunts_total",
		Help: "Finished hunts by winning strategy and outcome",
	}, []string{"strategy", "outcome"})

	huntDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fonthunter_hunt_duration_seconds",
		Help:    "Wall time of a single hunt",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"outcome"})

	huntAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fonthunter_hunt_fetch_attempts",
		Help:    "Fetch attempts spent per hunt",
		Buckets: prometheus.LinearBuckets(0, 1, 11),
	})
)

// HuntCollector is a custom Prometheus collector that reads hunt history
// counts from the database on each scrape.
type HuntCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *HuntCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- huntStatsDesc
}

// Collect queries the database for all hunt stats and emits them as counters.
func (c *HuntCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.GetAllHuntStats(context.Background())
	if err != nil {
		slog.Error("failed to collect hunt metrics", "error", err)
		return
	}
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(
			huntStatsDesc,
			prometheus.CounterValue,
			float64(s.Count),
			s.Strategy,
			s.Outcome,
		)
	}
}

// Observer feeds hunt events into the process-local Prometheus metrics.
type Observer struct{}

var _ hunter.Observer = Observer{}

// ObserveProbe counts a probe.
func (Observer) ObserveProbe(strategy string, res probe.Result) {
	probesTotal.WithLabelValues(strategy, strconv.FormatBool(res.Live)).Inc()
}

// ObserveFetch counts a fetch attempt under the stage it failed at.
func (Observer) ObserveFetch(strategy string, err error) {
	stage := "ok"
	if err != nil {
		if stage = download.StageOf(err); stage == "" {
			stage = "unknown"
		}
	}
	fetchesTotal.WithLabelValues(strategy, stage).Inc()
}

// ObserveHunt records the outcome of a finished hunt.
func (Observer) ObserveHunt(o hunter.Outcome) {
	outcome := outcomeLabel(o)
	huntsTotal.WithLabelValues(strategyLabel(o), outcome).Inc()
	huntDuration.WithLabelValues(outcome).Observe(o.Duration.Seconds())
	huntAttempts.Observe(float64(o.FetchAttempts))
}

func outcomeLabel(o hunter.Outcome) string {
	if o.Success {
		return models.OutcomeFound
	}
	return models.OutcomeExhausted
}

func strategyLabel(o hunter.Outcome) string {
	if o.Strategy == "" {
		return "none"
	}
	return o.Strategy
}

// Recorder provides async hunt history recording.
type Recorder struct {
	db *db.DB
	wg sync.WaitGroup
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
)

// Init registers the custom collector and initializes the recorder.
// Must be called once at startup, and only when a database is configured.
func Init(database *db.DB) *Recorder {
	recorderOnce.Do(func() {
		recorder = &Recorder{db: database}
		prometheus.MustRegister(&HuntCollector{db: database})
	})
	return recorder
}

var _ hunter.Observer = (*Recorder)(nil)

// ObserveProbe is a no-op; only finished hunts are stored.
func (r *Recorder) ObserveProbe(string, probe.Result) {}

// ObserveFetch is a no-op; only finished hunts are stored.
func (r *Recorder) ObserveFetch(string, error) {}

// ObserveHunt asynchronously stores the hunt and bumps its stat row.
func (r *Recorder) ObserveHunt(o hunter.Outcome) {
	if r == nil || r.db == nil {
		return
	}
	record := RecordFromOutcome(o)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx := context.Background()
		if err := r.db.CreateHuntRecord(ctx, record); err != nil {
			slog.Error("failed to record hunt", "hunt_id", o.ID, "font", o.FontName, "error", err)
		}
		if err := r.db.IncrementHuntStat(ctx, strategyLabel(o), record.Outcome()); err != nil {
			slog.Error("failed to record hunt stat", "strategy", o.Strategy, "error", err)
		}
	}()
}

// Wait blocks until in-flight recordings finish.
func (r *Recorder) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

// RecordFromOutcome converts a hunt outcome into a history row.
func RecordFromOutcome(o hunter.Outcome) *models.HuntRecord {
	r := &models.HuntRecord{
		FontName:      o.FontName,
		Slug:          validation.Slugify(o.FontName),
		Success:       o.Success,
		Strategy:      o.Strategy,
		SourceURL:     o.SourceURL,
		Format:        o.Format,
		Confidence:    o.Confidence,
		FetchAttempts: o.FetchAttempts,
		ReportPath:    o.ReportPath,
		DurationMS:    o.Duration.Milliseconds(),
	}
	if id, err := uuid.Parse(o.ID); err == nil {
		r.ID = id
	}
	if len(o.FilePaths) > 0 {
		r.FilePath = o.FilePaths[0]
	}
	return r
}
