package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"fonthunter/internal/download"
	"fonthunter/internal/hunter"
	"fonthunter/internal/models"
	"fonthunter/internal/probe"
)

func TestObserver_CountsProbesAndFetches(t *testing.T) {
	var o Observer

	liveBefore := testutil.ToFloat64(probesTotal.WithLabelValues("cdn", "true"))
	o.ObserveProbe("cdn", probe.Result{Live: true})
	o.ObserveProbe("cdn", probe.Result{Live: false})
	if got := testutil.ToFloat64(probesTotal.WithLabelValues("cdn", "true")) - liveBefore; got != 1 {
		t.Errorf("live probes delta = %v, want 1", got)
	}

	validateBefore := testutil.ToFloat64(fetchesTotal.WithLabelValues("cdn", download.StageValidate))
	okBefore := testutil.ToFloat64(fetchesTotal.WithLabelValues("cdn", "ok"))
	o.ObserveFetch("cdn", &download.FetchError{URL: "x", Stage: download.StageValidate, Err: download.ErrInvalidFont})
	o.ObserveFetch("cdn", nil)
	if got := testutil.ToFloat64(fetchesTotal.WithLabelValues("cdn", download.StageValidate)) - validateBefore; got != 1 {
		t.Errorf("validate fetches delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(fetchesTotal.WithLabelValues("cdn", "ok")) - okBefore; got != 1 {
		t.Errorf("ok fetches delta = %v, want 1", got)
	}
}

func TestObserver_UnknownFetchErrorStillCounted(t *testing.T) {
	stage := "unknown"
	before := testutil.ToFloat64(fetchesTotal.WithLabelValues("direct", stage))
	Observer{}.ObserveFetch("direct", errors.New("boom"))
	if got := testutil.ToFloat64(fetchesTotal.WithLabelValues("direct", stage)) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
}

func TestObserver_Hunts(t *testing.T) {
	before := testutil.ToFloat64(huntsTotal.WithLabelValues("none", models.OutcomeExhausted))
	Observer{}.ObserveHunt(hunter.Outcome{FontName: "Nope", FetchAttempts: 10, Duration: 3 * time.Second})
	if got := testutil.ToFloat64(huntsTotal.WithLabelValues("none", models.OutcomeExhausted)) - before; got != 1 {
		t.Errorf("exhausted hunts delta = %v, want 1", got)
	}
}

func TestRecordFromOutcome(t *testing.T) {
	id := uuid.New()
	rec := RecordFromOutcome(hunter.Outcome{
		ID:            id.String(),
		FontName:      "Space Mono",
		Success:       true,
		Strategy:      "direct",
		SourceURL:     "https://cdn.example.com/SpaceMono.woff2",
		FilePaths:     []string{"out/space-mono/SpaceMono.woff2"},
		Format:        "woff2",
		FetchAttempts: 1,
		Duration:      1500 * time.Millisecond,
	})

	if rec.ID != id {
		t.Errorf("ID = %v, want %v", rec.ID, id)
	}
	if rec.Slug != "space-mono" {
		t.Errorf("Slug = %q", rec.Slug)
	}
	if rec.FilePath != "out/space-mono/SpaceMono.woff2" {
		t.Errorf("FilePath = %q", rec.FilePath)
	}
	if rec.DurationMS != 1500 {
		t.Errorf("DurationMS = %d", rec.DurationMS)
	}
	if rec.Outcome() != models.OutcomeFound {
		t.Errorf("Outcome() = %q", rec.Outcome())
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveHunt(hunter.Outcome{FontName: "x"})
	r.Wait()
}
