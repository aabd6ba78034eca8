package api

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"fonthunter/internal/candidates"
	"fonthunter/internal/config"
	"fonthunter/internal/fallback"
	"fonthunter/internal/hunter"
	"fonthunter/internal/models"
	"fonthunter/internal/validation"
)

// Hunter is the part of *hunter.Hunter the API needs.
type Hunter interface {
	Hunt(ctx context.Context, fontName string) hunter.Outcome
	Settings() config.HuntSettings
	Strategies() []string
}

// HuntHandler runs hunts and previews their search plan via JSON API.
type HuntHandler struct {
	hunter   Hunter
	deadline time.Duration
}

// NewHuntHandler creates a new API hunt handler. A deadline <= 0 leaves
// hunts unbounded.
func NewHuntHandler(h Hunter, deadline time.Duration) *HuntHandler {
	return &HuntHandler{hunter: h, deadline: deadline}
}

// Hunt runs one hunt to completion. Found and exhausted hunts both return
// 200; the outcome says which.
func (h *HuntHandler) Hunt(c fiber.Ctx) error {
	var body models.HuntRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(body.FontName)
	if valid, msg := validation.ValidateFontName(name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	// The hunt outlives a disconnected client; the deadline bounds it instead.
	ctx := context.Background()
	if h.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deadline)
		defer cancel()
	}

	return jsonSuccess(c, NewHuntResponse(h.hunter.Hunt(ctx, name)))
}

// Keywords shows the keyword set and per-strategy candidate counts for a
// name without any network I/O.
func (h *HuntHandler) Keywords(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name", ""))
	if valid, msg := validation.ValidateFontName(name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	settings := h.hunter.Settings()
	counts := candidates.CountByStrategy(hunter.NewGenerator(settings).Generate(name))
	for strategy := range counts {
		if !settings.StrategyEnabled(strategy) {
			delete(counts, strategy)
		}
	}

	return jsonSuccess(c, models.KeywordsResponse{
		FontName:   name,
		Slug:       validation.Slugify(name),
		Keywords:   candidates.Keywords(name),
		Strategies: h.hunter.Strategies(),
		Candidates: counts,
	})
}

// Report returns the fallback report for a name without hunting or
// writing anything.
func (h *HuntHandler) Report(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name", ""))
	if valid, msg := validation.ValidateFontName(name); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	r := fallback.New(name)
	return jsonSuccess(c, models.ReportResponse{
		FontName: r.FontName,
		Queries:  r.Queries,
		Text:     r.Text,
	})
}

// NewHuntResponse converts a hunt outcome to its API shape.
func NewHuntResponse(o hunter.Outcome) models.HuntResponse {
	return models.HuntResponse{
		ID:             o.ID,
		FontName:       o.FontName,
		Success:        o.Success,
		FilePaths:      o.FilePaths,
		Strategy:       o.Strategy,
		SourceURL:      o.SourceURL,
		Format:         o.Format,
		Confidence:     o.Confidence,
		Family:         o.Family,
		FetchAttempts:  o.FetchAttempts,
		LastResortInfo: o.LastResortInfo,
		Queries:        o.Queries,
		ReportPath:     o.ReportPath,
		StartedAt:      o.StartedAt,
		DurationMS:     o.Duration.Milliseconds(),
	}
}
