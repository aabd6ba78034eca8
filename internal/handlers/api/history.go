package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"fonthunter/internal/db"
	"fonthunter/internal/models"
	"fonthunter/internal/validation"
)

// HuntStore reads hunt history.
type HuntStore interface {
	ListHuntRecords(ctx context.Context, slug string, limit int) ([]models.HuntRecord, error)
	GetHuntRecord(ctx context.Context, id uuid.UUID) (*models.HuntRecord, error)
}

// HistoryHandler serves recorded hunts. A nil store means history is
// disabled and every request gets 503.
type HistoryHandler struct {
	store HuntStore
}

// NewHistoryHandler creates a new API history handler.
func NewHistoryHandler(store HuntStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// List returns recent hunts, optionally for one font name.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	if h.store == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "hunt history is not configured")
	}

	limit := fiber.Query[int](c, "limit", 50)
	slug := ""
	if name := c.Query("name", ""); name != "" {
		slug = validation.Slugify(name)
	}

	records, err := h.store.ListHuntRecords(c.Context(), slug, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to list hunts")
	}
	if records == nil {
		records = []models.HuntRecord{}
	}
	return jsonSuccess(c, records)
}

// Get returns one recorded hunt.
func (h *HistoryHandler) Get(c fiber.Ctx) error {
	if h.store == nil {
		return jsonError(c, fiber.StatusServiceUnavailable, "hunt history is not configured")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid hunt id")
	}

	record, err := h.store.GetHuntRecord(c.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrHuntNotFound) {
			return jsonError(c, fiber.StatusNotFound, "hunt not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to fetch hunt")
	}
	return jsonSuccess(c, record)
}
