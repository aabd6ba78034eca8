package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"fonthunter/internal/validation"
)

// HuntPageHandler renders hunts as HTML.
type HuntPageHandler struct {
	hunter   Hunter
	deadline time.Duration
}

// NewHuntPageHandler creates a new HTML hunt handler.
func NewHuntPageHandler(h Hunter, deadline time.Duration) *HuntPageHandler {
	return &HuntPageHandler{hunter: h, deadline: deadline}
}

// Show renders the search form, or the outcome when ?name= is given.
func (h *HuntPageHandler) Show(c fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name", ""))
	if name == "" {
		return c.Render("hunt", fiber.Map{"Title": "Font Hunter"})
	}

	if valid, msg := validation.ValidateFontName(name); !valid {
		return c.Status(fiber.StatusBadRequest).Render("hunt", fiber.Map{
			"Title":    "Font Hunter",
			"FontName": name,
			"Error":    msg,
		})
	}

	ctx, cancel := huntContext(h.deadline)
	defer cancel()
	outcome := h.hunter.Hunt(ctx, name)

	return c.Render("hunt", fiber.Map{
		"Title":    name + " - Font Hunter",
		"FontName": name,
		"Outcome":  outcome,
		"Duration": outcome.Duration.Round(time.Millisecond),
	})
}
