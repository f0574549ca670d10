package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SettingsHandler serves user settings and admin operations.
type SettingsHandler struct {
	settings *service.SettingsService
	tickets  *service.TicketService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService, tickets *service.TicketService) *SettingsHandler {
	return &SettingsHandler{settings: settings, tickets: tickets}
}

// Get GET /settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// Save PUT /settings.
func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	var req service.SettingsInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Save(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// Reset POST /admin/reset.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	if err := h.tickets.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
