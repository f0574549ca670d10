package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/storage"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	pinger      storage.Pinger
}

// NewHealthHandler returns a new handler instance. pinger checks the
// configured storage backend and may be nil for the in-memory store.
func NewHealthHandler(serviceName, version, backend string, pinger storage.Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, backend: backend, pinger: pinger}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the storage backend.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			depStatus[h.backend] = err.Error()
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "DEPENDENCY_UNAVAILABLE",
					"message": "storage backend unavailable",
					"details": depStatus,
				},
			})
		}
	}
	depStatus[h.backend] = "ok"

	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
	})
}
