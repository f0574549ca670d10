package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// SessionHandler issues session tokens and serves the directory.
type SessionHandler struct {
	sessions  *service.SessionService
	directory repository.Directory
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, directory repository.Directory) *SessionHandler {
	return &SessionHandler{sessions: sessions, directory: directory}
}

// Issue handles POST /auth/session.
func (h *SessionHandler) Issue(c *fiber.Ctx) error {
	var req service.SessionInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, principal, err := h.sessions.Issue(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSessionResponse(session, principal)})
}

// Users handles GET /users.
func (h *SessionHandler) Users(c *fiber.Ctx) error {
	users, err := h.directory.Users(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": users})
}

// Agents handles GET /agents.
func (h *SessionHandler) Agents(c *fiber.Ctx) error {
	agents, err := h.directory.Agents(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": agents})
}

// Me handles GET /auth/me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"subjectType": principal.Type,
		"user":        principal.User,
		"agent":       principal.Agent,
	}})
}
