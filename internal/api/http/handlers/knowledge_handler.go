package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// KnowledgeHandler serves the knowledge base and global search.
type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
	search    *service.SearchService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledge *service.KnowledgeService, search *service.SearchService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge, search: search}
}

// List GET /knowledge.
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	articles, err := h.knowledge.Search(c.UserContext(), c.Query("q"), domain.TicketCategory(c.Query("category")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articles})
}

// Categories GET /knowledge/categories.
func (h *KnowledgeHandler) Categories(c *fiber.Ctx) error {
	groups, err := h.knowledge.Categories(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.CategoryGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.CategoryGroupResponse{Category: g.Category, Label: g.Category.Label(), Articles: g.Articles})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get GET /knowledge/:id. Reading an article counts a view.
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	article, err := h.knowledge.View(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": article})
}

// Helpful POST /knowledge/:id/helpful.
func (h *KnowledgeHandler) Helpful(c *fiber.Ctx) error {
	article, err := h.knowledge.MarkHelpful(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": article})
}

// Search GET /search.
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	results, err := h.search.Search(c.UserContext(), principal, c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": results})
}
