package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps (page-1)*pageSize well inside int.
	maxPage         = math.MaxInt32 / maxPageSize
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req service.CreateTicketInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), principal, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	filter, page, pageSize, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, total, err := h.service.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:    tickets,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	detail, err := h.service.Detail(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetailResponse(detail)})
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Update(c.UserContext(), principal, c.Params("id"), req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req service.CommentInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), principal, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": comment})
}

// AppendActivity POST /tickets/:id/activities.
func (h *TicketsHandler) AppendActivity(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	var req service.ActivityInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.AppendActivity(c.UserContext(), principal, c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// SLA GET /tickets/:id/sla.
func (h *TicketsHandler) SLA(c *fiber.Ctx) error {
	result, err := h.service.SLA(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSLAResponse(result)})
}

// Suggestions GET /tickets/:id/suggestions.
func (h *TicketsHandler) Suggestions(c *fiber.Ctx) error {
	articles, err := h.service.Suggestions(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articles})
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketFilter, int, int, error) {
	filter := repository.TicketFilter{SearchTerm: strings.TrimSpace(c.Query("q"))}
	details := map[string]any{}

	for _, part := range splitList(c.Query("status")) {
		status := domain.TicketStatus(part)
		if !status.Valid() {
			details["status"] = "Unknown status " + part
			continue
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, part := range splitList(c.Query("priority")) {
		priority := domain.TicketPriority(part)
		if !priority.Valid() {
			details["priority"] = "Unknown priority " + part
			continue
		}
		filter.Priorities = append(filter.Priorities, priority)
	}
	for _, part := range splitList(c.Query("category")) {
		category := domain.TicketCategory(part)
		if !category.Valid() {
			details["category"] = "Unknown category " + part
			continue
		}
		filter.Categories = append(filter.Categories, category)
	}
	filter.AssigneeID = c.Query("assignee")
	filter.RequesterID = c.Query("requester")
	filter.IncludePending = c.QueryBool("include_pending", false)

	switch sortBy := c.Query("sort"); sortBy {
	case repository.SortNone, repository.SortCreatedAt, repository.SortUpdatedAt, repository.SortPriority, repository.SortID:
		filter.SortBy = sortBy
	default:
		details["sort"] = "Unknown sort key " + sortBy
	}
	switch order := strings.ToLower(c.Query("order")); order {
	case "", "asc":
	case "desc":
		filter.Descending = true
	default:
		details["order"] = "Order must be asc or desc"
	}
	if len(details) > 0 {
		return filter, 0, 0, apperrors.NewValidationError("invalid query", details)
	}

	page := parseInt(c.Query("page"), 1)
	if page > maxPage {
		page = maxPage
	}
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, page, pageSize, nil
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
