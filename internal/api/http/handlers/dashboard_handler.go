package handlers

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/analytics"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler serves dashboard and analytics figures.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboard}
}

// Stats GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	opts, err := parseStatsOptions(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Volume GET /dashboard/volume.
func (h *DashboardHandler) Volume(c *fiber.Ctx) error {
	days := analytics.DefaultVolumeDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid query", map[string]any{"days": "Days must be a number"})
		}
		days = parsed
	}
	points, err := h.service.Volume(c.UserContext(), days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": points})
}

// Recent GET /dashboard/recent.
func (h *DashboardHandler) Recent(c *fiber.Ctx) error {
	tickets, err := h.service.Recent(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tickets})
}

// Analytics GET /analytics.
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	opts, err := parseStatsOptions(c)
	if err != nil {
		return err
	}
	rep, err := h.service.Analytics(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rep})
}

// Report GET /analytics/report.xlsx.
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	opts, err := parseStatsOptions(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	name, err := h.service.WriteReport(c.UserContext(), &buf, opts)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}

func parseStatsOptions(c *fiber.Ctx) (analytics.StatsOptions, error) {
	var opts analytics.StatsOptions
	switch c.Query("critical") {
	case "", "all":
		opts.Critical = analytics.CriticalAll
	case "active":
		opts.Critical = analytics.CriticalExcludingClosed
	default:
		return opts, apperrors.NewValidationError("invalid query", map[string]any{"critical": "Critical must be all or active"})
	}
	switch c.Query("resolved") {
	case "", "resolved_or_closed":
		opts.ResolvedToday = analytics.ResolvedOrClosed
	case "resolved_only":
		opts.ResolvedToday = analytics.ResolvedOnly
	default:
		return opts, apperrors.NewValidationError("invalid query", map[string]any{"resolved": "Resolved must be resolved_or_closed or resolved_only"})
	}
	return opts, nil
}
