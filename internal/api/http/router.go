package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	Approvals      *handlers.ApprovalsHandler
	Dashboard      *handlers.DashboardHandler
	Knowledge      *handlers.KnowledgeHandler
	Settings       *handlers.SettingsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	app.Post("/auth/session", cfg.Session.Issue)

	api := app.Group("", cfg.AuthMiddleware.Handle)
	api.Get("/auth/me", auth.RequireSession(), cfg.Session.Me)
	api.Get("/users", cfg.Session.Users)
	api.Get("/agents", cfg.Session.Agents)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", auth.RequireAgent(), cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/activities", auth.RequireAgent(), cfg.Tickets.AppendActivity)
	tickets.Get("/:id/sla", cfg.Tickets.SLA)
	tickets.Get("/:id/suggestions", cfg.Tickets.Suggestions)

	approvals := api.Group("/approvals")
	approvals.Get("/", cfg.Approvals.Pending)
	approvals.Post("/:id/approve", cfg.Approvals.Approve)
	approvals.Post("/:id/reject", cfg.Approvals.Reject)

	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", cfg.Dashboard.Stats)
	dashboard.Get("/volume", cfg.Dashboard.Volume)
	dashboard.Get("/recent", cfg.Dashboard.Recent)
	api.Get("/analytics", cfg.Dashboard.Analytics)
	api.Get("/analytics/report.xlsx", cfg.Dashboard.Report)

	knowledge := api.Group("/knowledge")
	knowledge.Get("/", cfg.Knowledge.List)
	knowledge.Get("/categories", cfg.Knowledge.Categories)
	knowledge.Get("/:id", cfg.Knowledge.Get)
	knowledge.Post("/:id/helpful", cfg.Knowledge.Helpful)
	api.Get("/search", cfg.Knowledge.Search)

	api.Get("/settings", cfg.Settings.Get)
	api.Put("/settings", cfg.Settings.Save)

	api.Post("/admin/reset", auth.RequireAgent(), cfg.Settings.Reset)
}
