package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/safetydesk/incident-service/internal/api/http/handlers"
	"github.com/safetydesk/incident-service/internal/auth"
	"github.com/safetydesk/incident-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Webhook        *handlers.WebhookHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Reports        *handlers.ReportsHandler
	Sites          *handlers.SitesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Meta webhook endpoints stay public; Verify handles the
	// subscription handshake and Receive handles inbound traffic.
	app.Get("/webhook", cfg.Webhook.Verify)
	app.Post("/webhook", cfg.Webhook.Receive)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/:ticketId", cfg.Tickets.GetTicket)
	api.Patch("/tickets/:ticketId/status", cfg.Tickets.UpdateStatus)
	api.Delete("/tickets/:ticketId", auth.RequireRole(domain.AdminRoleOwner), cfg.Tickets.DeleteTicket)
	api.Post("/tickets/:ticketId/reports", cfg.Tickets.RaiseReport)
	api.Get("/tickets/:ticketId/reports", cfg.Tickets.ListTicketReports)

	api.Get("/reports", cfg.Reports.ListReports)
	api.Patch("/reports/:id", cfg.Reports.UpdateReport)
	api.Delete("/reports/:id", auth.RequireRole(domain.AdminRoleOwner), cfg.Reports.DeleteReport)

	api.Get("/sites", cfg.Sites.ListSites)
	api.Get("/sites/:siteId/subsites", cfg.Sites.ListSubSites)
	api.Get("/sites/:siteId/deeplink", cfg.Sites.DeepLink)
}
