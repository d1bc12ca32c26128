package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sinless777/helix-support/internal/api/http/handlers"
	"github.com/sinless777/helix-support/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Roles          *handlers.RolesHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The bootstrap endpoint sits outside
// the session middleware: the first owner authenticates with the
// bootstrap key, not a token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/admin/bootstrap-owner", cfg.Admin.BootstrapOwner)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Post("/tickets", cfg.Tickets.Create)
	api.Get("/tickets", cfg.Tickets.List)
	api.Get("/tickets/:id", cfg.Tickets.Get)
	api.Patch("/tickets/:id", cfg.Tickets.Update)

	api.Get("/roles", cfg.Roles.List)
	api.Get("/roles/:userId", cfg.Roles.Get)
	api.Put("/roles/:userId", cfg.Roles.Assign)

	api.Get("/notifications", cfg.Notifications.List)
	api.Post("/notifications/:id/read", cfg.Notifications.MarkRead)
	api.Delete("/notifications/:id", cfg.Notifications.Delete)
}
