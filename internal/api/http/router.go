package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Customers      *handlers.CustomersHandler
	Instances      *handlers.InstancesHandler
	Dashboard      *handlers.DashboardHandler
	Webhooks       *handlers.WebhookHandler
	Realtime       *realtime.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Provider callbacks authenticate by obscurity of the instance key, not
	// by bearer token; the provider cannot carry one.
	app.Post("/webhooks/whatsapp/:instanceKey", cfg.Webhooks.Receive)

	app.Use("/ws", cfg.Realtime.Upgrade())
	app.Get("/ws", cfg.Realtime.Serve())

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/register",
		cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin), cfg.Auth.Register)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireRole())

	api.Get("/users", cfg.Auth.ListAgents)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/number/:number", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Get("/:id/messages", cfg.Tickets.ListMessages)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Get("/:id/tags", cfg.Tickets.ListTicketTags)
	tickets.Put("/:id/tags/:tagId", cfg.Tickets.AttachTag)
	tickets.Delete("/:id/tags/:tagId", cfg.Tickets.DetachTag)

	customers := api.Group("/customers")
	customers.Get("/", cfg.Customers.Search)
	customers.Post("/", cfg.Customers.Create)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Patch("/:id", cfg.Customers.Update)
	customers.Delete("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleManager), cfg.Customers.Deactivate)
	customers.Get("/:id/contacts", cfg.Customers.ListContacts)
	customers.Post("/:id/contacts", cfg.Customers.AddContact)

	api.Get("/tags", cfg.Tickets.ListTags)
	api.Get("/dashboard/metrics", cfg.Dashboard.Metrics)

	instances := api.Group("/instances", auth.RequireRole(domain.RoleAdmin))
	instances.Get("/", cfg.Instances.List)
	instances.Post("/", cfg.Instances.Create)
}
