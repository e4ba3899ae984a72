package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration. Users or Tickets may
// be nil; only the configured service's routes are mounted.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	if cfg.Users != nil {
		registerUserRoutes(app.Group("/users"), cfg.Users)
	}
	if cfg.Tickets != nil {
		registerTicketRoutes(app.Group("/tickets"), cfg.Tickets)
	}
}

func registerUserRoutes(users fiber.Router, h *handlers.UsersHandler) {
	users.Post("/", h.CreateUser)
	users.Get("/", h.ListUsers)
	users.Get("/customer", h.ListCustomers)
	users.Get("/executive", h.ListExecutives)
	users.Get("/by-id/:id", h.GetUserByID)
	users.Get("/by-email/:email", h.GetUserByEmail)
	users.Get("/by-phone/:phone", h.GetUserByPhone)
	users.Get("/:id/tickets", h.ListUserTickets)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}

func registerTicketRoutes(tickets fiber.Router, h *handlers.TicketsHandler) {
	tickets.Post("/", h.CreateTicket)
	tickets.Get("/", h.ListTickets)
	tickets.Put("/", h.UpdateTicket)
	tickets.Get("/userdto/:userId", h.GetUserDTO)
	tickets.Get("/users/:userId", h.ListTicketsRaisedBy)
	tickets.Get("/assigned/:executiveId", h.ListTicketsAssignedTo)
	tickets.Get("/status/:status", h.ListTicketsByStatus)
	tickets.Get("/:id", h.GetTicket)
	tickets.Delete("/:id", h.DeleteTicket)
	tickets.Patch("/:id", h.CloseTicket)
	tickets.Patch("/:ticketId/:executiveId", h.AssignTicket)
}
