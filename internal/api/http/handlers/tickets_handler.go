package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.TicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.FromTicket(ticket))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicketByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	return respondTickets(c, tickets, err)
}

// UpdateTicket PUT /tickets. The ticket id is taken from the body.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), req.ID, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CloseTicket PATCH /tickets/:id.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ticket, err := h.service.CloseTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// AssignTicket PATCH /tickets/:ticketId/:executiveId.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	ticketID, err := paramID(c, "ticketId")
	if err != nil {
		return err
	}
	executiveID, err := paramID(c, "executiveId")
	if err != nil {
		return err
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), ticketID, executiveID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// GetUserDTO GET /tickets/userdto/:userId proxies the user service.
func (h *TicketsHandler) GetUserDTO(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.service.ResolveUser(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromUser(user))
}

// ListTicketsRaisedBy GET /tickets/users/:userId.
func (h *TicketsHandler) ListTicketsRaisedBy(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTicketsRaisedBy(c.UserContext(), userID)
	return respondTickets(c, tickets, err)
}

// ListTicketsAssignedTo GET /tickets/assigned/:executiveId.
func (h *TicketsHandler) ListTicketsAssignedTo(c *fiber.Ctx) error {
	executiveID, err := paramID(c, "executiveId")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTicketsAssignedTo(c.UserContext(), executiveID)
	return respondTickets(c, tickets, err)
}

// ListTicketsByStatus GET /tickets/status/:status.
func (h *TicketsHandler) ListTicketsByStatus(c *fiber.Ctx) error {
	status := domain.TicketStatus(paramString(c, "status"))
	tickets, err := h.service.ListTicketsByStatus(c.UserContext(), status)
	return respondTickets(c, tickets, err)
}

func respondTickets(c *fiber.Ctx, tickets []domain.Ticket, err error) error {
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTickets(tickets))
}
