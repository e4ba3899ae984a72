package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// UsersHandler exposes user CRUD endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.FromUser(user))
}

// GetUserByID GET /users/by-id/:id.
func (h *UsersHandler) GetUserByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	return h.respondUser(c, func() (*domain.User, error) { return h.service.GetUserByID(c.UserContext(), id) })
}

// GetUserByEmail GET /users/by-email/:email.
func (h *UsersHandler) GetUserByEmail(c *fiber.Ctx) error {
	email := paramString(c, "email")
	return h.respondUser(c, func() (*domain.User, error) { return h.service.GetUserByEmail(c.UserContext(), email) })
}

// GetUserByPhone GET /users/by-phone/:phone.
func (h *UsersHandler) GetUserByPhone(c *fiber.Ctx) error {
	phone := paramString(c, "phone")
	return h.respondUser(c, func() (*domain.User, error) { return h.service.GetUserByPhone(c.UserContext(), phone) })
}

func (h *UsersHandler) respondUser(c *fiber.Ctx, load func() (*domain.User, error)) error {
	user, err := load()
	if err != nil {
		return err
	}
	return c.JSON(dto.FromUser(user))
}

// ListUsers GET /users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	return h.respondUsers(c, h.service.ListUsers)
}

// ListCustomers GET /users/customer.
func (h *UsersHandler) ListCustomers(c *fiber.Ctx) error {
	return h.respondUsers(c, h.service.ListCustomers)
}

// ListExecutives GET /users/executive.
func (h *UsersHandler) ListExecutives(c *fiber.Ctx) error {
	return h.respondUsers(c, h.service.ListExecutives)
}

func (h *UsersHandler) respondUsers(c *fiber.Ctx, list func(ctx context.Context) ([]domain.User, error)) error {
	users, err := list(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromUsers(users))
}

// UpdateUser PUT /users/:id. Any id in the body is ignored; the path id is used.
func (h *UsersHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.UserContext(), id, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(dto.FromUser(user))
}

// DeleteUser DELETE /users/:id.
func (h *UsersHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListUserTickets GET /users/:id/tickets.
func (h *UsersHandler) ListUserTickets(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	tickets, err := h.service.ListUserTickets(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTickets(tickets))
}
