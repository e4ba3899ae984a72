package dto

import (
	"github.com/samber/lo"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// UserDTO is the wire form of a user, also decoded by the ticket service.
type UserDTO struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Phone string      `json:"phone"`
	Role  domain.Role `json:"role"`
}

// UserRequest payload for create and update.
type UserRequest struct {
	Name  string      `json:"name" validate:"required,notblank"`
	Email string      `json:"email" validate:"required,email"`
	Phone string      `json:"phone" validate:"required,notblank"`
	Role  domain.Role `json:"role" validate:"required,oneof=CUSTOMER EXECUTIVE ADMIN"`
}

// Input converts the request to service input.
func (r UserRequest) Input() service.UserInput {
	return service.UserInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Role: r.Role}
}

// FromUser projects a user onto its wire form.
func FromUser(user *domain.User) UserDTO {
	return UserDTO{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone, Role: user.Role}
}

// FromUsers projects a list; the result is never nil.
func FromUsers(users []domain.User) []UserDTO {
	return lo.Map(users, func(u domain.User, _ int) UserDTO { return FromUser(&u) })
}

// ToDomain converts a decoded DTO back to a domain value.
func (d UserDTO) ToDomain() *domain.User {
	return &domain.User{ID: d.ID, Name: d.Name, Email: d.Email, Phone: d.Phone, Role: d.Role}
}
