package client

import (
	"context"
	"strconv"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserClient reads users from the user service.
type UserClient struct {
	peer *peer
}

// NewUserClient builds a client for the user service at cfg.BaseURL.
func NewUserClient(cfg Config) (*UserClient, error) {
	p, err := newPeer("user-service", cfg)
	if err != nil {
		return nil, err
	}
	return &UserClient{peer: p}, nil
}

// GetUserByID calls GET /users/by-id/{id}. A missing user surfaces as an
// upstream error like any other non-200 reply.
func (c *UserClient) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var user dto.UserDTO
	if err := c.peer.getJSON(ctx, "/users/by-id/"+strconv.FormatInt(id, 10), &user); err != nil {
		return nil, err
	}
	return user.ToDomain(), nil
}
