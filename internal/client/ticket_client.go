package client

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketClient reads tickets from the ticket service.
type TicketClient struct {
	peer *peer
}

// NewTicketClient builds a client for the ticket service at cfg.BaseURL.
func NewTicketClient(cfg Config) (*TicketClient, error) {
	p, err := newPeer("ticket-service", cfg)
	if err != nil {
		return nil, err
	}
	return &TicketClient{peer: p}, nil
}

// ListTicketsByUser calls GET /tickets/users/{id}. A null reply is an empty list.
func (c *TicketClient) ListTicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	var tickets []dto.TicketDTO
	if err := c.peer.getJSON(ctx, "/tickets/users/"+strconv.FormatInt(userID, 10), &tickets); err != nil {
		return nil, err
	}
	return lo.Map(tickets, func(t dto.TicketDTO, _ int) domain.Ticket { return t.ToDomain() }), nil
}
