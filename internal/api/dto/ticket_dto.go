package dto

import (
	"github.com/samber/lo"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// TicketDTO is the wire form of a ticket, also decoded by the user service.
type TicketDTO struct {
	ID         int64               `json:"id"`
	Issue      string              `json:"issue"`
	RaisedBy   int64               `json:"raisedBy"`
	RaisedOn   domain.Date         `json:"raisedOn"`
	AssignedTo *int64              `json:"assignedTo"`
	AssignedOn *domain.Date        `json:"assignedOn"`
	ClosedOn   *domain.Date        `json:"closedOn"`
	Status     domain.TicketStatus `json:"status"`
}

// TicketRequest payload for create. Omitted raisedOn and status take defaults.
type TicketRequest struct {
	Issue      string              `json:"issue" validate:"required,notblank"`
	RaisedBy   int64               `json:"raisedBy" validate:"required,gt=0"`
	RaisedOn   *domain.Date        `json:"raisedOn"`
	AssignedTo *int64              `json:"assignedTo"`
	AssignedOn *domain.Date        `json:"assignedOn"`
	ClosedOn   *domain.Date        `json:"closedOn"`
	Status     domain.TicketStatus `json:"status"`
}

// UpdateTicketRequest payload for PUT /tickets; the id travels in the body.
type UpdateTicketRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	TicketRequest
}

// Input converts the request to service input.
func (r TicketRequest) Input() service.TicketInput {
	input := service.TicketInput{
		Issue:      r.Issue,
		RaisedBy:   r.RaisedBy,
		AssignedTo: r.AssignedTo,
		AssignedOn: nonZero(r.AssignedOn),
		ClosedOn:   nonZero(r.ClosedOn),
		Status:     r.Status,
	}
	input.RaisedOn = nonZero(r.RaisedOn)
	return input
}

// FromTicket projects a ticket onto its wire form.
func FromTicket(ticket *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:         ticket.ID,
		Issue:      ticket.Issue,
		RaisedBy:   ticket.RaisedBy,
		RaisedOn:   ticket.RaisedOn,
		AssignedTo: ticket.AssignedTo,
		AssignedOn: ticket.AssignedOn,
		ClosedOn:   ticket.ClosedOn,
		Status:     ticket.Status,
	}
}

// FromTickets projects a list; the result is never nil.
func FromTickets(tickets []domain.Ticket) []TicketDTO {
	return lo.Map(tickets, func(t domain.Ticket, _ int) TicketDTO { return FromTicket(&t) })
}

// ToDomain converts a decoded DTO back to a domain value.
func (d TicketDTO) ToDomain() domain.Ticket {
	return domain.Ticket{
		ID:         d.ID,
		Issue:      d.Issue,
		RaisedBy:   d.RaisedBy,
		RaisedOn:   d.RaisedOn,
		AssignedTo: d.AssignedTo,
		AssignedOn: nonZero(d.AssignedOn),
		ClosedOn:   nonZero(d.ClosedOn),
		Status:     d.Status,
	}
}

// nonZero drops dates decoded from null or "".
func nonZero(d *domain.Date) *domain.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
