package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

// UserLookup resolves a user record owned by the user service.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	users      UserLookup
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Users      UserLookup
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// TicketInput carries the writable ticket fields.
type TicketInput struct {
	Issue      string
	RaisedBy   int64
	RaisedOn   *domain.Date
	AssignedTo *int64
	AssignedOn *domain.Date
	ClosedOn   *domain.Date
	Status     domain.TicketStatus
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateTicket stores a new ticket. The raiser is not checked against the user
// service. RaisedOn defaults to today and Status to OPEN.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketInput) (*domain.Ticket, error) {
	ticket := input.toTicket(0)
	if ticket.RaisedOn.IsZero() {
		ticket.RaisedOn = s.today()
	}
	if ticket.Status == "" {
		ticket.Status = domain.TicketStatusOpen
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, s.translate(err, ticket.ID)
	}
	s.publishEvent(ctx, events.New(events.EventTicketCreated, ticket.ID, statusPayload(ticket, "")))
	return ticket, nil
}

// GetTicketByID returns ticket id.
func (s *TicketService) GetTicketByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id)
	}
	return ticket, nil
}

// ListTickets returns every ticket ordered by id.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{})
}

// ListTicketsRaisedBy returns exactly the tickets raised by userID.
func (s *TicketService) ListTicketsRaisedBy(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{RaisedBy: &userID})
}

// ListTicketsAssignedTo returns the tickets currently assigned to executiveID.
func (s *TicketService) ListTicketsAssignedTo(ctx context.Context, executiveID int64) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{AssignedTo: &executiveID})
}

// ListTicketsByStatus returns the tickets in status.
func (s *TicketService) ListTicketsByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return s.list(ctx, repository.TicketFilter{Status: lo.ToPtr(status)})
}

func (s *TicketService) list(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return tickets, nil
}

// UpdateTicket replaces every field of ticket id with the input. An omitted
// RaisedOn or Status keeps the stored value.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketInput) (*domain.Ticket, error) {
	existing, err := s.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket := input.toTicket(id)
	if ticket.RaisedOn.IsZero() {
		ticket.RaisedOn = existing.RaisedOn
	}
	if ticket.Status == "" {
		ticket.Status = existing.Status
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.translate(err, id)
	}
	s.publishEvent(ctx, events.New(events.EventTicketUpdated, id, statusPayload(ticket, existing.Status)))
	return ticket, nil
}

// DeleteTicket removes ticket id. Deleting an unknown id is not an error.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		return errorutil.NewInternalError(err)
	}
	s.publishEvent(ctx, events.New(events.EventTicketDeleted, id, nil))
	return nil
}

// AssignTicket hands ticket id to executiveID and marks it ASSIGNED.
// Reassigning to the same executive leaves status and assignee unchanged.
func (s *TicketService) AssignTicket(ctx context.Context, id, executiveID int64) (*domain.Ticket, error) {
	ticket, err := s.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := ticket.Status
	ticket.AssignedTo = &executiveID
	ticket.AssignedOn = lo.ToPtr(s.today())
	ticket.Status = domain.TicketStatusAssigned
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.translate(err, id)
	}
	s.publishEvent(ctx, events.New(events.EventTicketAssigned, id, statusPayload(ticket, previous)))
	return ticket, nil
}

// CloseTicket marks ticket id CLOSED. Closing an already closed ticket succeeds.
func (s *TicketService) CloseTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := ticket.Status
	ticket.ClosedOn = lo.ToPtr(s.today())
	ticket.Status = domain.TicketStatusClosed
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, s.translate(err, id)
	}
	s.publishEvent(ctx, events.New(events.EventTicketClosed, id, statusPayload(ticket, previous)))
	return ticket, nil
}

// ResolveUser fetches user userID from the user service.
func (s *TicketService) ResolveUser(ctx context.Context, userID int64) (*domain.User, error) {
	if s.users == nil {
		return nil, errorutil.NewUpstreamUnavailable("user-service", errors.New("user service not configured"), nil)
	}
	return s.users.GetUserByID(ctx, userID)
}

func (s *TicketService) translate(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errorutil.NewNotFound("ticket", map[string]any{"id": id})
	case errors.Is(err, repository.ErrDuplicate):
		return errorutil.NewConflict("ticket already exists", map[string]any{"id": id})
	default:
		return errorutil.NewInternalError(err)
	}
}

func (s *TicketService) today() domain.Date {
	return domain.NewDate(s.now().UTC())
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (in TicketInput) toTicket(id int64) *domain.Ticket {
	ticket := &domain.Ticket{
		ID:         id,
		Issue:      strings.TrimSpace(in.Issue),
		RaisedBy:   in.RaisedBy,
		AssignedTo: in.AssignedTo,
		AssignedOn: in.AssignedOn,
		ClosedOn:   in.ClosedOn,
		Status:     in.Status,
	}
	if in.RaisedOn != nil {
		ticket.RaisedOn = *in.RaisedOn
	}
	return ticket
}

func statusPayload(ticket *domain.Ticket, previous domain.TicketStatus) events.TicketStatusPayload {
	return events.TicketStatusPayload{
		RaisedBy:   ticket.RaisedBy,
		AssignedTo: ticket.AssignedTo,
		OldStatus:  previous,
		NewStatus:  ticket.Status,
	}
}
