package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

// TicketLookup resolves the tickets raised by a user. It is served by the
// ticket service over HTTP.
type TicketLookup interface {
	ListTicketsByUser(ctx context.Context, userID int64) ([]domain.Ticket, error)
}

// UserService coordinates user workflows.
type UserService struct {
	users      repository.UserRepository
	tickets    TicketLookup
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Tickets    TicketLookup
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// UserInput carries the writable user fields.
type UserInput struct {
	Name  string
	Email string
	Phone string
	Role  domain.Role
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		tickets:    deps.Tickets,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateUser stores a new user. Email and phone must not belong to another user.
func (s *UserService) CreateUser(ctx context.Context, input UserInput) (*domain.User, error) {
	user := input.toUser(0)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.translate(err, user)
	}
	s.publishEvent(ctx, events.New(events.EventUserCreated, user.ID, userPayload(user)))
	return user, nil
}

// GetUserByID returns the user with the given id.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, nil, "id", id)
	}
	return user, nil
}

// GetUserByEmail returns the user owning email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.translate(err, nil, "email", email)
	}
	return user, nil
}

// GetUserByPhone returns the user owning phone.
func (s *UserService) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	user, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, s.translate(err, nil, "phone", phone)
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listByRole(ctx, nil)
}

// ListCustomers returns the users with role CUSTOMER.
func (s *UserService) ListCustomers(ctx context.Context) ([]domain.User, error) {
	return s.listByRole(ctx, lo.ToPtr(domain.RoleCustomer))
}

// ListExecutives returns the users with role EXECUTIVE.
func (s *UserService) ListExecutives(ctx context.Context) ([]domain.User, error) {
	return s.listByRole(ctx, lo.ToPtr(domain.RoleExecutive))
}

func (s *UserService) listByRole(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{Role: role})
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	return users, nil
}

// UpdateUser overwrites the writable fields of user id.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserInput) (*domain.User, error) {
	user := input.toUser(id)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, s.translate(err, user, "id", id)
	}
	s.publishEvent(ctx, events.New(events.EventUserUpdated, user.ID, userPayload(user)))
	return user, nil
}

// DeleteUser removes user id. Deleting an unknown id is not an error.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return errorutil.NewInternalError(err)
	}
	s.publishEvent(ctx, events.New(events.EventUserDeleted, id, nil))
	return nil
}

// ListUserTickets returns the tickets raised by user id, as reported by the
// ticket service.
func (s *UserService) ListUserTickets(ctx context.Context, id int64) ([]domain.Ticket, error) {
	if _, err := s.GetUserByID(ctx, id); err != nil {
		return nil, err
	}
	if s.tickets == nil {
		return nil, errorutil.NewUpstreamUnavailable("ticket-service", errors.New("ticket service not configured"), nil)
	}
	return s.tickets.ListTicketsByUser(ctx, id)
}

// translate maps repository sentinels onto domain errors. kv names the lookup
// key reported in a not-found error.
func (s *UserService) translate(err error, user *domain.User, kv ...any) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		details := map[string]any{}
		for i := 0; i+1 < len(kv); i += 2 {
			details[kv[i].(string)] = kv[i+1]
		}
		return errorutil.NewNotFound("user", details)
	case errors.Is(err, repository.ErrDuplicate):
		details := map[string]any{}
		if user != nil {
			details["email"] = user.Email
			details["phone"] = user.Phone
		}
		return errorutil.NewConflict("user with this email or phone already exists", details)
	default:
		return errorutil.NewInternalError(err)
	}
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func (in UserInput) toUser(id int64) *domain.User {
	return &domain.User{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
		Role:  in.Role,
	}
}

func userPayload(user *domain.User) events.UserPayload {
	return events.UserPayload{Email: user.Email, Role: user.Role}
}
