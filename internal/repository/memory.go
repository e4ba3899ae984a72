package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// The in-memory repositories back a service when no Postgres DSN is configured.
// They mirror the table constraints: generated ids and unique user email/phone.

type memoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.User
}

// NewMemoryUserRepository returns a process-local UserRepository.
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{rows: make(map[int64]domain.User)}
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflicts(user, 0) {
		return ErrDuplicate
	}
	r.nextID++
	user.ID = r.nextID
	r.rows[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[user.ID]; !ok {
		return ErrNotFound
	}
	if r.conflicts(user, user.ID) {
		return ErrDuplicate
	}
	r.rows[user.ID] = *user
	return nil
}

// conflicts must be called with mu held.
func (r *memoryUserRepository) conflicts(user *domain.User, self int64) bool {
	for id, existing := range r.rows {
		if id == self {
			continue
		}
		if existing.Email == user.Email || existing.Phone == user.Phone {
			return true
		}
	}
	return false
}

func (r *memoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Phone == phone })
}

func (r *memoryUserRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.rows {
		if match(user) {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) List(_ context.Context, filter UserFilter) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := lo.Filter(lo.Values(r.rows), func(u domain.User, _ int) bool {
		return filter.Role == nil || u.Role == *filter.Role
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memoryTicketRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Ticket
}

// NewMemoryTicketRepository returns a process-local TicketRepository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{rows: make(map[int64]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	r.rows[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[ticket.ID]; !ok {
		return ErrNotFound
	}
	r.rows[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memoryTicketRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memoryTicketRepository) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneTicket(ticket)
	return &found, nil
}

func (r *memoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tickets := []domain.Ticket{}
	for _, t := range r.rows {
		if filter.RaisedBy != nil && t.RaisedBy != *filter.RaisedBy {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		tickets = append(tickets, cloneTicket(t))
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

// cloneTicket copies the pointer fields so stored rows never alias caller memory.
func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssignedTo != nil {
		t.AssignedTo = lo.ToPtr(*t.AssignedTo)
	}
	if t.AssignedOn != nil {
		t.AssignedOn = lo.ToPtr(*t.AssignedOn)
	}
	if t.ClosedOn != nil {
		t.ClosedOn = lo.ToPtr(*t.ClosedOn)
	}
	return t
}
