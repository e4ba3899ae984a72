package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields are not filtered on.
type TicketFilter struct {
	RaisedBy   *int64
	AssignedTo *int64
	Status     *domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, issue, raised_by, raised_on, assigned_to, assigned_on, closed_on, status`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (issue, raised_by, raised_on, assigned_to, assigned_on, closed_on, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		ticket.Issue,
		ticket.RaisedBy,
		dateArg(&ticket.RaisedOn),
		ticket.AssignedTo,
		dateArg(ticket.AssignedOn),
		dateArg(ticket.ClosedOn),
		ticket.Status,
	).Scan(&ticket.ID)
	return mapError(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET issue=$1, raised_by=$2, raised_on=$3, assigned_to=$4, assigned_on=$5,
            closed_on=$6, status=$7
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Issue,
		ticket.RaisedBy,
		dateArg(&ticket.RaisedOn),
		ticket.AssignedTo,
		dateArg(ticket.AssignedOn),
		dateArg(ticket.ClosedOn),
		ticket.Status,
		ticket.ID,
	)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	return mapError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, mapError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RaisedBy != nil {
		args = append(args, *filter.RaisedBy)
		clauses = append(clauses, fmt.Sprintf("raised_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY id`, ticketColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket     domain.Ticket
		raisedOn   *time.Time
		assignedOn *time.Time
		closedOn   *time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Issue,
		&ticket.RaisedBy,
		&raisedOn,
		&ticket.AssignedTo,
		&assignedOn,
		&closedOn,
		&ticket.Status,
	); err != nil {
		return nil, err
	}
	if raisedOn != nil {
		ticket.RaisedOn = domain.NewDate(*raisedOn)
	}
	ticket.AssignedOn = datePtr(assignedOn)
	ticket.ClosedOn = datePtr(closedOn)
	return &ticket, nil
}

// dateArg converts an optional date into a DATE parameter; unset dates are NULL.
func dateArg(d *domain.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}

func datePtr(t *time.Time) *domain.Date {
	if t == nil {
		return nil
	}
	return domain.DatePtr(*t)
}
