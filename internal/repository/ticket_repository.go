package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures listing parameters for the dashboard.
type TicketFilter struct {
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
	AssignedAgentID *string
	CustomerID      *string
	Limit           int
	Offset          int
}

// TicketCounts aggregates dashboard metrics.
type TicketCounts struct {
	Open          int
	InProgress    int
	ResolvedToday int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	FindLatestOpenByCustomer(ctx context.Context, customerID string) (*domain.Ticket, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	Counts(ctx context.Context, now time.Time) (TicketCounts, error)
	ListUnbreachedWithPolicy(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, number, title, description, status, priority, customer_id, contact_id,
               assigned_agent_id, team_id, category_id, sla_policy_id, channel,
               first_response_at, resolved_at, closed_at, sla_breached, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, title, description, status, priority, customer_id, contact_id,
            assigned_agent_id, team_id, category_id, sla_policy_id, channel)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CustomerID,
		ticket.ContactID,
		ticket.AssignedAgentID,
		ticket.TeamID,
		ticket.CategoryID,
		ticket.SLAPolicyID,
		ticket.Channel,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, assigned_agent_id=$5,
            team_id=$6, category_id=$7, sla_policy_id=$8, first_response_at=$9, resolved_at=$10,
            closed_at=$11, sla_breached=$12, updated_at=NOW()
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedAgentID,
		ticket.TeamID,
		ticket.CategoryID,
		ticket.SLAPolicyID,
		ticket.FirstResponseAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.SLABreached,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanTicketRow(row)
}

// FindLatestOpenByCustomer returns the most recent ticket still in "open"
// for the customer, or pgx.ErrNoRows when none exists.
func (r *ticketRepository) FindLatestOpenByCustomer(ctx context.Context, customerID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets WHERE customer_id=$1 AND status='open'
        ORDER BY created_at DESC LIMIT 1`
	return r.fetchSingle(ctx, query, customerID)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("assigned_agent_id=$%d", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// CountCreatedBetween counts tickets created in [from, to); ticket numbering
// derives the daily sequence from it.
func (r *ticketRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE created_at >= $1 AND created_at < $2`
	var count int
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ticketRepository) Counts(ctx context.Context, now time.Time) (TicketCounts, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE status='open'),
            COUNT(*) FILTER (WHERE status='in_progress'),
            COUNT(*) FILTER (WHERE status='resolved' AND resolved_at >= $1 AND resolved_at < $2)
        FROM tickets`
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var counts TicketCounts
	if err := r.pool.QueryRow(ctx, query, dayStart, dayStart.AddDate(0, 0, 1)).Scan(
		&counts.Open,
		&counts.InProgress,
		&counts.ResolvedToday,
	); err != nil {
		return TicketCounts{}, err
	}
	return counts, nil
}

// ListUnbreachedWithPolicy feeds the SLA sweep: non-terminal tickets carrying
// a policy whose breach flag is still unset.
func (r *ticketRepository) ListUnbreachedWithPolicy(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE sla_policy_id IS NOT NULL AND NOT sla_breached
          AND status NOT IN ('closed','cancelled')`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.CustomerID,
		&ticket.ContactID,
		&ticket.AssignedAgentID,
		&ticket.TeamID,
		&ticket.CategoryID,
		&ticket.SLAPolicyID,
		&ticket.Channel,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.SLABreached,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
