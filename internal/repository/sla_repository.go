package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// SLAPolicyRepository reads configured SLA targets.
type SLAPolicyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository builds repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

const slaColumns = `id, name, priority, first_response_target, resolution_target, is_active, created_at`

func (r *slaPolicyRepository) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	query := `SELECT ` + slaColumns + ` FROM sla_policies WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *slaPolicyRepository) GetActiveByPriority(ctx context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	query := `SELECT ` + slaColumns + ` FROM sla_policies WHERE priority=$1 AND is_active ORDER BY created_at LIMIT 1`
	return r.fetchSingle(ctx, query, priority)
}

func (r *slaPolicyRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&policy.ID,
		&policy.Name,
		&policy.Priority,
		&policy.FirstResponseTarget,
		&policy.ResolutionTarget,
		&policy.IsActive,
		&policy.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}
