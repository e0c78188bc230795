package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TagRepository manages labels and the ticket/tag junction.
type TagRepository interface {
	ListActive(ctx context.Context) ([]domain.Tag, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Tag, error)
	AttachToTicket(ctx context.Context, ticketID, tagID string) error
	DetachFromTicket(ctx context.Context, ticketID, tagID string) error
}

type tagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository builds repository.
func NewTagRepository(pool *pgxpool.Pool) TagRepository {
	return &tagRepository{pool: pool}
}

func (r *tagRepository) ListActive(ctx context.Context) ([]domain.Tag, error) {
	const query = `SELECT id, name, color, is_active, created_at FROM tags WHERE is_active ORDER BY name`
	return r.list(ctx, query)
}

func (r *tagRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Tag, error) {
	const query = `
        SELECT t.id, t.name, t.color, t.is_active, t.created_at
        FROM tags t JOIN ticket_tags tt ON tt.tag_id = t.id
        WHERE tt.ticket_id=$1 ORDER BY t.name`
	return r.list(ctx, query, ticketID)
}

func (r *tagRepository) AttachToTicket(ctx context.Context, ticketID, tagID string) error {
	const query = `INSERT INTO ticket_tags (ticket_id, tag_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, ticketID, tagID)
	return err
}

func (r *tagRepository) DetachFromTicket(ctx context.Context, ticketID, tagID string) error {
	const query = `DELETE FROM ticket_tags WHERE ticket_id=$1 AND tag_id=$2`
	_, err := r.pool.Exec(ctx, query, ticketID, tagID)
	return err
}

func (r *tagRepository) list(ctx context.Context, query string, args ...any) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.IsActive, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}
