package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// MessageRepository manages conversation messages. Content is written once;
// only the delivery status mutates afterwards.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error)
	UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

const messageColumns = `id, ticket_id, direction, type, content, media_url, sender_id,
        provider_message_id, status, is_internal, created_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (ticket_id, direction, type, content, media_url, sender_id,
            provider_message_id, status, is_internal)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.Direction,
		msg.Type,
		msg.Content,
		msg.MediaURL,
		msg.SenderID,
		msg.ProviderMessageID,
		msg.Status,
		msg.IsInternal,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		msg, err := scanMessageRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *msg)
	}
	return result, rows.Err()
}

// GetByProviderMessageID correlates provider status callbacks and enforces
// ingestion idempotency. The provider id is indexed but not a primary key.
func (r *messageRepository) GetByProviderMessageID(ctx context.Context, providerMessageID string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE provider_message_id=$1 LIMIT 1`
	row := r.pool.QueryRow(ctx, query, providerMessageID)
	return scanMessageRow(row)
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id string, status domain.MessageStatus) error {
	const query = `UPDATE messages SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanMessageRow(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	if err := row.Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.Direction,
		&msg.Type,
		&msg.Content,
		&msg.MediaURL,
		&msg.SenderID,
		&msg.ProviderMessageID,
		&msg.Status,
		&msg.IsInternal,
		&msg.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}
