package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ContactRepository encapsulates channel-address persistence. The WhatsApp
// number carries a unique constraint; a duplicate insert surfaces as a
// conflict the caller resolves by re-reading.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	GetByWhatsappNumber(ctx context.Context, number string) (*domain.Contact, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository instantiates repository.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (customer_id, whatsapp_number, name)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		contact.CustomerID,
		contact.WhatsappNumber,
		contact.Name,
	).Scan(&contact.ID, &contact.CreatedAt)
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	const query = `
        SELECT id, customer_id, whatsapp_number, name, created_at
        FROM contacts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *contactRepository) GetByWhatsappNumber(ctx context.Context, number string) (*domain.Contact, error) {
	const query = `
        SELECT id, customer_id, whatsapp_number, name, created_at
        FROM contacts WHERE whatsapp_number=$1`
	return r.fetchSingle(ctx, query, number)
}

func (r *contactRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Contact, error) {
	const query = `
        SELECT id, customer_id, whatsapp_number, name, created_at
        FROM contacts WHERE customer_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contact
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.CustomerID,
			&contact.WhatsappNumber,
			&contact.Name,
			&contact.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}

func (r *contactRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&contact.ID,
		&contact.CustomerID,
		&contact.WhatsappNumber,
		&contact.Name,
		&contact.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}
