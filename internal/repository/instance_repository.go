package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// InstanceRepository manages configured provider instances.
type InstanceRepository interface {
	Create(ctx context.Context, instance *domain.ProviderInstance) error
	GetByKey(ctx context.Context, instanceKey string) (*domain.ProviderInstance, error)
	ListActive(ctx context.Context) ([]domain.ProviderInstance, error)
	UpdateStatus(ctx context.Context, id string, status domain.InstanceStatus) error
}

type instanceRepository struct {
	pool *pgxpool.Pool
}

// NewInstanceRepository builds repository.
func NewInstanceRepository(pool *pgxpool.Pool) InstanceRepository {
	return &instanceRepository{pool: pool}
}

const instanceColumns = `id, name, instance_key, number, status, api_url, token, webhook_url,
        is_active, last_sync_at, created_at`

func (r *instanceRepository) Create(ctx context.Context, instance *domain.ProviderInstance) error {
	const query = `
        INSERT INTO provider_instances (name, instance_key, number, status, api_url, token, webhook_url, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		instance.Name,
		instance.InstanceKey,
		instance.Number,
		instance.Status,
		instance.APIURL,
		instance.Token,
		instance.WebhookURL,
		instance.IsActive,
	).Scan(&instance.ID, &instance.CreatedAt)
}

func (r *instanceRepository) GetByKey(ctx context.Context, instanceKey string) (*domain.ProviderInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM provider_instances WHERE instance_key=$1`
	row := r.pool.QueryRow(ctx, query, instanceKey)
	return scanInstanceRow(row)
}

func (r *instanceRepository) ListActive(ctx context.Context) ([]domain.ProviderInstance, error) {
	query := `SELECT ` + instanceColumns + ` FROM provider_instances WHERE is_active ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProviderInstance
	for rows.Next() {
		instance, err := scanInstanceRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *instance)
	}
	return result, rows.Err()
}

func (r *instanceRepository) UpdateStatus(ctx context.Context, id string, status domain.InstanceStatus) error {
	const query = `UPDATE provider_instances SET status=$1, last_sync_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanInstanceRow(row pgx.Row) (*domain.ProviderInstance, error) {
	var instance domain.ProviderInstance
	if err := row.Scan(
		&instance.ID,
		&instance.Name,
		&instance.InstanceKey,
		&instance.Number,
		&instance.Status,
		&instance.APIURL,
		&instance.Token,
		&instance.WebhookURL,
		&instance.IsActive,
		&instance.LastSyncAt,
		&instance.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &instance, nil
}
