package repositories

import (
	"context"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	// Register creates the tenant, its first admin and default settings in one transaction.
	Register(ctx context.Context, tenant *models.Tenant, admin *models.User, setting *models.Setting) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type tenantRepo struct {
	db DB
	tx *TxManager
}

func NewTenantRepo(db DB, tx *TxManager) TenantRepository {
	return &tenantRepo{db: db, tx: tx}
}

func (r *tenantRepo) Register(ctx context.Context, tenant *models.Tenant, admin *models.User, setting *models.Setting) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO tenants (id, name, document, email, phone, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		`, tenant.ID, tenant.Name, tenant.Document, tenant.Email, tenant.Phone, tenant.Active)
		if err != nil {
			return err
		}
		if err := insertUser(ctx, tx, admin); err != nil {
			return err
		}
		return insertSetting(ctx, tx, setting)
	})
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, document, email, phone, active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Document, &t.Email, &t.Phone, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM tenants WHERE active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
