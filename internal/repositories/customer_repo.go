package repositories

import (
	"context"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	DocumentExists(ctx context.Context, tenantID uuid.UUID, document string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	HasDependents(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error)
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, name, document_type, document, email, phone, address, city, state, zip_code, notes, total_spent, purchase_count, last_purchase_at, active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.DocumentType, &c.Document, &c.Email, &c.Phone, &c.Address,
		&c.City, &c.State, &c.ZipCode, &c.Notes, &c.TotalSpent, &c.PurchaseCount, &c.LastPurchaseAt, &c.Active,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, name, document_type, document, email, phone, address, city, state, zip_code, notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.TenantID, c.Name, c.DocumentType, c.Document, c.Email, c.Phone,
		c.Address, c.City, c.State, c.ZipCode, c.Notes, c.Active)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *customerRepo) DocumentExists(ctx context.Context, tenantID uuid.UUID, document string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE tenant_id = $1 AND document = $2 AND ($3::uuid IS NULL OR id <> $3))`
	err := r.db.QueryRow(ctx, query, tenantID, document, excludeID).Scan(&exists)
	return exists, err
}

// Update leaves the purchase aggregates alone; they belong to sales.
func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, document_type = $2, document = $3, email = $4, phone = $5, address = $6, city = $7,
			state = $8, zip_code = $9, notes = $10, active = $11, updated_at = NOW()
		WHERE tenant_id = $12 AND id = $13
	`
	tag, err := r.db.Exec(ctx, query, c.Name, c.DocumentType, c.Document, c.Email, c.Phone, c.Address, c.City,
		c.State, c.ZipCode, c.Notes, c.Active, c.TenantID, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasDependents reports whether sales, service orders, invoices or transactions reference the customer.
func (r *customerRepo) HasDependents(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (SELECT 1 FROM sales WHERE tenant_id = $1 AND customer_id = $2)
			OR EXISTS (SELECT 1 FROM service_orders WHERE tenant_id = $1 AND customer_id = $2)
			OR EXISTS (SELECT 1 FROM invoices WHERE tenant_id = $1 AND customer_id = $2)
			OR EXISTS (SELECT 1 FROM transactions WHERE tenant_id = $1 AND customer_id = $2)
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&exists)
	return exists, err
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Query != "" {
		w.add(`(name ILIKE $%[1]d OR COALESCE(document, '') ILIKE $%[1]d OR COALESCE(email, '') ILIKE $%[1]d OR COALESCE(phone, '') ILIKE $%[1]d)`, likePattern(filter.Query))
	}
	if filter.Active != nil {
		w.add(`active = $%d`, *filter.Active)
	} else {
		w.raw(`active = TRUE`)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM customers`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers`+w.sql()+` ORDER BY name ASC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}
