package repositories

import (
	"context"
	"fmt"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, product *models.Product) error
	SetImage(ctx context.Context, tenantID, id uuid.UUID, key *string) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Deactivate(ctx context.Context, tenantID, id uuid.UUID) error
	HasDependents(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error)
	ListLowStockForAlerts(ctx context.Context) ([]*models.Product, error)
	AdjustStock(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.StockAdjustmentInput) (*models.StockMovement, error)
	ListMovements(ctx context.Context, tenantID, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error)
}

type productRepo struct {
	db DB
	tx *TxManager
}

func NewProductRepo(db DB, tx *TxManager) ProductRepository {
	return &productRepo{db: db, tx: tx}
}

const productColumns = `id, tenant_id, name, description, sku, barcode, category, unit, cost_price, sale_price, stock, min_stock, image_key, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.SKU, &p.Barcode, &p.Category, &p.Unit,
		&p.CostPrice, &p.SalePrice, &p.Stock, &p.MinStock, &p.ImageKey, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, name, description, sku, barcode, category, unit, cost_price, sale_price, stock, min_stock, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.TenantID, p.Name, p.Description, p.SKU, p.Barcode, p.Category, p.Unit,
		p.CostPrice, p.SalePrice, p.Stock, p.MinStock, p.Active)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2`
	return scanProduct(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *productRepo) SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE tenant_id = $1 AND sku = $2 AND ($3::uuid IS NULL OR id <> $3))`
	err := r.db.QueryRow(ctx, query, tenantID, sku, excludeID).Scan(&exists)
	return exists, err
}

// Update never touches stock; stock only moves through AdjustStock and sales.
func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, sku = $3, barcode = $4, category = $5, unit = $6,
			cost_price = $7, sale_price = $8, min_stock = $9, active = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	tag, err := r.db.Exec(ctx, query, p.Name, p.Description, p.SKU, p.Barcode, p.Category, p.Unit,
		p.CostPrice, p.SalePrice, p.MinStock, p.Active, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) SetImage(ctx context.Context, tenantID, id uuid.UUID, key *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET image_key = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`, key, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) Deactivate(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasDependents reports whether sale items, service order items or stock movements reference the product.
func (r *productRepo) HasDependents(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (SELECT 1 FROM sale_items si JOIN sales s ON s.id = si.sale_id WHERE s.tenant_id = $1 AND si.product_id = $2)
			OR EXISTS (SELECT 1 FROM service_order_items oi JOIN service_orders o ON o.id = oi.service_order_id WHERE o.tenant_id = $1 AND oi.product_id = $2)
			OR EXISTS (SELECT 1 FROM stock_movements WHERE tenant_id = $1 AND product_id = $2)
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&exists)
	return exists, err
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Query != "" {
		w.add(`(name ILIKE $%[1]d OR sku ILIKE $%[1]d OR COALESCE(barcode, '') ILIKE $%[1]d)`, likePattern(filter.Query))
	}
	if filter.Category != nil {
		w.add(`category = $%d`, *filter.Category)
	}
	if filter.Active != nil {
		w.add(`active = $%d`, *filter.Active)
	} else {
		w.raw(`active = TRUE`)
	}
	if filter.LowStock {
		w.raw(`stock <= min_stock`)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM products`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products`+w.sql()+` ORDER BY name ASC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// ListLowStockForAlerts returns low stock products of every tenant that has alerts enabled, grouped by tenant.
func (r *productRepo) ListLowStockForAlerts(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT ` + prefixed("p", productColumns) + `
		FROM products p
		JOIN settings s ON s.tenant_id = p.tenant_id
		WHERE p.active = TRUE AND p.stock <= p.min_stock AND s.low_stock_alerts = TRUE
		ORDER BY p.tenant_id, p.stock ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AdjustStock applies a manual stock change and records it in the ledger, in one transaction.
func (r *productRepo) AdjustStock(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.StockAdjustmentInput) (*models.StockMovement, error) {
	var movement *models.StockMovement
	err := r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		locked, err := lockProducts(ctx, tx, tenantID, []uuid.UUID{id})
		if err != nil {
			return err
		}
		p, ok := locked[id]
		if !ok {
			return pgx.ErrNoRows
		}

		newStock, qty, err := nextStock(p.Stock, in.Type, in.Quantity)
		if err != nil {
			return err
		}

		reason := in.Reason
		movement = &models.StockMovement{
			TenantID:      tenantID,
			ProductID:     id,
			Type:          in.Type,
			Quantity:      qty,
			PreviousStock: p.Stock,
			NewStock:      newStock,
			Reason:        &reason,
			ReferenceType: models.RefManual,
			UserID:        &userID,
		}
		return applyStockDelta(ctx, tx, movement, newStock-p.Stock)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// nextStock returns the resulting stock and the moved quantity. ADJUSTMENT treats quantity as the new absolute stock.
func nextStock(current int, kind string, quantity int) (int, int, error) {
	switch kind {
	case models.AdjustIn:
		if quantity <= 0 {
			return 0, 0, common.ErrInvalidInput.WithMessage("quantity must be greater than zero")
		}
		return current + quantity, quantity, nil
	case models.AdjustOut:
		if quantity <= 0 {
			return 0, 0, common.ErrInvalidInput.WithMessage("quantity must be greater than zero")
		}
		if quantity > current {
			return 0, 0, common.ErrInsufficientStock.WithDetails(map[string]string{
				"available": fmt.Sprint(current),
				"requested": fmt.Sprint(quantity),
			})
		}
		return current - quantity, quantity, nil
	case models.AdjustAdjustment:
		if quantity < 0 {
			return 0, 0, common.ErrInvalidInput.WithMessage("stock cannot be negative")
		}
		diff := quantity - current
		if diff < 0 {
			diff = -diff
		}
		return quantity, diff, nil
	}
	return 0, 0, common.ErrInvalidInput.WithMessage("unknown adjustment type " + kind)
}

func (r *productRepo) ListMovements(ctx context.Context, tenantID, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error) {
	return listMovements(ctx, r.db, tenantID, productID, limit, offset)
}
