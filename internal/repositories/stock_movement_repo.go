package repositories

import (
	"context"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const movementColumns = `id, tenant_id, product_id, type, quantity, previous_stock, new_stock, reason, reference_type, reference_id, user_id, created_at`

// lockedProduct is a product row held with FOR UPDATE inside a transaction.
type lockedProduct struct {
	ID        uuid.UUID
	Name      string
	SalePrice decimal.Decimal
	Stock     int
	Active    bool
}

// lockProducts locks the tenant's products in id order so concurrent sales cannot deadlock.
func lockProducts(ctx context.Context, q Querier, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*lockedProduct, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, sale_price, stock, active
		FROM products
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]*lockedProduct, len(ids))
	for rows.Next() {
		p := &lockedProduct{}
		if err := rows.Scan(&p.ID, &p.Name, &p.SalePrice, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		locked[p.ID] = p
	}
	return locked, rows.Err()
}

// uniqueIDs keeps first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func insertMovement(ctx context.Context, q Querier, m *models.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO stock_movements (id, tenant_id, product_id, type, quantity, previous_stock, new_stock, reason, reference_type, reference_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
	`, m.ID, m.TenantID, m.ProductID, m.Type, m.Quantity, m.PreviousStock, m.NewStock, m.Reason, m.ReferenceType, m.ReferenceID, m.UserID)
	return err
}

// applyStockDelta moves stock by delta and records the movement. The caller holds the row lock.
func applyStockDelta(ctx context.Context, q Querier, m *models.StockMovement, delta int) error {
	_, err := q.Exec(ctx, `
		UPDATE products SET stock = stock + $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`, delta, m.TenantID, m.ProductID)
	if err != nil {
		return err
	}
	return insertMovement(ctx, q, m)
}

func scanMovement(row pgx.Row) (*models.StockMovement, error) {
	m := &models.StockMovement{}
	err := row.Scan(&m.ID, &m.TenantID, &m.ProductID, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock,
		&m.Reason, &m.ReferenceType, &m.ReferenceID, &m.UserID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func listMovements(ctx context.Context, q Querier, tenantID, productID uuid.UUID, limit, offset int) ([]*models.StockMovement, int, error) {
	total, err := countRows(ctx, q, `SELECT COUNT(*) FROM stock_movements WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, tenantID, productID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var movements []*models.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, err
		}
		movements = append(movements, m)
	}
	return movements, total, rows.Err()
}
