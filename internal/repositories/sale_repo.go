package repositories

import (
	"context"
	"fmt"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale, in *models.CreateSaleInput) error
	Cancel(ctx context.Context, tenantID, id, userID uuid.UUID, reason string) (*models.Sale, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) ([]*models.Sale, int, error)
	Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error)
}

type saleRepo struct {
	db DB
	tx *TxManager
}

func NewSaleRepo(db DB, tx *TxManager) SaleRepository {
	return &saleRepo{db: db, tx: tx}
}

const saleSelect = `
	SELECT s.id, s.tenant_id, s.number, s.customer_id, s.user_id, s.status, s.payment_method, s.subtotal, s.discount,
		s.total, s.notes, s.cancel_reason, s.cancelled_at, s.created_at, s.updated_at, c.name
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id
`

func scanSale(row pgx.Row) (*models.Sale, error) {
	s := &models.Sale{}
	err := row.Scan(&s.ID, &s.TenantID, &s.Number, &s.CustomerID, &s.UserID, &s.Status, &s.PaymentMethod, &s.Subtotal,
		&s.Discount, &s.Total, &s.Notes, &s.CancelReason, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt, &s.CustomerName)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create prices the sale against locked product rows and persists it with its stock, ledger, financial and
// customer effects in one transaction. On success sale carries the number, items and totals.
func (r *saleRepo) Create(ctx context.Context, sale *models.Sale, in *models.CreateSaleInput) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if sale.CustomerID != nil {
			var id uuid.UUID
			err := tx.QueryRow(ctx, `SELECT id FROM customers WHERE tenant_id = $1 AND id = $2 AND active = TRUE FOR UPDATE`,
				sale.TenantID, *sale.CustomerID).Scan(&id)
			if err != nil {
				if IsNotFound(err) {
					return common.NotFound("customer")
				}
				return err
			}
		}

		ids := make([]uuid.UUID, 0, len(in.Items))
		for _, item := range in.Items {
			ids = append(ids, item.ProductID)
		}
		locked, err := lockProducts(ctx, tx, sale.TenantID, uniqueIDs(ids))
		if err != nil {
			return err
		}

		sale.Items = sale.Items[:0]
		remaining := make(map[uuid.UUID]int, len(locked))
		for id, p := range locked {
			remaining[id] = p.Stock
		}
		for _, line := range in.Items {
			p, ok := locked[line.ProductID]
			if !ok || !p.Active {
				return common.NotFound("product").WithDetails(map[string]string{"product_id": line.ProductID.String()})
			}
			if remaining[p.ID] < line.Quantity {
				return common.ErrInsufficientStock.WithDetails(map[string]string{
					"product":   p.Name,
					"available": fmt.Sprint(remaining[p.ID]),
					"requested": fmt.Sprint(line.Quantity),
				})
			}
			remaining[p.ID] -= line.Quantity

			unitPrice := p.SalePrice
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			discount := decimal.Zero
			if line.Discount != nil {
				discount = *line.Discount
			}
			total := models.LineTotal(line.Quantity, unitPrice, discount)
			if total.IsNegative() {
				return common.ErrInvalidInput.WithMessage("item discount exceeds item amount").
					WithDetails(map[string]string{"product": p.Name})
			}
			sale.Items = append(sale.Items, &models.SaleItem{
				ID:          uuid.New(),
				SaleID:      sale.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   unitPrice,
				Discount:    discount,
				Total:       total,
			})
		}

		sale.Recalculate()
		if sale.Total.IsNegative() {
			return common.ErrInvalidInput.WithMessage("discount exceeds subtotal")
		}

		number, err := nextSequence(ctx, tx, sale.TenantID, "sale")
		if err != nil {
			return err
		}
		sale.Number = number
		now := time.Now().UTC()
		sale.CreatedAt, sale.UpdatedAt = now, now

		_, err = tx.Exec(ctx, `
			INSERT INTO sales (id, tenant_id, number, customer_id, user_id, status, payment_method, subtotal, discount, total, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		`, sale.ID, sale.TenantID, sale.Number, sale.CustomerID, sale.UserID, sale.Status, sale.PaymentMethod,
			sale.Subtotal, sale.Discount, sale.Total, sale.Notes, now)
		if err != nil {
			return err
		}

		stock := make(map[uuid.UUID]int, len(locked))
		for id, p := range locked {
			stock[id] = p.Stock
		}
		for _, item := range sale.Items {
			_, err = tx.Exec(ctx, `
				INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, discount, total)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, item.ID, item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Discount, item.Total)
			if err != nil {
				return err
			}

			reason := fmt.Sprintf("Sale #%d", sale.Number)
			movement := &models.StockMovement{
				TenantID:      sale.TenantID,
				ProductID:     item.ProductID,
				Type:          models.MovementOut,
				Quantity:      item.Quantity,
				PreviousStock: stock[item.ProductID],
				NewStock:      stock[item.ProductID] - item.Quantity,
				Reason:        &reason,
				ReferenceType: models.RefSale,
				ReferenceID:   &sale.ID,
				UserID:        &sale.UserID,
			}
			if err := applyStockDelta(ctx, tx, movement, -item.Quantity); err != nil {
				return err
			}
			stock[item.ProductID] = movement.NewStock
		}

		payment := sale.PaymentMethod
		financial := &models.Transaction{
			TenantID:      sale.TenantID,
			Type:          models.TransactionIncome,
			Category:      "SALES",
			Description:   fmt.Sprintf("Sale #%d", sale.Number),
			Amount:        sale.Total,
			PaymentMethod: &payment,
			Status:        models.TransactionPaid,
			PaidAt:        &now,
			ReferenceType: models.RefSale,
			ReferenceID:   &sale.ID,
			CustomerID:    sale.CustomerID,
			CreatedBy:     &sale.UserID,
		}
		if sale.PaymentMethod == models.PaymentBankSlip {
			financial.Status = models.TransactionPending
			financial.PaidAt = nil
		}
		if err := insertTransaction(ctx, tx, financial); err != nil {
			return err
		}

		if sale.CustomerID != nil {
			_, err = tx.Exec(ctx, `
				UPDATE customers
				SET total_spent = total_spent + $1, purchase_count = purchase_count + 1, last_purchase_at = $2, updated_at = NOW()
				WHERE tenant_id = $3 AND id = $4
			`, sale.Total, now, sale.TenantID, *sale.CustomerID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Cancel reverses a completed sale: stock comes back, the financial entry is cancelled and the customer
// aggregate is rolled back. The sale row is kept with status CANCELLED.
func (r *saleRepo) Cancel(ctx context.Context, tenantID, id, userID uuid.UUID, reason string) (*models.Sale, error) {
	var sale *models.Sale
	err := r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		sale, err = scanSale(tx.QueryRow(ctx, saleSelect+` WHERE s.tenant_id = $1 AND s.id = $2 FOR UPDATE OF s`, tenantID, id))
		if err != nil {
			return err
		}
		if sale.Status != models.SaleStatusCompleted {
			return common.ErrInvalidState.WithMessage("sale is already cancelled")
		}

		sale.Items, err = listSaleItems(ctx, tx, sale.ID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(sale.Items))
		for _, item := range sale.Items {
			ids = append(ids, item.ProductID)
		}
		locked, err := lockProducts(ctx, tx, tenantID, uniqueIDs(ids))
		if err != nil {
			return err
		}
		stock := make(map[uuid.UUID]int, len(locked))
		for pid, p := range locked {
			stock[pid] = p.Stock
		}

		note := fmt.Sprintf("Sale #%d cancelled", sale.Number)
		for _, item := range sale.Items {
			movement := &models.StockMovement{
				TenantID:      tenantID,
				ProductID:     item.ProductID,
				Type:          models.MovementIn,
				Quantity:      item.Quantity,
				PreviousStock: stock[item.ProductID],
				NewStock:      stock[item.ProductID] + item.Quantity,
				Reason:        &note,
				ReferenceType: models.RefSaleCancel,
				ReferenceID:   &sale.ID,
				UserID:        &userID,
			}
			if err := applyStockDelta(ctx, tx, movement, item.Quantity); err != nil {
				return err
			}
			stock[item.ProductID] = movement.NewStock
		}

		_, err = tx.Exec(ctx, `
			UPDATE transactions SET status = 'CANCELLED', updated_at = NOW()
			WHERE tenant_id = $1 AND reference_type = 'SALE' AND reference_id = $2
		`, tenantID, sale.ID)
		if err != nil {
			return err
		}

		if sale.CustomerID != nil {
			_, err = tx.Exec(ctx, `
				UPDATE customers
				SET total_spent = GREATEST(total_spent - $1, 0),
					purchase_count = GREATEST(purchase_count - 1, 0),
					last_purchase_at = (
						SELECT MAX(created_at) FROM sales
						WHERE tenant_id = $2 AND customer_id = $3 AND status = 'COMPLETED' AND id <> $4
					),
					updated_at = NOW()
				WHERE tenant_id = $2 AND id = $3
			`, sale.Total, tenantID, *sale.CustomerID, sale.ID)
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			UPDATE sales SET status = 'CANCELLED', cancel_reason = $1, cancelled_at = $2, updated_at = $2
			WHERE tenant_id = $3 AND id = $4
		`, reason, now, tenantID, sale.ID)
		if err != nil {
			return err
		}
		sale.Status = models.SaleStatusCancelled
		sale.CancelReason = &reason
		sale.CancelledAt = &now
		sale.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func listSaleItems(ctx context.Context, q Querier, saleID uuid.UUID) ([]*models.SaleItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, discount, total
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY product_name
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.SaleItem
	for rows.Next() {
		it := &models.SaleItem{}
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Discount, &it.Total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *saleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, saleSelect+` WHERE s.tenant_id = $1 AND s.id = $2`, tenantID, id))
	if err != nil {
		return nil, err
	}
	sale.Items, err = listSaleItems(ctx, r.db, sale.ID)
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *saleRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) ([]*models.Sale, int, error) {
	w := newWhere("s.tenant_id", tenantID)
	if filter.Status != nil {
		w.add(`s.status = $%d`, *filter.Status)
	}
	if filter.CustomerID != nil {
		w.add(`s.customer_id = $%d`, *filter.CustomerID)
	}
	if filter.From != nil {
		w.add(`s.created_at >= $%d`, *filter.From)
	}
	if filter.To != nil {
		w.add(`s.created_at < $%d`, *filter.To)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM sales s`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, saleSelect+w.sql()+` ORDER BY s.created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sales []*models.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

func (r *saleRepo) Summary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	s := &models.SalesSummary{From: from, To: to}
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'COMPLETED'),
			COALESCE(SUM(total) FILTER (WHERE status = 'COMPLETED'), 0),
			COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM sales
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
	`
	if err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(&s.Count, &s.Total, &s.Cancelled); err != nil {
		return nil, err
	}
	if s.Count > 0 {
		s.AverageTicket = s.Total.Div(decimal.NewFromInt(int64(s.Count))).Round(2)
	}
	return s, nil
}
