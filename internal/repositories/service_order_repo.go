package repositories

import (
	"context"
	"fmt"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ServiceOrderRepository interface {
	Create(ctx context.Context, order *models.ServiceOrder) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ServiceOrderFilter) ([]*models.ServiceOrder, int, error)
	Update(ctx context.Context, order *models.ServiceOrder) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	HasInvoice(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, from, to string) error
	Complete(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.ServiceOrder, error)
	Deliver(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error)
}

type serviceOrderRepo struct {
	db DB
	tx *TxManager
}

func NewServiceOrderRepo(db DB, tx *TxManager) ServiceOrderRepository {
	return &serviceOrderRepo{db: db, tx: tx}
}

const serviceOrderColumns = `id, tenant_id, number, customer_id, technician_id, status, equipment, description, diagnosis, labor_cost, parts_cost, discount, total, estimated_at, completed_at, delivered_at, notes, created_at, updated_at`

func scanServiceOrder(row pgx.Row) (*models.ServiceOrder, error) {
	o := &models.ServiceOrder{}
	err := row.Scan(&o.ID, &o.TenantID, &o.Number, &o.CustomerID, &o.TechnicianID, &o.Status, &o.Equipment,
		&o.Description, &o.Diagnosis, &o.LaborCost, &o.PartsCost, &o.Discount, &o.Total, &o.EstimatedAt,
		&o.CompletedAt, &o.DeliveredAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func insertServiceOrderItems(ctx context.Context, q Querier, order *models.ServiceOrder) error {
	for _, item := range order.Items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.ServiceOrderID = order.ID
		_, err := q.Exec(ctx, `
			INSERT INTO service_order_items (id, service_order_id, product_id, description, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, item.ID, item.ServiceOrderID, item.ProductID, item.Description, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return err
		}
	}
	return nil
}

func listServiceOrderItems(ctx context.Context, q Querier, orderID uuid.UUID) ([]*models.ServiceOrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, service_order_id, product_id, description, quantity, unit_price, total
		FROM service_order_items
		WHERE service_order_id = $1
		ORDER BY description
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ServiceOrderItem
	for rows.Next() {
		it := &models.ServiceOrderItem{}
		if err := rows.Scan(&it.ID, &it.ServiceOrderID, &it.ProductID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *serviceOrderRepo) Create(ctx context.Context, o *models.ServiceOrder) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		number, err := nextSequence(ctx, tx, o.TenantID, "service_order")
		if err != nil {
			return err
		}
		o.Number = number
		_, err = tx.Exec(ctx, `
			INSERT INTO service_orders (id, tenant_id, number, customer_id, technician_id, status, equipment, description, diagnosis, labor_cost, parts_cost, discount, total, estimated_at, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		`, o.ID, o.TenantID, o.Number, o.CustomerID, o.TechnicianID, o.Status, o.Equipment, o.Description, o.Diagnosis,
			o.LaborCost, o.PartsCost, o.Discount, o.Total, o.EstimatedAt, o.Notes)
		if err != nil {
			return err
		}
		return insertServiceOrderItems(ctx, tx, o)
	})
}

func (r *serviceOrderRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error) {
	o, err := scanServiceOrder(r.db.QueryRow(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		return nil, err
	}
	o.Items, err = listServiceOrderItems(ctx, r.db, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *serviceOrderRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.ServiceOrderFilter) ([]*models.ServiceOrder, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Status != nil {
		w.add(`status = $%d`, *filter.Status)
	}
	if filter.CustomerID != nil {
		w.add(`customer_id = $%d`, *filter.CustomerID)
	}
	if filter.TechnicianID != nil {
		w.add(`technician_id = $%d`, *filter.TechnicianID)
	}
	if filter.Query != "" {
		w.add(`(equipment ILIKE $%[1]d OR description ILIKE $%[1]d)`, likePattern(filter.Query))
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM service_orders`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders`+w.sql()+` ORDER BY created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*models.ServiceOrder
	for rows.Next() {
		o, err := scanServiceOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// Update rewrites the header and replaces the items while the order is still editable.
func (r *serviceOrderRepo) Update(ctx context.Context, o *models.ServiceOrder) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE service_orders
			SET customer_id = $1, technician_id = $2, equipment = $3, description = $4, diagnosis = $5, labor_cost = $6,
				parts_cost = $7, discount = $8, total = $9, estimated_at = $10, notes = $11, updated_at = NOW()
			WHERE tenant_id = $12 AND id = $13 AND status IN ('OPEN', 'IN_PROGRESS', 'WAITING_PARTS')
		`, o.CustomerID, o.TechnicianID, o.Equipment, o.Description, o.Diagnosis, o.LaborCost, o.PartsCost, o.Discount,
			o.Total, o.EstimatedAt, o.Notes, o.TenantID, o.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ErrInvalidState.WithMessage("service order can no longer be edited")
		}
		if _, err := tx.Exec(ctx, `DELETE FROM service_order_items WHERE service_order_id = $1`, o.ID); err != nil {
			return err
		}
		return insertServiceOrderItems(ctx, tx, o)
	})
}

func (r *serviceOrderRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceOrderRepo) HasInvoice(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE tenant_id = $1 AND service_order_id = $2)`, tenantID, id).Scan(&exists)
	return exists, err
}

// SetStatus moves an order without ledger effects. A concurrent change of the current status yields ErrConflict.
func (r *serviceOrderRepo) SetStatus(ctx context.Context, tenantID, id uuid.UUID, from, to string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE service_orders SET status = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status = $4
	`, to, tenantID, id, from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrConflict
	}
	return nil
}

func (r *serviceOrderRepo) lock(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID, want string) (*models.ServiceOrder, error) {
	o, err := scanServiceOrder(tx.QueryRow(ctx, `SELECT `+serviceOrderColumns+` FROM service_orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id))
	if err != nil {
		return nil, err
	}
	if o.Status != want {
		return nil, common.ErrInvalidState.WithDetails(map[string]string{"status": o.Status})
	}
	return o, nil
}

// Complete consumes the parts from stock and books a pending receivable, in one transaction.
func (r *serviceOrderRepo) Complete(ctx context.Context, tenantID, id, userID uuid.UUID) (*models.ServiceOrder, error) {
	var order *models.ServiceOrder
	err := r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		o, err := r.lock(ctx, tx, tenantID, id, models.ServiceOrderInProgress)
		if err != nil {
			return err
		}
		o.Items, err = listServiceOrderItems(ctx, tx, o.ID)
		if err != nil {
			return err
		}

		var ids []uuid.UUID
		for _, item := range o.Items {
			if item.ProductID != nil {
				ids = append(ids, *item.ProductID)
			}
		}
		if len(ids) > 0 {
			locked, err := lockProducts(ctx, tx, tenantID, uniqueIDs(ids))
			if err != nil {
				return err
			}
			stock := make(map[uuid.UUID]int, len(locked))
			for pid, p := range locked {
				stock[pid] = p.Stock
			}
			reason := fmt.Sprintf("Service order #%d", o.Number)
			for _, item := range o.Items {
				if item.ProductID == nil {
					continue
				}
				p, ok := locked[*item.ProductID]
				if !ok {
					return common.NotFound("product").WithDetails(map[string]string{"product_id": item.ProductID.String()})
				}
				if stock[p.ID] < item.Quantity {
					return common.ErrInsufficientStock.WithDetails(map[string]string{
						"product":   p.Name,
						"available": fmt.Sprint(stock[p.ID]),
						"requested": fmt.Sprint(item.Quantity),
					})
				}
				movement := &models.StockMovement{
					TenantID:      tenantID,
					ProductID:     p.ID,
					Type:          models.MovementOut,
					Quantity:      item.Quantity,
					PreviousStock: stock[p.ID],
					NewStock:      stock[p.ID] - item.Quantity,
					Reason:        &reason,
					ReferenceType: models.RefServiceOrder,
					ReferenceID:   &o.ID,
					UserID:        &userID,
				}
				if err := applyStockDelta(ctx, tx, movement, -item.Quantity); err != nil {
					return err
				}
				stock[p.ID] = movement.NewStock
			}
		}

		err = insertTransaction(ctx, tx, &models.Transaction{
			TenantID:      tenantID,
			Type:          models.TransactionIncome,
			Category:      "SERVICES",
			Description:   fmt.Sprintf("Service order #%d", o.Number),
			Amount:        o.Total,
			Status:        models.TransactionPending,
			ReferenceType: models.RefServiceOrder,
			ReferenceID:   &o.ID,
			CustomerID:    &o.CustomerID,
			CreatedBy:     &userID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			UPDATE service_orders SET status = 'COMPLETED', completed_at = $1, updated_at = $1
			WHERE tenant_id = $2 AND id = $3
		`, now, tenantID, o.ID)
		if err != nil {
			return err
		}
		o.Status = models.ServiceOrderCompleted
		o.CompletedAt = &now
		o.UpdatedAt = now
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Deliver settles the receivable and counts the order as a customer purchase, in one transaction.
func (r *serviceOrderRepo) Deliver(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error) {
	var order *models.ServiceOrder
	err := r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		o, err := r.lock(ctx, tx, tenantID, id, models.ServiceOrderCompleted)
		if err != nil {
			return err
		}
		now := time.Now().UTC()

		_, err = tx.Exec(ctx, `
			UPDATE transactions SET status = 'PAID', paid_at = $1, updated_at = $1
			WHERE tenant_id = $2 AND reference_type = 'SERVICE_ORDER' AND reference_id = $3 AND status = 'PENDING'
		`, now, tenantID, o.ID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE customers
			SET total_spent = total_spent + $1, purchase_count = purchase_count + 1, last_purchase_at = $2, updated_at = NOW()
			WHERE tenant_id = $3 AND id = $4
		`, o.Total, now, tenantID, o.CustomerID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE service_orders SET status = 'DELIVERED', delivered_at = $1, updated_at = $1
			WHERE tenant_id = $2 AND id = $3
		`, now, tenantID, o.ID)
		if err != nil {
			return err
		}
		o.Status = models.ServiceOrderDelivered
		o.DeliveredAt = &now
		o.UpdatedAt = now
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
