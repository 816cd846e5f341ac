package repositories

import (
	"context"
	"time"

	"storeops/internal/models"

	"github.com/google/uuid"
)

type DashboardRepository interface {
	Summary(ctx context.Context, tenantID uuid.UUID, dayStart, monthStart, today time.Time) (*models.DashboardSummary, error)
}

type dashboardRepo struct {
	db DB
}

func NewDashboardRepo(db DB) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Summary(ctx context.Context, tenantID uuid.UUID, dayStart, monthStart, today time.Time) (*models.DashboardSummary, error) {
	s := &models.DashboardSummary{}
	query := `
		SELECT
			(SELECT COUNT(*) FROM sales WHERE tenant_id = $1 AND status = 'COMPLETED' AND created_at >= $2),
			(SELECT COALESCE(SUM(total), 0) FROM sales WHERE tenant_id = $1 AND status = 'COMPLETED' AND created_at >= $2),
			(SELECT COUNT(*) FROM sales WHERE tenant_id = $1 AND status = 'COMPLETED' AND created_at >= $3),
			(SELECT COALESCE(SUM(total), 0) FROM sales WHERE tenant_id = $1 AND status = 'COMPLETED' AND created_at >= $3),
			(SELECT COUNT(*) FROM service_orders WHERE tenant_id = $1 AND status IN ('OPEN', 'IN_PROGRESS', 'WAITING_PARTS')),
			(SELECT COUNT(*) FROM products WHERE tenant_id = $1 AND active = TRUE AND stock <= min_stock),
			(SELECT COUNT(*) FROM invoices WHERE tenant_id = $1 AND (status = 'OVERDUE' OR (status = 'ISSUED' AND due_date < $4))),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE tenant_id = $1 AND type = 'INCOME' AND status = 'PENDING'),
			(SELECT COUNT(*) FROM customers WHERE tenant_id = $1 AND active = TRUE)
	`
	err := r.db.QueryRow(ctx, query, tenantID, dayStart, monthStart, today).Scan(
		&s.SalesToday, &s.RevenueToday, &s.SalesMonth, &s.RevenueMonth, &s.OpenServiceOrders,
		&s.LowStockProducts, &s.OverdueInvoices, &s.PendingReceivables, &s.Customers)
	if err != nil {
		return nil, err
	}
	return s, nil
}
