package repositories

import (
	"context"
	"time"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.TransactionFilter) ([]*models.Transaction, int, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string, paidAt *time.Time) error
	Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.TransactionSummary, error)
}

type transactionRepo struct {
	db DB
}

func NewTransactionRepo(db DB) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, tenant_id, type, category, description, amount, payment_method, status, due_date, paid_at, reference_type, reference_id, customer_id, created_by, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.TenantID, &t.Type, &t.Category, &t.Description, &t.Amount, &t.PaymentMethod, &t.Status,
		&t.DueDate, &t.PaidAt, &t.ReferenceType, &t.ReferenceID, &t.CustomerID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func insertTransaction(ctx context.Context, q Querier, t *models.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := q.Exec(ctx, `
		INSERT INTO transactions (id, tenant_id, type, category, description, amount, payment_method, status, due_date, paid_at, reference_type, reference_id, customer_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`, t.ID, t.TenantID, t.Type, t.Category, t.Description, t.Amount, t.PaymentMethod, t.Status, t.DueDate, t.PaidAt,
		t.ReferenceType, t.ReferenceID, t.CustomerID, t.CreatedBy)
	return err
}

func (r *transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	return insertTransaction(ctx, r.db, t)
}

func (r *transactionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tenant_id = $1 AND id = $2`
	return scanTransaction(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *transactionRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.TransactionFilter) ([]*models.Transaction, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Type != nil {
		w.add(`type = $%d`, *filter.Type)
	}
	if filter.Status != nil {
		w.add(`status = $%d`, *filter.Status)
	}
	if filter.From != nil {
		w.add(`created_at >= $%d`, *filter.From)
	}
	if filter.To != nil {
		w.add(`created_at < $%d`, *filter.To)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM transactions`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions`+w.sql()+` ORDER BY created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, t)
	}
	return list, total, rows.Err()
}

func (r *transactionRepo) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status string, paidAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions SET status = $1, paid_at = $2, updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4
	`, status, paidAt, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *transactionRepo) Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.TransactionSummary, error) {
	s := &models.TransactionSummary{From: from, To: to}
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME' AND status = 'PAID'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE' AND status = 'PAID'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME' AND status = 'PENDING'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE' AND status = 'PENDING'), 0)
		FROM transactions
		WHERE tenant_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
	`
	err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(&s.Income, &s.Expense, &s.PendingIncome, &s.PendingExpense)
	if err != nil {
		return nil, err
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}
