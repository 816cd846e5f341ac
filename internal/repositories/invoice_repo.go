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

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice, prefix string) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.InvoiceFilter) ([]*models.Invoice, int, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	UpdateStatus(ctx context.Context, invoice *models.Invoice, from string, financial *models.Transaction) error
	SetPDFKey(ctx context.Context, tenantID, id uuid.UUID, key string) error
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
}

type invoiceRepo struct {
	db DB
	tx *TxManager
}

func NewInvoiceRepo(db DB, tx *TxManager) InvoiceRepository {
	return &invoiceRepo{db: db, tx: tx}
}

const invoiceColumns = `id, tenant_id, number, customer_id, sale_id, service_order_id, status, issue_date, due_date, paid_at, subtotal, tax_rate, tax_amount, total, notes, pdf_key, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	i := &models.Invoice{}
	err := row.Scan(&i.ID, &i.TenantID, &i.Number, &i.CustomerID, &i.SaleID, &i.ServiceOrderID, &i.Status, &i.IssueDate,
		&i.DueDate, &i.PaidAt, &i.Subtotal, &i.TaxRate, &i.TaxAmount, &i.Total, &i.Notes, &i.PDFKey, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return i, nil
}

// FormatInvoiceNumber renders prefix-000001.
func FormatInvoiceNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// Create allocates the invoice number from the tenant sequence and inserts the invoice in one transaction.
func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice, prefix string) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		seq, err := nextSequence(ctx, tx, inv.TenantID, "invoice")
		if err != nil {
			return err
		}
		inv.Number = FormatInvoiceNumber(prefix, seq)
		_, err = tx.Exec(ctx, `
			INSERT INTO invoices (id, tenant_id, number, customer_id, sale_id, service_order_id, status, due_date, subtotal, tax_rate, tax_amount, total, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		`, inv.ID, inv.TenantID, inv.Number, inv.CustomerID, inv.SaleID, inv.ServiceOrderID, inv.Status, inv.DueDate,
			inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.Notes)
		return err
	})
}

func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	return scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.InvoiceFilter) ([]*models.Invoice, int, error) {
	w := newWhere("tenant_id", tenantID)
	if filter.Status != nil {
		w.add(`status = $%d`, *filter.Status)
	}
	if filter.CustomerID != nil {
		w.add(`customer_id = $%d`, *filter.CustomerID)
	}

	total, err := countRows(ctx, r.db, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := w.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices`+w.sql()+` ORDER BY created_at DESC`+suffix, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

// Update only applies to drafts.
func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices
		SET customer_id = $1, due_date = $2, subtotal = $3, tax_rate = $4, tax_amount = $5, total = $6, notes = $7, updated_at = NOW()
		WHERE tenant_id = $8 AND id = $9 AND status = 'DRAFT'
	`, inv.CustomerID, inv.DueDate, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.Notes, inv.TenantID, inv.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInvalidState.WithMessage("only draft invoices can be changed")
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2 AND status = 'DRAFT'`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrInvalidState.WithMessage("only draft invoices can be deleted")
	}
	return nil
}

// UpdateStatus persists the status fields of inv when its stored status is still from. A non-nil
// financial entry is inserted in the same transaction.
func (r *invoiceRepo) UpdateStatus(ctx context.Context, inv *models.Invoice, from string, financial *models.Transaction) error {
	return r.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE invoices SET status = $1, issue_date = $2, paid_at = $3, updated_at = NOW()
			WHERE tenant_id = $4 AND id = $5 AND status = $6
		`, inv.Status, inv.IssueDate, inv.PaidAt, inv.TenantID, inv.ID, from)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ErrConflict
		}
		if financial != nil {
			return insertTransaction(ctx, tx, financial)
		}
		return nil
	})
}

func (r *invoiceRepo) SetPDFKey(ctx context.Context, tenantID, id uuid.UUID, key string) error {
	_, err := r.db.Exec(ctx, `UPDATE invoices SET pdf_key = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`, key, tenantID, id)
	return err
}

// MarkOverdue flips issued invoices past their due date, across all tenants.
func (r *invoiceRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET status = 'OVERDUE', updated_at = NOW()
		WHERE status = 'ISSUED' AND due_date < $1
	`, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
