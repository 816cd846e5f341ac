package repositories

import (
	"context"
	"testing"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceCreate_FormatsNumber(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewInvoiceRepo(mock, newTestTxManager(mock, 0))

	inv := &models.Invoice{ID: uuid.New(), TenantID: uuid.New(), Status: models.InvoiceDraft,
		DueDate: time.Now().AddDate(0, 0, 30), Subtotal: decimal.RequireFromString("100.00"), Total: decimal.RequireFromString("100.00")}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tenant_sequences").
		WithArgs(inv.TenantID, "invoice").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(15)))
	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(append([]any{inv.ID, inv.TenantID, "FAT-000015"}, anyArgs(10)...)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), inv, "FAT"))
	assert.Equal(t, "FAT-000015", inv.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceUpdate_OnlyDrafts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewInvoiceRepo(mock, newTestTxManager(mock, 0))

	inv := &models.Invoice{ID: uuid.New(), TenantID: uuid.New()}
	mock.ExpectExec("AND status = 'DRAFT'").
		WithArgs(append(anyArgs(7), inv.TenantID, inv.ID)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = repo.Update(context.Background(), inv)
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestInvoiceUpdateStatus_InsertsFinancialEntry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewInvoiceRepo(mock, newTestTxManager(mock, 0))

	now := time.Now()
	inv := &models.Invoice{ID: uuid.New(), TenantID: uuid.New(), Status: models.InvoicePaid, PaidAt: &now}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invoices SET status").
		WithArgs(models.InvoicePaid, pgxmock.AnyArg(), pgxmock.AnyArg(), inv.TenantID, inv.ID, models.InvoiceIssued).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(transactionArgs(inv.TenantID, models.TransactionIncome, models.TransactionPaid, models.RefInvoice)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	financial := &models.Transaction{TenantID: inv.TenantID, Type: models.TransactionIncome,
		Status: models.TransactionPaid, ReferenceType: models.RefInvoice}
	err = repo.UpdateStatus(context.Background(), inv, models.InvoiceIssued, financial)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceMarkOverdue(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewInvoiceRepo(mock, newTestTxManager(mock, 0))

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("SET status = 'OVERDUE'").WithArgs(today).WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.MarkOverdue(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
