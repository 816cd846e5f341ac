package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTxManager(db DB, retries int) *TxManager {
	return NewTxManager(db, TxConfig{MaxWait: time.Second, Timeout: 5 * time.Second, Retries: retries}, zap.NewNop())
}

// anyArgs matches n bind parameters whose values a test does not pin.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// movementArgs matches the insertMovement parameters.
func movementArgs(tenantID, productID uuid.UUID, kind string, qty, prev, next int, ref string) []any {
	return []any{pgxmock.AnyArg(), tenantID, productID, kind, qty, prev, next, pgxmock.AnyArg(), ref,
		pgxmock.AnyArg(), pgxmock.AnyArg()}
}

// transactionArgs matches the insertTransaction parameters.
func transactionArgs(tenantID uuid.UUID, kind, status, ref string) []any {
	return []any{pgxmock.AnyArg(), tenantID, kind, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		pgxmock.AnyArg(), status, pgxmock.AnyArg(), pgxmock.AnyArg(), ref, pgxmock.AnyArg(), pgxmock.AnyArg(),
		pgxmock.AnyArg()}
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err = newTestTxManager(mock, 0).WithTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "UPDATE products SET active = TRUE")
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = newTestTxManager(mock, 3).WithTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RetriesSerializationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").WillReturnError(&pgconn.PgError{Code: "40001"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE products").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	calls := 0
	err = newTestTxManager(mock, 2).WithTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		calls++
		_, err := tx.Exec(ctx, "UPDATE products SET active = TRUE")
		return err
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_GivesUpAfterRetries(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products").WillReturnError(&pgconn.PgError{Code: "40P01"})
		mock.ExpectRollback()
	}

	err = newTestTxManager(mock, 1).WithTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "UPDATE products SET active = TRUE")
		return err
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "40P01", pgErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.Equal(t, "NF-000042", FormatInvoiceNumber("NF", 42))
}

func TestWhereBuilder(t *testing.T) {
	w := newWhere("tenant_id", "t")
	w.add(`(name ILIKE $%[1]d OR sku ILIKE $%[1]d)`, "%a%")
	w.raw(`active = TRUE`)
	assert.Equal(t, " WHERE tenant_id = $1 AND (name ILIKE $2 OR sku ILIKE $2) AND active = TRUE", w.sql())

	suffix, args := w.page(20, 40)
	assert.Equal(t, " LIMIT $3 OFFSET $4", suffix)
	assert.Equal(t, []any{"t", "%a%", 20, 40}, args)
	assert.Len(t, w.args, 2)
}
