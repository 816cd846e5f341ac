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
	"github.com/stretchr/testify/suite"
)

type ServiceOrderRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       ServiceOrderRepository
	tenantID   uuid.UUID
	orderID    uuid.UUID
	customerID uuid.UUID
	productID  uuid.UUID
	userID     uuid.UUID
	ctx        context.Context
}

func (s *ServiceOrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewServiceOrderRepo(mock, newTestTxManager(mock, 0))
	s.tenantID = uuid.New()
	s.orderID = uuid.New()
	s.customerID = uuid.New()
	s.productID = uuid.New()
	s.userID = uuid.New()
	s.ctx = context.Background()
}

func (s *ServiceOrderRepoTestSuite) TearDownTest() {
	s.mock.Close()
}

func TestServiceOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceOrderRepoTestSuite))
}

func (s *ServiceOrderRepoTestSuite) orderRow(status string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "tenant_id", "number", "customer_id", "technician_id", "status", "equipment",
		"description", "diagnosis", "labor_cost", "parts_cost", "discount", "total", "estimated_at", "completed_at",
		"delivered_at", "notes", "created_at", "updated_at"}).
		AddRow(s.orderID, s.tenantID, int64(12), s.customerID, nil, status, "Notebook", "Não liga", nil,
			decimal.RequireFromString("100.00"), decimal.RequireFromString("40.00"), decimal.Zero,
			decimal.RequireFromString("140.00"), nil, nil, nil, nil, now, now)
}

func (s *ServiceOrderRepoTestSuite) TestCreate_AllocatesNumber() {
	o := &models.ServiceOrder{
		ID: s.orderID, TenantID: s.tenantID, CustomerID: s.customerID, Status: models.ServiceOrderOpen,
		Equipment: "Notebook", Description: "Não liga",
		Items: []*models.ServiceOrderItem{{Description: "Fonte", Quantity: 1, UnitPrice: decimal.RequireFromString("40.00")}},
	}
	o.Recalculate()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery("INSERT INTO tenant_sequences").
		WithArgs(s.tenantID, "service_order").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(int64(12)))
	s.mock.ExpectExec("INSERT INTO service_orders").
		WithArgs(append([]any{s.orderID, s.tenantID, int64(12), s.customerID}, anyArgs(11)...)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec("INSERT INTO service_order_items").
		WithArgs(pgxmock.AnyArg(), s.orderID, pgxmock.AnyArg(), "Fonte", 1, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.Require().NoError(s.repo.Create(s.ctx, o))
	assert.Equal(s.T(), int64(12), o.Number)
	assert.Equal(s.T(), s.orderID, o.Items[0].ServiceOrderID)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ServiceOrderRepoTestSuite) TestComplete_ConsumesPartsAndBooksReceivable() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery("FROM service_orders WHERE tenant_id = \\$1 AND id = \\$2 FOR UPDATE").
		WithArgs(s.tenantID, s.orderID).
		WillReturnRows(s.orderRow(models.ServiceOrderInProgress))
	s.mock.ExpectQuery("FROM service_order_items").
		WithArgs(s.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "service_order_id", "product_id", "description", "quantity", "unit_price", "total"}).
			AddRow(uuid.New(), s.orderID, &s.productID, "Fonte", 1, decimal.RequireFromString("40.00"), decimal.RequireFromString("40.00")).
			AddRow(uuid.New(), s.orderID, nil, "Limpeza", 1, decimal.Zero, decimal.Zero))
	s.mock.ExpectQuery("SELECT id, name, sale_price, stock, active").
		WithArgs(s.tenantID, []uuid.UUID{s.productID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "sale_price", "stock", "active"}).
			AddRow(s.productID, "Fonte", decimal.RequireFromString("40.00"), 2, true))
	s.mock.ExpectExec("UPDATE products SET stock").
		WithArgs(-1, s.tenantID, s.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs(movementArgs(s.tenantID, s.productID, models.MovementOut, 1, 2, 1, models.RefServiceOrder)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec("INSERT INTO transactions").
		WithArgs(transactionArgs(s.tenantID, models.TransactionIncome, models.TransactionPending, models.RefServiceOrder)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec("UPDATE service_orders SET status = 'COMPLETED'").
		WithArgs(pgxmock.AnyArg(), s.tenantID, s.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	o, err := s.repo.Complete(s.ctx, s.tenantID, s.orderID, s.userID)
	s.Require().NoError(err)
	assert.Equal(s.T(), models.ServiceOrderCompleted, o.Status)
	assert.NotNil(s.T(), o.CompletedAt)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ServiceOrderRepoTestSuite) TestComplete_WrongStatus() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.tenantID, s.orderID).
		WillReturnRows(s.orderRow(models.ServiceOrderOpen))
	s.mock.ExpectRollback()

	_, err := s.repo.Complete(s.ctx, s.tenantID, s.orderID, s.userID)
	assert.ErrorIs(s.T(), err, common.ErrInvalidState)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ServiceOrderRepoTestSuite) TestDeliver_SettlesAndCountsPurchase() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.tenantID, s.orderID).
		WillReturnRows(s.orderRow(models.ServiceOrderCompleted))
	s.mock.ExpectExec("UPDATE transactions SET status = 'PAID'").
		WithArgs(pgxmock.AnyArg(), s.tenantID, s.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("UPDATE customers").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), s.tenantID, s.customerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("UPDATE service_orders SET status = 'DELIVERED'").
		WithArgs(pgxmock.AnyArg(), s.tenantID, s.orderID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	o, err := s.repo.Deliver(s.ctx, s.tenantID, s.orderID)
	s.Require().NoError(err)
	assert.Equal(s.T(), models.ServiceOrderDelivered, o.Status)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ServiceOrderRepoTestSuite) TestSetStatus_Conflict() {
	s.mock.ExpectExec("UPDATE service_orders SET status").
		WithArgs(models.ServiceOrderInProgress, s.tenantID, s.orderID, models.ServiceOrderOpen).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.repo.SetStatus(s.ctx, s.tenantID, s.orderID, models.ServiceOrderOpen, models.ServiceOrderInProgress)
	assert.ErrorIs(s.T(), err, common.ErrConflict)
}
