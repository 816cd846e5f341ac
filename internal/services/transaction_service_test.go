package services

import (
	"context"
	"testing"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	transactions *MockTransactionRepository
	customers    *MockCustomerRepository
	cache        *MockCacheService
	service      TransactionService
	ctx          context.Context
	tenantID     uuid.UUID
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.transactions = new(MockTransactionRepository)
	suite.customers = new(MockCustomerRepository)
	suite.cache = new(MockCacheService)
	suite.service = NewTransactionService(suite.transactions, suite.customers, suite.cache, zap.NewNop())
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
}

func (suite *TransactionServiceTestSuite) TearDownTest() {
	suite.transactions.AssertExpectations(suite.T())
	suite.customers.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (suite *TransactionServiceTestSuite) TestCreate_PaidExpense() {
	userID := uuid.New()
	suite.transactions.On("Create", suite.ctx, mock.MatchedBy(func(t *models.Transaction) bool {
		return t.Type == models.TransactionExpense && t.Status == models.TransactionPaid &&
			t.PaidAt != nil && t.ReferenceType == models.RefManual && *t.CreatedBy == userID
	})).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)

	t, err := suite.service.Create(suite.ctx, suite.tenantID, userID, &models.TransactionInput{
		Type: models.TransactionExpense, Category: "ALUGUEL", Description: "Aluguel março",
		Amount: decimal.RequireFromString("1500.005"), Paid: true,
	})

	suite.NoError(err)
	suite.Equal("1500.01", t.Amount.StringFixed(2))
}

func (suite *TransactionServiceTestSuite) TestPay_SaleEntryIsOwnedBySale() {
	id := uuid.New()
	suite.transactions.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.Transaction{
		ID: id, ReferenceType: models.RefSale, Status: models.TransactionPending,
	}, nil)

	_, err := suite.service.Pay(suite.ctx, suite.tenantID, id)

	suite.ErrorIs(err, common.ErrInvalidState)
}

func (suite *TransactionServiceTestSuite) TestPay_ManualPending() {
	id := uuid.New()
	suite.transactions.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.Transaction{
		ID: id, ReferenceType: models.RefManual, Status: models.TransactionPending,
	}, nil)
	suite.transactions.On("UpdateStatus", suite.ctx, suite.tenantID, id, models.TransactionPaid, mock.Anything).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)

	t, err := suite.service.Pay(suite.ctx, suite.tenantID, id)

	suite.NoError(err)
	suite.Equal(models.TransactionPaid, t.Status)
	suite.NotNil(t.PaidAt)
}

func (suite *TransactionServiceTestSuite) TestPay_AlreadyPaid() {
	id := uuid.New()
	suite.transactions.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.Transaction{
		ID: id, ReferenceType: models.RefManual, Status: models.TransactionPaid,
	}, nil)

	_, err := suite.service.Pay(suite.ctx, suite.tenantID, id)

	suite.ErrorIs(err, common.ErrInvalidState)
}

func (suite *TransactionServiceTestSuite) TestCancel_Manual() {
	id := uuid.New()
	suite.transactions.On("GetByID", suite.ctx, suite.tenantID, id).Return(&models.Transaction{
		ID: id, ReferenceType: models.RefManual, Status: models.TransactionPending,
	}, nil)
	suite.transactions.On("UpdateStatus", suite.ctx, suite.tenantID, id, models.TransactionCancelled, (*time.Time)(nil)).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)

	t, err := suite.service.Cancel(suite.ctx, suite.tenantID, id)

	suite.NoError(err)
	suite.Equal(models.TransactionCancelled, t.Status)
}
