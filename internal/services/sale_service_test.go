package services

import (
	"context"
	"errors"
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

type SaleServiceTestSuite struct {
	suite.Suite
	sales         *MockSaleRepository
	customers     *MockCustomerRepository
	settings      *MockSettingService
	notifications *MockNotificationService
	cache         *MockCacheService
	service       SaleService
	ctx           context.Context
	tenantID      uuid.UUID
	userID        uuid.UUID
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.sales = new(MockSaleRepository)
	suite.customers = new(MockCustomerRepository)
	suite.settings = new(MockSettingService)
	suite.notifications = new(MockNotificationService)
	suite.cache = new(MockCacheService)
	suite.service = NewSaleService(suite.sales, suite.customers, suite.settings, suite.notifications, suite.cache, zap.NewNop())
	suite.ctx = context.Background()
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
}

func (suite *SaleServiceTestSuite) TearDownTest() {
	suite.sales.AssertExpectations(suite.T())
	suite.customers.AssertExpectations(suite.T())
	suite.settings.AssertExpectations(suite.T())
	suite.notifications.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestSaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}

// fillSale mimics the repository filling number, items and totals inside its transaction.
func fillSale(productID uuid.UUID) func(mock.Arguments) {
	return func(args mock.Arguments) {
		sale := args.Get(1).(*models.Sale)
		sale.Number = 42
		sale.Items = []*models.SaleItem{{
			ProductID: productID, ProductName: "Cabo", Quantity: 2,
			UnitPrice: decimal.RequireFromString("25.00"), Total: decimal.RequireFromString("50.00"),
		}}
		sale.Recalculate()
	}
}

func (suite *SaleServiceTestSuite) TestCreate_WalkInCustomer() {
	productID := uuid.New()
	in := &models.CreateSaleInput{
		PaymentMethod: "PIX",
		Items:         []models.SaleItemInput{{ProductID: productID, Quantity: 2}},
	}
	suite.sales.On("Create", suite.ctx, mock.MatchedBy(func(s *models.Sale) bool {
		return s.Status == models.SaleStatusCompleted && s.UserID == suite.userID && s.Discount.IsZero()
	}), in).Run(fillSale(productID)).Return(nil)
	suite.cache.On("DeleteProduct", suite.ctx, suite.tenantID, productID).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)

	sale, err := suite.service.Create(suite.ctx, suite.tenantID, suite.userID, in)

	suite.NoError(err)
	suite.Equal(int64(42), sale.Number)
	suite.True(sale.Total.Equal(decimal.RequireFromString("50.00")))
}

func (suite *SaleServiceTestSuite) TestCreate_SendsReceiptWhenRequested() {
	productID, customerID := uuid.New(), uuid.New()
	email := "cliente@example.com"
	in := &models.CreateSaleInput{
		CustomerID:    &customerID,
		PaymentMethod: "CASH",
		Items:         []models.SaleItemInput{{ProductID: productID, Quantity: 2}},
		SendReceipt:   true,
	}
	suite.sales.On("Create", suite.ctx, mock.Anything, in).Run(fillSale(productID)).Return(nil)
	suite.cache.On("DeleteProduct", suite.ctx, suite.tenantID, productID).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(errors.New("redis down"))
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(models.DefaultSetting(suite.tenantID, "Loja"), nil)
	suite.customers.On("GetByID", suite.ctx, suite.tenantID, customerID).Return(&models.Customer{ID: customerID, Name: "Ana", Email: &email}, nil)
	suite.notifications.On("Queue", suite.ctx, suite.tenantID, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Channel == models.ChannelEmail && n.Recipient == email && *n.ReferenceType == models.RefSale
	})).Return(&models.NotificationLog{}, nil)

	_, err := suite.service.Create(suite.ctx, suite.tenantID, suite.userID, in)

	suite.NoError(err)
}

func (suite *SaleServiceTestSuite) TestCreate_NoReceiptWhenDisabled() {
	productID, customerID := uuid.New(), uuid.New()
	in := &models.CreateSaleInput{
		CustomerID:    &customerID,
		PaymentMethod: "CASH",
		Items:         []models.SaleItemInput{{ProductID: productID, Quantity: 2}},
	}
	suite.sales.On("Create", suite.ctx, mock.Anything, in).Run(fillSale(productID)).Return(nil)
	suite.cache.On("DeleteProduct", suite.ctx, suite.tenantID, productID).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)
	suite.settings.On("Get", suite.ctx, suite.tenantID).Return(models.DefaultSetting(suite.tenantID, "Loja"), nil)

	_, err := suite.service.Create(suite.ctx, suite.tenantID, suite.userID, in)

	suite.NoError(err)
	suite.notifications.AssertNotCalled(suite.T(), "Queue", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCreate_RejectsEmptyItems() {
	_, err := suite.service.Create(suite.ctx, suite.tenantID, suite.userID, &models.CreateSaleInput{PaymentMethod: "CASH"})

	suite.ErrorIs(err, common.ErrInvalidInput)
}

func (suite *SaleServiceTestSuite) TestCreate_InsufficientStockIsReturned() {
	in := &models.CreateSaleInput{
		PaymentMethod: "CASH",
		Items:         []models.SaleItemInput{{ProductID: uuid.New(), Quantity: 500}},
	}
	stockErr := common.ErrInsufficientStock.WithDetails(map[string]string{"product": "Cabo"})
	suite.sales.On("Create", suite.ctx, mock.Anything, in).Return(stockErr)

	sale, err := suite.service.Create(suite.ctx, suite.tenantID, suite.userID, in)

	suite.Nil(sale)
	suite.ErrorIs(err, common.ErrInsufficientStock)
	suite.cache.AssertNotCalled(suite.T(), "DeleteDashboard", mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestCancel_InvalidatesCaches() {
	id, productID := uuid.New(), uuid.New()
	cancelled := &models.Sale{ID: id, Status: models.SaleStatusCancelled, Items: []*models.SaleItem{{ProductID: productID}}}
	suite.sales.On("Cancel", suite.ctx, suite.tenantID, id, suite.userID, "cliente desistiu").Return(cancelled, nil)
	suite.cache.On("DeleteProduct", suite.ctx, suite.tenantID, productID).Return(nil)
	suite.cache.On("DeleteDashboard", suite.ctx, suite.tenantID).Return(nil)

	sale, err := suite.service.Cancel(suite.ctx, suite.tenantID, id, suite.userID, &models.CancelSaleInput{Reason: "cliente desistiu"})

	suite.NoError(err)
	suite.Equal(models.SaleStatusCancelled, sale.Status)
}

func (suite *SaleServiceTestSuite) TestCancel_AlreadyCancelled() {
	id := uuid.New()
	suite.sales.On("Cancel", suite.ctx, suite.tenantID, id, suite.userID, "again").Return(nil, common.ErrInvalidState)

	_, err := suite.service.Cancel(suite.ctx, suite.tenantID, id, suite.userID, &models.CancelSaleInput{Reason: "again"})

	suite.ErrorIs(err, common.ErrInvalidState)
}

func (suite *SaleServiceTestSuite) TestSummary_ToIncludesWholeDay() {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	suite.sales.On("Summary", suite.ctx, suite.tenantID, from, mock.MatchedBy(func(end time.Time) bool {
		return end.Day() == 31 && end.Hour() == 23 && end.Minute() == 59
	})).Return(&models.SalesSummary{Count: 3}, nil)

	summary, err := suite.service.Summary(suite.ctx, suite.tenantID, &from, &to)

	suite.NoError(err)
	suite.Equal(3, summary.Count)
}

func (suite *SaleServiceTestSuite) TestSummary_RejectsInvertedRange() {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.service.Summary(suite.ctx, suite.tenantID, &from, &to)

	suite.ErrorIs(err, common.ErrInvalidInput)
}
