package repositories

import (
	"context"
	"testing"
	"time"

	"storeops/internal/common"
	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ProductRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      ProductRepository
	tenantID  uuid.UUID
	productID uuid.UUID
	userID    uuid.UUID
	ctx       context.Context
}

func (s *ProductRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewProductRepo(mock, newTestTxManager(mock, 0))
	s.tenantID = uuid.New()
	s.productID = uuid.New()
	s.userID = uuid.New()
	s.ctx = context.Background()
}

func (s *ProductRepoTestSuite) TearDownTest() {
	s.mock.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func (s *ProductRepoTestSuite) productRows() *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "sku", "barcode", "category", "unit",
		"cost_price", "sale_price", "stock", "min_stock", "image_key", "active", "created_at", "updated_at"}).
		AddRow(s.productID, s.tenantID, "Cabo USB", nil, "CB-01", nil, nil, "UN",
			decimal.RequireFromString("10.00"), decimal.RequireFromString("25.00"), 3, 5, nil, true, now, now)
}

func (s *ProductRepoTestSuite) expectLock(stock int) {
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.tenantID, []uuid.UUID{s.productID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "sale_price", "stock", "active"}).
			AddRow(s.productID, "Cabo USB", decimal.RequireFromString("25.00"), stock, true))
}

func (s *ProductRepoTestSuite) TestCreate_Success() {
	p := &models.Product{ID: s.productID, TenantID: s.tenantID, Name: "Cabo USB", SKU: "CB-01", Unit: "UN", Active: true}
	s.mock.ExpectExec("INSERT INTO products").
		WithArgs(s.productID, s.tenantID, "Cabo USB", p.Description, "CB-01", p.Barcode, p.Category, "UN",
			pgxmock.AnyArg(), pgxmock.AnyArg(), 0, 0, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(s.T(), s.repo.Create(s.ctx, p))
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ProductRepoTestSuite) TestGetByID() {
	s.mock.ExpectQuery("FROM products WHERE tenant_id = \\$1 AND id = \\$2").
		WithArgs(s.tenantID, s.productID).
		WillReturnRows(s.productRows())

	p, err := s.repo.GetByID(s.ctx, s.tenantID, s.productID)
	s.Require().NoError(err)
	assert.Equal(s.T(), "CB-01", p.SKU)
	assert.True(s.T(), p.LowStock())
}

func (s *ProductRepoTestSuite) TestGetByID_OtherTenantNotFound() {
	other := uuid.New()
	s.mock.ExpectQuery("FROM products").
		WithArgs(other, s.productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := s.repo.GetByID(s.ctx, other, s.productID)
	assert.ErrorIs(s.T(), err, pgx.ErrNoRows)
}

func (s *ProductRepoTestSuite) TestUpdate_NotFound() {
	p := &models.Product{ID: s.productID, TenantID: s.tenantID, Name: "x", SKU: "y"}
	s.mock.ExpectExec("UPDATE products").
		WithArgs(append(anyArgs(10), s.tenantID, s.productID)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(s.T(), s.repo.Update(s.ctx, p), pgx.ErrNoRows)
}

func (s *ProductRepoTestSuite) TestList_WithFilters() {
	lowStock := true
	filter := &models.ProductFilter{Query: "cabo", LowStock: lowStock, Limit: 20}

	s.mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WithArgs(s.tenantID, "%cabo%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	s.mock.ExpectQuery("stock <= min_stock ORDER BY name ASC LIMIT \\$3 OFFSET \\$4").
		WithArgs(s.tenantID, "%cabo%", 20, 0).
		WillReturnRows(s.productRows())

	products, total, err := s.repo.List(s.ctx, s.tenantID, filter)
	s.Require().NoError(err)
	assert.Equal(s.T(), 1, total)
	assert.Len(s.T(), products, 1)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ProductRepoTestSuite) TestHasDependents() {
	s.mock.ExpectQuery("FROM sale_items").
		WithArgs(s.tenantID, s.productID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := s.repo.HasDependents(s.ctx, s.tenantID, s.productID)
	s.Require().NoError(err)
	assert.True(s.T(), has)
}

func (s *ProductRepoTestSuite) TestAdjustStock_In() {
	s.mock.ExpectBegin()
	s.expectLock(3)
	s.mock.ExpectExec("UPDATE products SET stock").
		WithArgs(7, s.tenantID, s.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs(movementArgs(s.tenantID, s.productID, models.AdjustIn, 7, 3, 10, models.RefManual)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	m, err := s.repo.AdjustStock(s.ctx, s.tenantID, s.productID, s.userID,
		&models.StockAdjustmentInput{Type: models.AdjustIn, Quantity: 7, Reason: "compra"})
	s.Require().NoError(err)
	assert.Equal(s.T(), 3, m.PreviousStock)
	assert.Equal(s.T(), 10, m.NewStock)
	assert.Equal(s.T(), models.RefManual, m.ReferenceType)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ProductRepoTestSuite) TestAdjustStock_OutBelowZero() {
	s.mock.ExpectBegin()
	s.expectLock(3)
	s.mock.ExpectRollback()

	_, err := s.repo.AdjustStock(s.ctx, s.tenantID, s.productID, s.userID,
		&models.StockAdjustmentInput{Type: models.AdjustOut, Quantity: 4, Reason: "perda"})
	assert.ErrorIs(s.T(), err, common.ErrInsufficientStock)
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *ProductRepoTestSuite) TestAdjustStock_AbsoluteAdjustment() {
	s.mock.ExpectBegin()
	s.expectLock(9)
	s.mock.ExpectExec("UPDATE products SET stock").
		WithArgs(-5, s.tenantID, s.productID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec("INSERT INTO stock_movements").
		WithArgs(movementArgs(s.tenantID, s.productID, models.AdjustAdjustment, 5, 9, 4, models.RefManual)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	m, err := s.repo.AdjustStock(s.ctx, s.tenantID, s.productID, s.userID,
		&models.StockAdjustmentInput{Type: models.AdjustAdjustment, Quantity: 4, Reason: "inventário"})
	s.Require().NoError(err)
	assert.Equal(s.T(), 5, m.Quantity)
	assert.Equal(s.T(), 4, m.NewStock)
}

func (s *ProductRepoTestSuite) TestAdjustStock_MissingProduct() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery("FOR UPDATE").
		WithArgs(s.tenantID, []uuid.UUID{s.productID}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "sale_price", "stock", "active"}))
	s.mock.ExpectRollback()

	_, err := s.repo.AdjustStock(s.ctx, s.tenantID, s.productID, s.userID,
		&models.StockAdjustmentInput{Type: models.AdjustIn, Quantity: 1, Reason: "x"})
	assert.ErrorIs(s.T(), err, pgx.ErrNoRows)
}

func TestNextStock(t *testing.T) {
	n, q, err := nextStock(5, models.AdjustOut, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 5, q)

	_, _, err = nextStock(5, models.AdjustIn, 0)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = nextStock(5, "LOST", 1)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
