//go:build integration

package repositories

import (
	"context"
	"testing"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/testhelpers"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newIntegrationDB(t *testing.T) DB {
	t.Helper()
	return testhelpers.SetupTestDB(t).Pool
}

func TestSaleLifecycle_Integration(t *testing.T) {
	db := newIntegrationDB(t)
	ctx := context.Background()
	txm := NewTxManager(db, DefaultTxConfig, zap.NewNop())

	tenants := NewTenantRepo(db, txm)
	products := NewProductRepo(db, txm)
	customers := NewCustomerRepo(db)
	sales := NewSaleRepo(db, txm)

	tenant := &models.Tenant{ID: uuid.New(), Name: "Loja Centro", Email: "admin@centro.com", Active: true}
	admin := &models.User{ID: uuid.New(), TenantID: tenant.ID, Name: "Admin", Email: "admin@centro.com",
		PasswordHash: "x", Role: models.RoleAdmin, Active: true}
	require.NoError(t, tenants.Register(ctx, tenant, admin, models.DefaultSetting(tenant.ID, tenant.Name)))

	product := &models.Product{ID: uuid.New(), TenantID: tenant.ID, Name: "Cabo USB", SKU: "CB-01", Unit: "UN",
		SalePrice: decimal.RequireFromString("25.00"), Stock: 5, Active: true}
	require.NoError(t, products.Create(ctx, product))

	doc := "52998224725"
	customer := &models.Customer{ID: uuid.New(), TenantID: tenant.ID, Name: "Maria", Document: &doc, Active: true}
	require.NoError(t, customers.Create(ctx, customer))

	dup := &models.Product{ID: uuid.New(), TenantID: tenant.ID, Name: "Outro", SKU: "CB-01", Unit: "UN", Active: true}
	assert.True(t, IsUniqueViolation(products.Create(ctx, dup)))

	sale := &models.Sale{ID: uuid.New(), TenantID: tenant.ID, UserID: admin.ID, CustomerID: &customer.ID,
		Status: models.SaleStatusCompleted, PaymentMethod: models.PaymentCash}
	require.NoError(t, sales.Create(ctx, sale, &models.CreateSaleInput{
		CustomerID:    &customer.ID,
		PaymentMethod: models.PaymentCash,
		Items:         []models.SaleItemInput{{ProductID: product.ID, Quantity: 2}},
	}))
	assert.Equal(t, int64(1), sale.Number)

	p, err := products.GetByID(ctx, tenant.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	c, err := customers.GetByID(ctx, tenant.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.PurchaseCount)
	assert.True(t, decimal.RequireFromString("50").Equal(c.TotalSpent))

	over := &models.Sale{ID: uuid.New(), TenantID: tenant.ID, UserID: admin.ID, Status: models.SaleStatusCompleted,
		PaymentMethod: models.PaymentCash}
	err = sales.Create(ctx, over, &models.CreateSaleInput{
		PaymentMethod: models.PaymentCash,
		Items:         []models.SaleItemInput{{ProductID: product.ID, Quantity: 4}},
	})
	assert.ErrorIs(t, err, common.ErrInsufficientStock)

	cancelled, err := sales.Cancel(ctx, tenant.ID, sale.ID, admin.ID, "cliente desistiu")
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusCancelled, cancelled.Status)

	p, err = products.GetByID(ctx, tenant.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)

	c, err = customers.GetByID(ctx, tenant.ID, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.PurchaseCount)
	assert.True(t, c.TotalSpent.IsZero())
	assert.Nil(t, c.LastPurchaseAt)

	_, err = sales.Cancel(ctx, tenant.ID, sale.ID, admin.ID, "de novo")
	assert.ErrorIs(t, err, common.ErrInvalidState)

	movements, total, err := products.ListMovements(ctx, tenant.ID, product.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, movements, 2)
}

func TestTenantIsolation_Integration(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	ctx := context.Background()
	txm := NewTxManager(db.Pool, DefaultTxConfig, zap.NewNop())
	products := NewProductRepo(db.Pool, txm)

	first, _ := testhelpers.SetupTestTenant(t, db, "Loja A")
	second, _ := testhelpers.SetupTestTenant(t, db, "Loja B")

	own := testhelpers.SetupTestProduct(t, db, first.ID, "SKU-1", 3)
	// same SKU is allowed in another tenant
	testhelpers.SetupTestProduct(t, db, second.ID, "SKU-1", 7)

	_, err := products.GetByID(ctx, second.ID, own.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	list, total, err := products.List(ctx, first.ID, &models.ProductFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, own.ID, list[0].ID)
}
