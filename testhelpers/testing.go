// Package testhelpers starts a disposable Postgres for integration tests and seeds fixtures into it.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"storeops/internal/models"
	"storeops/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool *pgxpool.Pool
	DSN  string
}

// SetupTestDB runs a postgres container, applies migrations and closes everything on cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storeops_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to read connection string: %v", err)
	}
	if err := database.Migrate(dsn, zap.NewNop()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(ctx, dsn, 5, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	return &TestDB{Pool: pool, DSN: dsn}
}

// SetupTestTenant inserts a tenant with one active admin and returns both.
func SetupTestTenant(t *testing.T, db *TestDB, name string) (*models.Tenant, *models.User) {
	t.Helper()
	ctx := context.Background()

	tenant := &models.Tenant{ID: uuid.New(), Name: name, Email: uuid.NewString() + "@test.local", Active: true}
	admin := &models.User{
		ID:       uuid.New(),
		TenantID: tenant.ID,
		Name:     "Admin " + name,
		Email:    tenant.Email,
		Role:     models.RoleAdmin,
		Active:   true,
	}

	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO tenants (id, name, email, active) VALUES ($1, $2, $3, TRUE)`,
		tenant.ID, tenant.Name, tenant.Email); err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, tenant_id, name, email, password_hash, role, active) VALUES ($1, $2, $3, $4, 'x', $5, TRUE)`,
		admin.ID, tenant.ID, admin.Name, admin.Email, admin.Role); err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return tenant, admin
}

// SetupTestProduct inserts an active product with the given stock.
func SetupTestProduct(t *testing.T, db *TestDB, tenantID uuid.UUID, sku string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "Produto " + sku,
		SKU:       sku,
		Unit:      "UN",
		CostPrice: decimal.RequireFromString("10.00"),
		SalePrice: decimal.RequireFromString("25.00"),
		Stock:     stock,
		MinStock:  1,
		Active:    true,
	}

	query := `
		INSERT INTO products (id, tenant_id, name, sku, unit, cost_price, sale_price, stock, min_stock, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
	`
	if _, err := db.Pool.Exec(context.Background(), query,
		product.ID, product.TenantID, product.Name, product.SKU, product.Unit,
		product.CostPrice, product.SalePrice, product.Stock, product.MinStock); err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}
