package services

import (
	"context"
	"testing"
	"time"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLowStockAlert_OncePerTenantPerDay(t *testing.T) {
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()
	now := time.Date(2026, 5, 17, 9, 0, 0, 0, time.UTC)

	products := new(MockProductRepository)
	users := new(MockUserRepository)
	settings := new(MockSettingService)
	notifications := new(MockNotificationService)
	cache := new(MockCacheService)

	products.On("ListLowStockForAlerts", ctx).Return([]*models.Product{
		{TenantID: tenantA, Name: "Cabo", SKU: "C1", Stock: 1, MinStock: 5},
		{TenantID: tenantA, Name: "Fonte", SKU: "F1", Stock: 0, MinStock: 2},
		{TenantID: tenantB, Name: "Tela", SKU: "T1", Stock: 2, MinStock: 2},
	}, nil)
	cache.On("SetOnce", ctx, lowStockAlertKey(tenantA, now), 24*time.Hour).Return(true, nil)
	cache.On("SetOnce", ctx, lowStockAlertKey(tenantB, now), 24*time.Hour).Return(false, nil)
	settings.On("Get", ctx, tenantA).Return(models.DefaultSetting(tenantA, "Loja A"), nil)
	users.On("ListByRole", ctx, tenantA, models.RoleAdmin).Return([]*models.User{
		{ID: uuid.New(), Email: "admin@a.com", Active: true},
		{ID: uuid.New(), Email: "old@a.com", Active: false},
	}, nil)
	notifications.On("Queue", ctx, tenantA, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Recipient == "admin@a.com" && *n.Subject == "Loja A - 2 produto(s) com estoque baixo"
	})).Return(&models.NotificationLog{}, nil).Once()

	svc := NewAlertService(products, users, settings, notifications, cache, zap.NewNop()).(*alertService)
	svc.now = func() time.Time { return now }

	alerted, err := svc.LowStock(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, alerted)
	notifications.AssertExpectations(t)
	cache.AssertExpectations(t)
	settings.AssertNotCalled(t, "Get", ctx, tenantB)
}

func TestLowStockAlertKey(t *testing.T) {
	id := uuid.MustParse("7f1d3c1e-0000-4000-8000-000000000001")
	day := time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "storeops:alert:low-stock:7f1d3c1e-0000-4000-8000-000000000001:2026-01-02", lowStockAlertKey(id, day))
}
