package services

import (
	"context"
	"testing"
	"time"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardSummary_CacheHit(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockDashboardRepository)
	cache := new(MockCacheService)
	cached := &models.DashboardSummary{SalesToday: 4}
	cache.On("GetDashboard", ctx, tenantID).Return(cached, nil)

	svc := NewDashboardService(repo, cache, zap.NewNop())
	got, err := svc.Summary(ctx, tenantID)

	require.NoError(t, err)
	assert.Same(t, cached, got)
	repo.AssertNotCalled(t, "Summary")
	cache.AssertExpectations(t)
}

func TestDashboardSummary_CacheMissUsesPeriodBoundaries(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	repo := new(MockDashboardRepository)
	cache := new(MockCacheService)
	summary := &models.DashboardSummary{SalesMonth: 12}

	day := time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)
	month := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cache.On("GetDashboard", ctx, tenantID).Return(nil, nil)
	repo.On("Summary", ctx, tenantID, day, month, day).Return(summary, nil)
	cache.On("SetDashboard", ctx, tenantID, summary, dashboardCacheTTL).Return(nil)

	svc := NewDashboardService(repo, cache, zap.NewNop()).(*dashboardService)
	svc.now = func() time.Time { return time.Date(2026, 5, 17, 14, 30, 0, 0, time.UTC) }
	got, err := svc.Summary(ctx, tenantID)

	require.NoError(t, err)
	assert.Equal(t, 12, got.SalesMonth)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}
