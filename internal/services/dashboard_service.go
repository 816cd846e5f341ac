package services

import (
	"context"
	"time"

	"storeops/internal/caching"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dashboardCacheTTL = 5 * time.Minute

type DashboardService interface {
	Summary(ctx context.Context, tenantID uuid.UUID) (*models.DashboardSummary, error)
	// Refresh drops every cached summary.
	Refresh(ctx context.Context) (int, error)
}

type dashboardService struct {
	repo         repositories.DashboardRepository
	cacheService caching.CacheService
	logger       *zap.Logger
	now          func() time.Time
}

func NewDashboardService(repo repositories.DashboardRepository, cacheService caching.CacheService, logger *zap.Logger) DashboardService {
	return &dashboardService{
		repo:         repo,
		cacheService: cacheService,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context, tenantID uuid.UUID) (*models.DashboardSummary, error) {
	cached, err := s.cacheService.GetDashboard(ctx, tenantID)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	summary, err := s.repo.Summary(ctx, tenantID, dayStart, monthStart, dayStart)
	if err != nil {
		return nil, err
	}
	if err := s.cacheService.SetDashboard(ctx, tenantID, summary, dashboardCacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return summary, nil
}

func (s *dashboardService) Refresh(ctx context.Context) (int, error) {
	return s.cacheService.InvalidateAllDashboards(ctx)
}
