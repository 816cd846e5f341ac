package services

import (
	"context"
	"time"

	"storeops/internal/caching"
	"storeops/internal/models"
	"storeops/internal/notifications"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertService emails tenant admins about products at or below their minimum stock.
type AlertService interface {
	// LowStock sends at most one alert per tenant per day and returns how many tenants were alerted.
	LowStock(ctx context.Context) (int, error)
}

type alertService struct {
	products      repositories.ProductRepository
	users         repositories.UserRepository
	settings      SettingService
	notifications NotificationService
	cacheService  caching.CacheService
	logger        *zap.Logger
	now           func() time.Time
}

func NewAlertService(
	products repositories.ProductRepository,
	users repositories.UserRepository,
	settings SettingService,
	notifications NotificationService,
	cacheService caching.CacheService,
	logger *zap.Logger,
) AlertService {
	return &alertService{
		products:      products,
		users:         users,
		settings:      settings,
		notifications: notifications,
		cacheService:  cacheService,
		logger:        logger,
		now:           time.Now,
	}
}

func lowStockAlertKey(tenantID uuid.UUID, day time.Time) string {
	return caching.Key("alert", "low-stock", tenantID.String(), day.Format("2006-01-02"))
}

func (s *alertService) LowStock(ctx context.Context) (int, error) {
	products, err := s.products.ListLowStockForAlerts(ctx)
	if err != nil {
		return 0, err
	}

	byTenant := make(map[uuid.UUID][]*models.Product)
	var order []uuid.UUID
	for _, p := range products {
		if _, ok := byTenant[p.TenantID]; !ok {
			order = append(order, p.TenantID)
		}
		byTenant[p.TenantID] = append(byTenant[p.TenantID], p)
	}

	alerted := 0
	today := s.now().UTC()
	for _, tenantID := range order {
		if ctx.Err() != nil {
			return alerted, ctx.Err()
		}
		first, err := s.cacheService.SetOnce(ctx, lowStockAlertKey(tenantID, today), 24*time.Hour)
		if err != nil {
			s.logger.Warn("low stock dedupe failed", zap.String("tenant_id", tenantID.String()), zap.Error(err))
			continue
		}
		if !first {
			continue
		}
		if s.alertTenant(ctx, tenantID, byTenant[tenantID]) {
			alerted++
		}
	}
	return alerted, nil
}

func (s *alertService) alertTenant(ctx context.Context, tenantID uuid.UUID, products []*models.Product) bool {
	log := s.logger.With(zap.String("tenant_id", tenantID.String()))

	setting, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		log.Warn("failed to load settings for low stock alert", zap.Error(err))
		return false
	}
	admins, err := s.users.ListByRole(ctx, tenantID, models.RoleAdmin)
	if err != nil {
		log.Warn("failed to list admins for low stock alert", zap.Error(err))
		return false
	}

	subject, body, err := notifications.Render(notifications.TemplateLowStock, notifications.LowStockData{
		Company:  setting.CompanyName,
		Products: products,
	})
	if err != nil {
		log.Error("failed to render low stock alert", zap.Error(err))
		return false
	}

	ref := models.RefProduct
	sent := false
	for _, admin := range admins {
		if !admin.Active {
			continue
		}
		_, err := s.notifications.Queue(ctx, tenantID, &models.Notification{
			Channel:       models.ChannelEmail,
			Recipient:     admin.Email,
			Subject:       &subject,
			Message:       body,
			ReferenceType: &ref,
		})
		if err != nil {
			log.Warn("failed to queue low stock alert", zap.String("user_id", admin.ID.String()), zap.Error(err))
			continue
		}
		sent = true
	}
	if sent {
		log.Info("low stock alert queued", zap.Int("products", len(products)))
	}
	return sent
}
