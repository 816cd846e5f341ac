package services

import (
	"context"
	"time"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/notifications"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SaleService interface {
	// Create runs the whole sale (stock, ledger, financial entry, customer totals) in one transaction.
	Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.CreateSaleInput) (*models.Sale, error)
	Cancel(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.CancelSaleInput) (*models.Sale, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) (common.Page[*models.Sale], error)
	Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.SalesSummary, error)
	Export(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) ([]byte, error)
}

type saleService struct {
	sales         repositories.SaleRepository
	customers     repositories.CustomerRepository
	settings      SettingService
	notifications NotificationService
	cacheService  caching.CacheService
	logger        *zap.Logger
}

func NewSaleService(sales repositories.SaleRepository, customers repositories.CustomerRepository, settings SettingService, notifications NotificationService, cacheService caching.CacheService, logger *zap.Logger) SaleService {
	return &saleService{
		sales:         sales,
		customers:     customers,
		settings:      settings,
		notifications: notifications,
		cacheService:  cacheService,
		logger:        logger,
	}
}

func (s *saleService) Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.CreateSaleInput) (*models.Sale, error) {
	if len(in.Items) == 0 {
		return nil, common.ErrInvalidInput.WithMessage("a sale needs at least one item").
			WithDetails(map[string]string{"field": "items"})
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, common.ErrInvalidInput.WithMessage("quantity must be greater than zero").
				WithDetails(map[string]string{"field": "items.quantity"})
		}
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CustomerID:    in.CustomerID,
		UserID:        userID,
		Status:        models.SaleStatusCompleted,
		PaymentMethod: in.PaymentMethod,
		Discount:      decimal.Zero,
		Notes:         in.Notes,
	}
	if in.Discount != nil {
		sale.Discount = *in.Discount
	}

	if err := s.sales.Create(ctx, sale, in); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.Int64("number", sale.Number),
		zap.String("total", sale.Total.StringFixed(2)))

	s.afterStockChange(ctx, tenantID, sale.Items)
	s.sendReceipt(ctx, sale, in.SendReceipt)
	return sale, nil
}

func (s *saleService) Cancel(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.CancelSaleInput) (*models.Sale, error) {
	sale, err := s.sales.Cancel(ctx, tenantID, id, userID, in.Reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_id", id.String()),
		zap.String("user_id", userID.String()))

	s.afterStockChange(ctx, tenantID, sale.Items)
	return sale, nil
}

func (s *saleService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Sale, error) {
	return s.sales.GetByID(ctx, tenantID, id)
}

func (s *saleService) List(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) (common.Page[*models.Sale], error) {
	sales, total, err := s.sales.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.Sale]{}, err
	}
	return common.NewPage(sales, total, filter.Limit, filter.Offset), nil
}

// Summary defaults to the current month when no range is given; to is inclusive of its whole day.
func (s *saleService) Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.SalesSummary, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	if from != nil {
		start = *from
	}
	if to != nil {
		end = endOfDay(*to)
	}
	if end.Before(start) {
		return nil, common.ErrInvalidInput.WithMessage("from must be before to")
	}
	return s.sales.Summary(ctx, tenantID, start, end)
}

func (s *saleService) Export(ctx context.Context, tenantID uuid.UUID, filter *models.SaleFilter) ([]byte, error) {
	f := *filter
	f.Limit, f.Offset = exportPageSize, 0

	var all []*models.Sale
	for {
		sales, _, err := s.sales.List(ctx, tenantID, &f)
		if err != nil {
			return nil, err
		}
		all = append(all, sales...)
		if len(sales) < exportPageSize {
			break
		}
		f.Offset += exportPageSize
	}
	return SalesWorkbook(all)
}

func (s *saleService) afterStockChange(ctx context.Context, tenantID uuid.UUID, items []*models.SaleItem) {
	for _, item := range items {
		if err := s.cacheService.DeleteProduct(ctx, tenantID, item.ProductID); err != nil {
			s.logger.Warn("failed to invalidate product cache", zap.String("product_id", item.ProductID.String()), zap.Error(err))
		}
	}
	if err := s.cacheService.DeleteDashboard(ctx, tenantID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}

// sendReceipt emails the customer when asked to or when the tenant enabled receipts.
func (s *saleService) sendReceipt(ctx context.Context, sale *models.Sale, requested bool) {
	if sale.CustomerID == nil {
		return
	}
	setting, err := s.settings.Get(ctx, sale.TenantID)
	if err != nil {
		s.logger.Warn("failed to load settings for receipt", zap.Error(err))
		return
	}
	if !requested && !setting.NotifySaleReceipt {
		return
	}
	customer, err := s.customers.GetByID(ctx, sale.TenantID, *sale.CustomerID)
	if err != nil || customer.Email == nil {
		return
	}

	subject, body, err := notifications.Render(notifications.TemplateSaleReceipt, notifications.SaleReceiptData{
		Company:      setting.CompanyName,
		CustomerName: customer.Name,
		Sale:         sale,
	})
	if err != nil {
		s.logger.Error("failed to render receipt", zap.Error(err))
		return
	}
	ref := models.RefSale
	_, err = s.notifications.Queue(ctx, sale.TenantID, &models.Notification{
		Channel:       models.ChannelEmail,
		Recipient:     *customer.Email,
		Subject:       &subject,
		Message:       body,
		ReferenceType: &ref,
		ReferenceID:   &sale.ID,
	})
	if err != nil {
		s.logger.Warn("failed to queue sale receipt", zap.String("sale_id", sale.ID.String()), zap.Error(err))
	}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
