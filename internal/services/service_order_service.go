package services

import (
	"context"
	"strings"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/notifications"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ServiceOrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *models.ServiceOrderInput) (*models.ServiceOrder, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ServiceOrderFilter) (common.Page[*models.ServiceOrder], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *models.ServiceOrderInput) (*models.ServiceOrder, error)
	Remove(ctx context.Context, tenantID, id uuid.UUID) error
	ChangeStatus(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.ServiceOrderStatusInput) (*models.ServiceOrder, error)
}

type serviceOrderService struct {
	orders        repositories.ServiceOrderRepository
	customers     repositories.CustomerRepository
	products      repositories.ProductRepository
	users         repositories.UserRepository
	settings      SettingService
	notifications NotificationService
	cacheService  caching.CacheService
	logger        *zap.Logger
}

func NewServiceOrderService(
	orders repositories.ServiceOrderRepository,
	customers repositories.CustomerRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	settings SettingService,
	notifications NotificationService,
	cacheService caching.CacheService,
	logger *zap.Logger,
) ServiceOrderService {
	return &serviceOrderService{
		orders:        orders,
		customers:     customers,
		products:      products,
		users:         users,
		settings:      settings,
		notifications: notifications,
		cacheService:  cacheService,
		logger:        logger,
	}
}

// apply validates references in `in` and copies it onto o, recomputing totals.
func (s *serviceOrderService) apply(ctx context.Context, o *models.ServiceOrder, in *models.ServiceOrderInput) error {
	customer, err := s.customers.GetByID(ctx, o.TenantID, in.CustomerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return common.NotFound("customer")
		}
		return err
	}
	if !customer.Active {
		return common.ErrInvalidState.WithMessage("customer is inactive")
	}
	if in.TechnicianID != nil {
		if _, err := s.users.GetByID(ctx, o.TenantID, *in.TechnicianID); err != nil {
			if repositories.IsNotFound(err) {
				return common.NotFound("technician")
			}
			return err
		}
	}

	items := make([]*models.ServiceOrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.ProductID != nil {
			if _, err := s.products.GetByID(ctx, o.TenantID, *line.ProductID); err != nil {
				if repositories.IsNotFound(err) {
					return common.NotFound("product").WithDetails(map[string]string{"product_id": line.ProductID.String()})
				}
				return err
			}
		}
		items = append(items, &models.ServiceOrderItem{
			ID:             uuid.New(),
			ServiceOrderID: o.ID,
			ProductID:      line.ProductID,
			Description:    strings.TrimSpace(line.Description),
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
		})
	}

	o.CustomerID = in.CustomerID
	o.TechnicianID = in.TechnicianID
	o.Equipment = strings.TrimSpace(in.Equipment)
	o.Description = strings.TrimSpace(in.Description)
	o.Diagnosis = in.Diagnosis
	o.LaborCost = in.LaborCost
	o.Discount = in.Discount
	o.EstimatedAt = in.EstimatedAt
	o.Notes = in.Notes
	o.Items = items
	o.Recalculate()

	if o.Total.IsNegative() {
		return common.ErrInvalidInput.WithMessage("discount exceeds labor and parts").
			WithDetails(map[string]string{"field": "discount"})
	}
	return nil
}

func (s *serviceOrderService) Create(ctx context.Context, tenantID uuid.UUID, in *models.ServiceOrderInput) (*models.ServiceOrder, error) {
	order := &models.ServiceOrder{ID: uuid.New(), TenantID: tenantID, Status: models.ServiceOrderOpen}
	if err := s.apply(ctx, order, in); err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)
	return order, nil
}

func (s *serviceOrderService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ServiceOrder, error) {
	return s.orders.GetByID(ctx, tenantID, id)
}

func (s *serviceOrderService) List(ctx context.Context, tenantID uuid.UUID, filter *models.ServiceOrderFilter) (common.Page[*models.ServiceOrder], error) {
	orders, total, err := s.orders.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.ServiceOrder]{}, err
	}
	return common.NewPage(orders, total, filter.Limit, filter.Offset), nil
}

func (s *serviceOrderService) Update(ctx context.Context, tenantID, id uuid.UUID, in *models.ServiceOrderInput) (*models.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !order.Editable() {
		return nil, common.ErrInvalidState.WithMessage("service order can no longer be edited").
			WithDetails(map[string]string{"status": order.Status})
	}
	if err := s.apply(ctx, order, in); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *serviceOrderService) Remove(ctx context.Context, tenantID, id uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if order.Status != models.ServiceOrderOpen && order.Status != models.ServiceOrderCancelled {
		return common.ErrInvalidState.WithMessage("only open or cancelled service orders can be removed").
			WithDetails(map[string]string{"status": order.Status})
	}
	invoiced, err := s.orders.HasInvoice(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if invoiced {
		return common.ErrInvalidState.WithMessage("service order has an invoice")
	}
	if err := s.orders.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidateDashboard(ctx, tenantID)
	return nil
}

func (s *serviceOrderService) ChangeStatus(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.ServiceOrderStatusInput) (*models.ServiceOrder, error) {
	order, err := s.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(models.ServiceOrderTransitions, order.Status, in.Status) {
		return nil, common.ErrInvalidState.WithMessage("status transition not allowed").
			WithDetails(map[string]string{"from": order.Status, "to": in.Status})
	}

	switch in.Status {
	case models.ServiceOrderCompleted:
		order, err = s.orders.Complete(ctx, tenantID, id, userID)
		if err == nil {
			for _, item := range order.Items {
				if item.ProductID != nil {
					if cerr := s.cacheService.DeleteProduct(ctx, tenantID, *item.ProductID); cerr != nil {
						s.logger.Warn("failed to invalidate product cache", zap.Error(cerr))
					}
				}
			}
		}
	case models.ServiceOrderDelivered:
		order, err = s.orders.Deliver(ctx, tenantID, id)
	default:
		from := order.Status
		if err = s.orders.SetStatus(ctx, tenantID, id, from, in.Status); err == nil {
			order.Status = in.Status
		}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("service order status changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("service_order_id", id.String()),
		zap.String("status", order.Status))

	s.invalidateDashboard(ctx, tenantID)
	s.notifyStatus(ctx, order, in.Notify)
	return order, nil
}

// notifyStatus sends the status over WhatsApp, falling back to email when the customer has no phone.
func (s *serviceOrderService) notifyStatus(ctx context.Context, order *models.ServiceOrder, requested bool) {
	setting, err := s.settings.Get(ctx, order.TenantID)
	if err != nil {
		s.logger.Warn("failed to load settings for status notification", zap.Error(err))
		return
	}
	if !requested && !setting.NotifyServiceOrderStatus {
		return
	}
	customer, err := s.customers.GetByID(ctx, order.TenantID, order.CustomerID)
	if err != nil {
		return
	}

	subject, body, err := notifications.Render(notifications.TemplateServiceOrderStatus, notifications.ServiceOrderStatusData{
		Company:      setting.CompanyName,
		CustomerName: customer.Name,
		Order:        order,
	})
	if err != nil {
		s.logger.Error("failed to render status notification", zap.Error(err))
		return
	}

	ref := models.RefServiceOrder
	n := &models.Notification{Message: body, ReferenceType: &ref, ReferenceID: &order.ID}
	switch {
	case customer.Phone != nil:
		n.Channel, n.Recipient = models.ChannelWhatsApp, *customer.Phone
	case customer.Email != nil:
		n.Channel, n.Recipient, n.Subject = models.ChannelEmail, *customer.Email, &subject
	default:
		return
	}
	if _, err := s.notifications.Queue(ctx, order.TenantID, n); err != nil {
		s.logger.Warn("failed to queue status notification", zap.String("service_order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *serviceOrderService) invalidateDashboard(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheService.DeleteDashboard(ctx, tenantID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
