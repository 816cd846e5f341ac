package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/notifications"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvoiceService interface {
	// Create builds an invoice from a sale, a service order, or manual amounts.
	Create(ctx context.Context, tenantID uuid.UUID, in *models.InvoiceInput) (*models.Invoice, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.InvoiceFilter) (common.Page[*models.Invoice], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *models.InvoiceInput) (*models.Invoice, error)
	Remove(ctx context.Context, tenantID, id uuid.UUID) error
	ChangeStatus(ctx context.Context, tenantID, id, userID uuid.UUID, status string) (*models.Invoice, error)
	// PDF renders the invoice, stores a copy in object storage and returns the bytes.
	PDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, *models.Invoice, error)
	Send(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type invoiceService struct {
	invoices      repositories.InvoiceRepository
	sales         repositories.SaleRepository
	orders        repositories.ServiceOrderRepository
	customers     repositories.CustomerRepository
	settings      SettingService
	notifications NotificationService
	minioService  MinioService
	cacheService  caching.CacheService
	logger        *zap.Logger
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	sales repositories.SaleRepository,
	orders repositories.ServiceOrderRepository,
	customers repositories.CustomerRepository,
	settings SettingService,
	notifications NotificationService,
	minioService MinioService,
	cacheService caching.CacheService,
	logger *zap.Logger,
) InvoiceService {
	return &invoiceService{
		invoices:      invoices,
		sales:         sales,
		orders:        orders,
		customers:     customers,
		settings:      settings,
		notifications: notifications,
		minioService:  minioService,
		cacheService:  cacheService,
		logger:        logger,
	}
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// source fills customer and subtotal from the sale or service order the invoice is built from.
func (s *invoiceService) source(ctx context.Context, tenantID uuid.UUID, inv *models.Invoice, in *models.InvoiceInput) error {
	sources := 0
	if in.SaleID != nil {
		sources++
	}
	if in.ServiceOrderID != nil {
		sources++
	}
	if sources > 1 {
		return common.ErrInvalidInput.WithMessage("an invoice references either a sale or a service order")
	}

	switch {
	case in.SaleID != nil:
		sale, err := s.sales.GetByID(ctx, tenantID, *in.SaleID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return common.NotFound("sale")
			}
			return err
		}
		if sale.Status != models.SaleStatusCompleted {
			return common.ErrInvalidState.WithMessage("cancelled sales cannot be invoiced")
		}
		inv.SaleID, inv.CustomerID, inv.Subtotal = &sale.ID, sale.CustomerID, sale.Total
	case in.ServiceOrderID != nil:
		order, err := s.orders.GetByID(ctx, tenantID, *in.ServiceOrderID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return common.NotFound("service_order")
			}
			return err
		}
		if order.Status != models.ServiceOrderCompleted && order.Status != models.ServiceOrderDelivered {
			return common.ErrInvalidState.WithMessage("only completed service orders can be invoiced")
		}
		inv.ServiceOrderID, inv.CustomerID, inv.Subtotal = &order.ID, &order.CustomerID, order.Total
	default:
		if in.CustomerID == nil || in.Subtotal == nil {
			return common.ErrInvalidInput.WithMessage("manual invoices need customer_id and subtotal")
		}
		if _, err := s.customers.GetByID(ctx, tenantID, *in.CustomerID); err != nil {
			if repositories.IsNotFound(err) {
				return common.NotFound("customer")
			}
			return err
		}
		inv.CustomerID, inv.Subtotal = in.CustomerID, *in.Subtotal
	}
	return nil
}

func (s *invoiceService) Create(ctx context.Context, tenantID uuid.UUID, in *models.InvoiceInput) (*models.Invoice, error) {
	setting, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{ID: uuid.New(), TenantID: tenantID, Status: models.InvoiceDraft, Notes: in.Notes}
	if err := s.source(ctx, tenantID, inv, in); err != nil {
		return nil, err
	}

	inv.TaxRate = setting.DefaultTaxRate
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	inv.DueDate = today().AddDate(0, 0, setting.InvoiceDueDays)
	if in.DueDate != nil {
		inv.DueDate = *in.DueDate
	}
	inv.Recalculate()

	if err := s.invoices.Create(ctx, inv, setting.InvoicePrefix); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	inv.CreatedAt, inv.UpdatedAt = now, now
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter *models.InvoiceFilter) (common.Page[*models.Invoice], error) {
	invoices, total, err := s.invoices.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.Invoice]{}, err
	}
	return common.NewPage(invoices, total, filter.Limit, filter.Offset), nil
}

// Update changes a draft. Amounts of invoices backed by a sale or service order follow their source.
func (s *invoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, in *models.InvoiceInput) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceDraft {
		return nil, common.ErrInvalidState.WithMessage("only draft invoices can be changed")
	}

	if inv.Manual() {
		if in.SaleID != nil || in.ServiceOrderID != nil {
			return nil, common.ErrInvalidInput.WithMessage("the invoice source cannot be changed")
		}
		if in.CustomerID != nil {
			if _, err := s.customers.GetByID(ctx, tenantID, *in.CustomerID); err != nil {
				if repositories.IsNotFound(err) {
					return nil, common.NotFound("customer")
				}
				return nil, err
			}
			inv.CustomerID = in.CustomerID
		}
		if in.Subtotal != nil {
			inv.Subtotal = *in.Subtotal
		}
	}
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	if in.DueDate != nil {
		inv.DueDate = *in.DueDate
	}
	if in.Notes != nil {
		inv.Notes = in.Notes
	}
	inv.Recalculate()

	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) Remove(ctx context.Context, tenantID, id uuid.UUID) error {
	inv, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if inv.Status != models.InvoiceDraft {
		return common.ErrInvalidState.WithMessage("only draft invoices can be deleted")
	}
	return s.invoices.Delete(ctx, tenantID, id)
}

func (s *invoiceService) ChangeStatus(ctx context.Context, tenantID, id, userID uuid.UUID, status string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if !models.CanTransition(models.InvoiceTransitions, from, status) {
		return nil, common.ErrInvalidState.WithMessage("status transition not allowed").
			WithDetails(map[string]string{"from": from, "to": status})
	}

	now := time.Now().UTC()
	inv.Status = status
	var financial *models.Transaction
	switch status {
	case models.InvoiceIssued:
		day := today()
		inv.IssueDate = &day
	case models.InvoicePaid:
		inv.PaidAt = &now
		// sale and service order invoices already have their own financial entries
		if inv.Manual() {
			financial = &models.Transaction{
				TenantID:      tenantID,
				Type:          models.TransactionIncome,
				Category:      "INVOICES",
				Description:   fmt.Sprintf("Invoice %s", inv.Number),
				Amount:        inv.Total,
				Status:        models.TransactionPaid,
				DueDate:       &inv.DueDate,
				PaidAt:        &now,
				ReferenceType: models.RefInvoice,
				ReferenceID:   &inv.ID,
				CustomerID:    inv.CustomerID,
				CreatedBy:     &userID,
			}
		}
	}

	if err := s.invoices.UpdateStatus(ctx, inv, from, financial); err != nil {
		return nil, err
	}
	if err := s.cacheService.DeleteDashboard(ctx, tenantID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
	return inv, nil
}

func (s *invoiceService) document(ctx context.Context, inv *models.Invoice) (*models.InvoiceDocument, error) {
	setting, err := s.settings.Get(ctx, inv.TenantID)
	if err != nil {
		return nil, err
	}
	doc := &models.InvoiceDocument{Invoice: inv, Setting: setting}

	if inv.CustomerID != nil {
		customer, err := s.customers.GetByID(ctx, inv.TenantID, *inv.CustomerID)
		if err != nil && !repositories.IsNotFound(err) {
			return nil, err
		}
		doc.Customer = customer
	}

	switch {
	case inv.SaleID != nil:
		sale, err := s.sales.GetByID(ctx, inv.TenantID, *inv.SaleID)
		if err != nil {
			return nil, err
		}
		for _, item := range sale.Items {
			doc.Lines = append(doc.Lines, models.InvoiceLine{
				Description: item.ProductName, Quantity: item.Quantity, UnitPrice: item.UnitPrice, Total: item.Total,
			})
		}
		if sale.Discount.IsPositive() {
			doc.Lines = append(doc.Lines, models.InvoiceLine{
				Description: "Desconto", Quantity: 1, UnitPrice: sale.Discount.Neg(), Total: sale.Discount.Neg(),
			})
		}
	case inv.ServiceOrderID != nil:
		order, err := s.orders.GetByID(ctx, inv.TenantID, *inv.ServiceOrderID)
		if err != nil {
			return nil, err
		}
		if order.LaborCost.IsPositive() {
			doc.Lines = append(doc.Lines, models.InvoiceLine{
				Description: fmt.Sprintf("Mão de obra - OS #%d (%s)", order.Number, order.Equipment),
				Quantity:    1, UnitPrice: order.LaborCost, Total: order.LaborCost,
			})
		}
		for _, item := range order.Items {
			doc.Lines = append(doc.Lines, models.InvoiceLine{
				Description: item.Description, Quantity: item.Quantity, UnitPrice: item.UnitPrice, Total: item.Total,
			})
		}
		if order.Discount.IsPositive() {
			doc.Lines = append(doc.Lines, models.InvoiceLine{
				Description: "Desconto", Quantity: 1, UnitPrice: order.Discount.Neg(), Total: order.Discount.Neg(),
			})
		}
	default:
		description := "Serviços"
		if inv.Notes != nil && *inv.Notes != "" && len(*inv.Notes) <= 60 {
			description = *inv.Notes
		}
		doc.Lines = []models.InvoiceLine{{Description: description, Quantity: 1, UnitPrice: inv.Subtotal, Total: inv.Subtotal}}
	}
	return doc, nil
}

func (s *invoiceService) PDF(ctx context.Context, tenantID, id uuid.UUID) ([]byte, *models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.document(ctx, inv)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := RenderInvoicePDF(doc)
	if err != nil {
		return nil, nil, err
	}

	key := invoicePDFKey(tenantID, id)
	if err := s.minioService.Upload(ctx, key, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf"); err != nil {
		s.logger.Warn("failed to store invoice pdf", zap.String("invoice_id", id.String()), zap.Error(err))
		return pdf, inv, nil
	}
	if err := s.invoices.SetPDFKey(ctx, tenantID, id, key); err != nil {
		s.logger.Warn("failed to record invoice pdf key", zap.String("invoice_id", id.String()), zap.Error(err))
	} else {
		inv.PDFKey = &key
	}
	return pdf, inv, nil
}

func (s *invoiceService) Send(ctx context.Context, tenantID, id uuid.UUID) (*models.NotificationLog, error) {
	inv, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.CustomerID == nil {
		return nil, common.ErrInvalidInput.WithMessage("invoice has no customer")
	}
	customer, err := s.customers.GetByID(ctx, tenantID, *inv.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Email == nil {
		return nil, common.ErrInvalidInput.WithMessage("customer has no email").
			WithDetails(map[string]string{"field": "email"})
	}
	setting, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	subject, body, err := notifications.Render(notifications.TemplateInvoice, notifications.InvoiceData{
		Company:      setting.CompanyName,
		CustomerName: customer.Name,
		Invoice:      inv,
	})
	if err != nil {
		return nil, err
	}
	ref := models.RefInvoice
	return s.notifications.Queue(ctx, tenantID, &models.Notification{
		Channel:       models.ChannelEmail,
		Recipient:     *customer.Email,
		Subject:       &subject,
		Message:       body,
		ReferenceType: &ref,
		ReferenceID:   &inv.ID,
	})
}

func (s *invoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	n, err := s.invoices.MarkOverdue(ctx, today())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := s.cacheService.InvalidateAllDashboards(ctx); err != nil {
			s.logger.Warn("failed to invalidate dashboards", zap.Error(err))
		}
	}
	return n, nil
}
