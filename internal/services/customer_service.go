package services

import (
	"context"
	"fmt"
	"strings"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *models.CustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) (common.Page[*models.Customer], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error)
	Remove(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	Sales(ctx context.Context, tenantID, id uuid.UUID, limit, offset int) (common.Page[*models.Sale], error)
}

type customerService struct {
	customers repositories.CustomerRepository
	sales     repositories.SaleRepository
	logger    *zap.Logger
}

func NewCustomerService(customers repositories.CustomerRepository, sales repositories.SaleRepository, logger *zap.Logger) CustomerService {
	return &customerService{customers: customers, sales: sales, logger: logger}
}

// normalizeDocument strips formatting, checks the CPF/CNPJ digits and returns the digits and their type.
func normalizeDocument(raw *string) (*string, *string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil, nil
	}
	digits := common.OnlyDigits(*raw)
	if !common.ValidDocument(digits) {
		return nil, nil, common.ErrInvalidDocument.WithDetails(map[string]string{"field": "document"})
	}
	kind := common.DocumentType(digits)
	return &digits, &kind, nil
}

func (s *customerService) checkDocument(ctx context.Context, tenantID uuid.UUID, document *string, excludeID *uuid.UUID) error {
	if document == nil {
		return nil
	}
	exists, err := s.customers.DocumentExists(ctx, tenantID, *document, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if exists {
		return common.ErrAlreadyExists.WithMessage("a customer with this CPF/CNPJ already exists").
			WithDetails(map[string]string{"field": "document"})
	}
	return nil
}

func applyCustomerInput(c *models.Customer, in *models.CustomerInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = common.StringPtr(strings.ToLower(common.SafeString(in.Email)))
	c.Phone = common.StringPtr(common.SafeString(in.Phone))
	c.Address = common.StringPtr(common.SafeString(in.Address))
	c.City = common.StringPtr(common.SafeString(in.City))
	c.State = common.StringPtr(strings.ToUpper(common.SafeString(in.State)))
	if in.ZipCode != nil {
		c.ZipCode = common.StringPtr(common.OnlyDigits(*in.ZipCode))
	} else {
		c.ZipCode = nil
	}
	c.Notes = in.Notes
	if in.Active != nil {
		c.Active = *in.Active
	}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	document, kind, err := normalizeDocument(in.Document)
	if err != nil {
		return nil, err
	}
	if err := s.checkDocument(ctx, tenantID, document, nil); err != nil {
		return nil, err
	}

	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, Document: document, DocumentType: kind, Active: true}
	applyCustomerInput(customer, in)

	if err := s.customers.Create(ctx, customer); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "document"})
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	return s.customers.GetByID(ctx, tenantID, id)
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) (common.Page[*models.Customer], error) {
	customers, total, err := s.customers.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.Customer]{}, err
	}
	return common.NewPage(customers, total, filter.Limit, filter.Offset), nil
}

func (s *customerService) Update(ctx context.Context, tenantID, id uuid.UUID, in *models.CustomerInput) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	document, kind, err := normalizeDocument(in.Document)
	if err != nil {
		return nil, err
	}
	if common.SafeString(document) != common.SafeString(customer.Document) {
		if err := s.checkDocument(ctx, tenantID, document, &id); err != nil {
			return nil, err
		}
	}

	customer.Document, customer.DocumentType = document, kind
	applyCustomerInput(customer, in)
	if err := s.customers.Update(ctx, customer); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "document"})
		}
		return nil, err
	}
	return customer, nil
}

func (s *customerService) Remove(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	if _, err := s.customers.GetByID(ctx, tenantID, id); err != nil {
		return false, err
	}
	hasDependents, err := s.customers.HasDependents(ctx, tenantID, id)
	if err != nil {
		return false, err
	}
	if hasDependents {
		return true, s.customers.Deactivate(ctx, tenantID, id)
	}
	return false, s.customers.Delete(ctx, tenantID, id)
}

func (s *customerService) Sales(ctx context.Context, tenantID, id uuid.UUID, limit, offset int) (common.Page[*models.Sale], error) {
	if _, err := s.customers.GetByID(ctx, tenantID, id); err != nil {
		return common.Page[*models.Sale]{}, err
	}
	sales, total, err := s.sales.List(ctx, tenantID, &models.SaleFilter{CustomerID: &id, Limit: limit, Offset: offset})
	if err != nil {
		return common.Page[*models.Sale]{}, err
	}
	return common.NewPage(sales, total, limit, offset), nil
}
