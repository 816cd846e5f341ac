package services

import (
	"context"
	"time"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.TransactionInput) (*models.Transaction, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.TransactionFilter) (common.Page[*models.Transaction], error)
	// Pay and Cancel only touch manual entries; sale and service order entries follow their owner.
	Pay(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error)
	Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.TransactionSummary, error)
}

type transactionService struct {
	transactions repositories.TransactionRepository
	customers    repositories.CustomerRepository
	cacheService caching.CacheService
	logger       *zap.Logger
}

func NewTransactionService(
	transactions repositories.TransactionRepository,
	customers repositories.CustomerRepository,
	cacheService caching.CacheService,
	logger *zap.Logger,
) TransactionService {
	return &transactionService{
		transactions: transactions,
		customers:    customers,
		cacheService: cacheService,
		logger:       logger,
	}
}

func (s *transactionService) Create(ctx context.Context, tenantID, userID uuid.UUID, in *models.TransactionInput) (*models.Transaction, error) {
	if in.CustomerID != nil {
		if _, err := s.customers.GetByID(ctx, tenantID, *in.CustomerID); err != nil {
			if repositories.IsNotFound(err) {
				return nil, common.NotFound("customer")
			}
			return nil, err
		}
	}

	t := &models.Transaction{
		ID:            uuid.New(),
		TenantID:      tenantID,
		Type:          in.Type,
		Category:      in.Category,
		Description:   in.Description,
		Amount:        in.Amount.Round(2),
		PaymentMethod: in.PaymentMethod,
		Status:        models.TransactionPending,
		DueDate:       in.DueDate,
		ReferenceType: models.RefManual,
		CustomerID:    in.CustomerID,
		CreatedBy:     &userID,
	}
	if in.Paid {
		now := time.Now().UTC()
		t.Status = models.TransactionPaid
		t.PaidAt = &now
	}

	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)
	return t, nil
}

func (s *transactionService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, tenantID, id)
}

func (s *transactionService) List(ctx context.Context, tenantID uuid.UUID, filter *models.TransactionFilter) (common.Page[*models.Transaction], error) {
	items, total, err := s.transactions.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.Transaction]{}, err
	}
	return common.NewPage(items, total, filter.Limit, filter.Offset), nil
}

func (s *transactionService) manual(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.ReferenceType != models.RefManual {
		return nil, common.ErrInvalidState.WithMessage("transaction is managed by its " + t.ReferenceType).
			WithDetails(map[string]string{"reference_type": t.ReferenceType})
	}
	return t, nil
}

func (s *transactionService) Pay(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	t, err := s.manual(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TransactionPending {
		return nil, common.ErrInvalidState.WithMessage("only pending transactions can be paid")
	}
	now := time.Now().UTC()
	if err := s.transactions.UpdateStatus(ctx, tenantID, id, models.TransactionPaid, &now); err != nil {
		return nil, err
	}
	t.Status, t.PaidAt = models.TransactionPaid, &now
	s.invalidateDashboard(ctx, tenantID)
	return t, nil
}

func (s *transactionService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Transaction, error) {
	t, err := s.manual(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TransactionCancelled {
		return nil, common.ErrInvalidState.WithMessage("transaction is already cancelled")
	}
	if err := s.transactions.UpdateStatus(ctx, tenantID, id, models.TransactionCancelled, nil); err != nil {
		return nil, err
	}
	t.Status, t.PaidAt = models.TransactionCancelled, nil
	s.invalidateDashboard(ctx, tenantID)
	return t, nil
}

func (s *transactionService) Summary(ctx context.Context, tenantID uuid.UUID, from, to *time.Time) (*models.TransactionSummary, error) {
	if to != nil {
		end := endOfDay(*to)
		to = &end
	}
	return s.transactions.Summary(ctx, tenantID, from, to)
}

func (s *transactionService) invalidateDashboard(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheService.DeleteDashboard(ctx, tenantID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
