package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"storeops/internal/caching"
	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	productCacheTTL = 15 * time.Minute
	presignExpiry   = 15 * time.Minute
	exportPageSize  = 500
)

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *models.ProductInput) (*models.Product, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) (common.Page[*models.Product], error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *models.ProductInput) (*models.Product, error)
	// Remove deactivates products referenced by sales, service orders or movements and deletes the rest.
	// It reports whether the delete was soft.
	Remove(ctx context.Context, tenantID, id uuid.UUID) (bool, error)

	AdjustStock(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.StockAdjustmentInput) (*models.StockMovement, error)
	Movements(ctx context.Context, tenantID, id uuid.UUID, limit, offset int) (common.Page[*models.StockMovement], error)
	LowStock(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.Product], error)

	UploadImage(ctx context.Context, tenantID, id uuid.UUID, reader io.Reader, size int64) (*models.Product, error)
	ImageURL(ctx context.Context, tenantID, id uuid.UUID) (string, error)
	DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error

	Export(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]byte, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	minioService MinioService
	cacheService caching.CacheService
	logger       *zap.Logger
}

func NewProductService(productRepo repositories.ProductRepository, minioService MinioService, cacheService caching.CacheService, logger *zap.Logger) ProductService {
	return &productService{
		productRepo:  productRepo,
		minioService: minioService,
		cacheService: cacheService,
		logger:       logger,
	}
}

func (s *productService) checkSKU(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.SKUExists(ctx, tenantID, sku, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check sku: %w", err)
	}
	if exists {
		return common.ErrAlreadyExists.WithMessage(fmt.Sprintf("sku %s already exists", sku)).
			WithDetails(map[string]string{"field": "sku"})
	}
	return nil
}

func applyProductInput(p *models.Product, in *models.ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.SKU = strings.TrimSpace(in.SKU)
	p.Barcode = common.StringPtr(common.SafeString(in.Barcode))
	p.Category = common.StringPtr(common.SafeString(in.Category))
	p.Unit = strings.ToUpper(strings.TrimSpace(in.Unit))
	if p.Unit == "" {
		p.Unit = "UN"
	}
	p.CostPrice = in.CostPrice
	p.SalePrice = in.SalePrice
	p.MinStock = in.MinStock
	if in.Active != nil {
		p.Active = *in.Active
	}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, in *models.ProductInput) (*models.Product, error) {
	if err := s.checkSKU(ctx, tenantID, strings.TrimSpace(in.SKU), nil); err != nil {
		return nil, err
	}

	product := &models.Product{ID: uuid.New(), TenantID: tenantID, Active: true, Stock: in.Stock}
	applyProductInput(product, in)

	if err := s.productRepo.Create(ctx, product); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "sku"})
		}
		return nil, err
	}
	s.invalidateDashboard(ctx, tenantID)
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	// Try to get from cache first
	if cached, err := s.cacheService.GetProduct(ctx, tenantID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		// cache errors shouldn't fail the operation
		s.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetProduct(ctx, tenantID, product, productCacheTTL); err != nil {
		s.logger.Warn("failed to cache product", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) (common.Page[*models.Product], error) {
	products, total, err := s.productRepo.List(ctx, tenantID, filter)
	if err != nil {
		return common.Page[*models.Product]{}, err
	}
	return common.NewPage(products, total, filter.Limit, filter.Offset), nil
}

func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, in *models.ProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sku := strings.TrimSpace(in.SKU); sku != product.SKU {
		if err := s.checkSKU(ctx, tenantID, sku, &id); err != nil {
			return nil, err
		}
	}

	applyProductInput(product, in)
	if err := s.productRepo.Update(ctx, product); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, common.ErrAlreadyExists.WithDetails(map[string]string{"field": "sku"})
		}
		return nil, err
	}
	s.invalidate(ctx, tenantID, id)
	return product, nil
}

func (s *productService) Remove(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return false, err
	}
	hasDependents, err := s.productRepo.HasDependents(ctx, tenantID, id)
	if err != nil {
		return false, err
	}

	if hasDependents {
		err = s.productRepo.Deactivate(ctx, tenantID, id)
	} else {
		err = s.productRepo.Delete(ctx, tenantID, id)
	}
	if err != nil {
		return false, err
	}

	if !hasDependents && product.ImageKey != nil {
		if err := s.minioService.Delete(ctx, *product.ImageKey); err != nil {
			s.logger.Warn("failed to delete product image", zap.String("key", *product.ImageKey), zap.Error(err))
		}
	}
	s.invalidate(ctx, tenantID, id)
	return hasDependents, nil
}

func (s *productService) AdjustStock(ctx context.Context, tenantID, id, userID uuid.UUID, in *models.StockAdjustmentInput) (*models.StockMovement, error) {
	if in.Type != models.AdjustAdjustment && in.Quantity <= 0 {
		return nil, common.ErrInvalidInput.WithMessage("quantity must be greater than zero").
			WithDetails(map[string]string{"field": "quantity"})
	}
	movement, err := s.productRepo.AdjustStock(ctx, tenantID, id, userID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID, id)
	return movement, nil
}

func (s *productService) Movements(ctx context.Context, tenantID, id uuid.UUID, limit, offset int) (common.Page[*models.StockMovement], error) {
	if _, err := s.productRepo.GetByID(ctx, tenantID, id); err != nil {
		return common.Page[*models.StockMovement]{}, err
	}
	movements, total, err := s.productRepo.ListMovements(ctx, tenantID, id, limit, offset)
	if err != nil {
		return common.Page[*models.StockMovement]{}, err
	}
	return common.NewPage(movements, total, limit, offset), nil
}

func (s *productService) LowStock(ctx context.Context, tenantID uuid.UUID, limit, offset int) (common.Page[*models.Product], error) {
	return s.List(ctx, tenantID, &models.ProductFilter{LowStock: true, Limit: limit, Offset: offset})
}

func (s *productService) UploadImage(ctx context.Context, tenantID, id uuid.UUID, reader io.Reader, size int64) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, common.ErrInvalidInput.WithMessage("could not read uploaded file")
	}
	contentType, ext, ok := DetectImage(head[:n])
	if !ok {
		return nil, common.ErrInvalidInput.WithMessage("image must be a JPEG, PNG, WebP or GIF file")
	}

	key := productImageKey(tenantID, id, ext)
	body := io.MultiReader(bytes.NewReader(head[:n]), reader)
	if err := s.minioService.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if err := s.productRepo.SetImage(ctx, tenantID, id, &key); err != nil {
		return nil, err
	}

	if product.ImageKey != nil {
		if err := s.minioService.Delete(ctx, *product.ImageKey); err != nil {
			s.logger.Warn("failed to delete previous image", zap.String("key", *product.ImageKey), zap.Error(err))
		}
	}
	product.ImageKey = &key
	s.invalidate(ctx, tenantID, id)
	return product, nil
}

func (s *productService) ImageURL(ctx context.Context, tenantID, id uuid.UUID) (string, error) {
	product, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return "", err
	}
	if product.ImageKey == nil {
		return "", common.NotFound("image")
	}
	return s.minioService.GetPresignedURL(ctx, *product.ImageKey, presignExpiry)
}

func (s *productService) DeleteImage(ctx context.Context, tenantID, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if product.ImageKey == nil {
		return common.NotFound("image")
	}
	if err := s.productRepo.SetImage(ctx, tenantID, id, nil); err != nil {
		return err
	}
	if err := s.minioService.Delete(ctx, *product.ImageKey); err != nil {
		s.logger.Warn("failed to delete image object", zap.String("key", *product.ImageKey), zap.Error(err))
	}
	s.invalidate(ctx, tenantID, id)
	return nil
}

func (s *productService) Export(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]byte, error) {
	f := *filter
	f.Limit, f.Offset = exportPageSize, 0

	var all []*models.Product
	for {
		products, _, err := s.productRepo.List(ctx, tenantID, &f)
		if err != nil {
			return nil, err
		}
		all = append(all, products...)
		if len(products) < exportPageSize {
			break
		}
		f.Offset += exportPageSize
	}
	return ProductsWorkbook(all)
}

func (s *productService) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, tenantID, id); err != nil {
		s.logger.Warn("failed to invalidate product cache", zap.String("product_id", id.String()), zap.Error(err))
	}
	s.invalidateDashboard(ctx, tenantID)
}

func (s *productService) invalidateDashboard(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheService.DeleteDashboard(ctx, tenantID); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("tenant_id", tenantID.String()), zap.Error(err))
	}
}
