package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SettingService interface {
	// Get returns the tenant settings, creating defaults on first access.
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Setting, error)
	Update(ctx context.Context, tenantID uuid.UUID, in *models.SettingInput) (*models.Setting, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader, size int64) (*models.Setting, error)
	LogoURL(ctx context.Context, tenantID uuid.UUID) (string, error)
	TestChannel(ctx context.Context, tenantID uuid.UUID, channel, to string) (*models.NotificationLog, error)
}

type settingService struct {
	settings      repositories.SettingRepository
	tenants       repositories.TenantRepository
	minio         MinioService
	notifications NotificationService
	logger        *zap.Logger
}

func NewSettingService(settings repositories.SettingRepository, tenants repositories.TenantRepository, minio MinioService, notifications NotificationService, logger *zap.Logger) SettingService {
	return &settingService{
		settings:      settings,
		tenants:       tenants,
		minio:         minio,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *settingService) Get(ctx context.Context, tenantID uuid.UUID) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, tenantID)
	if err == nil {
		return setting, nil
	}
	if !repositories.IsNotFound(err) {
		return nil, err
	}

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defaults := models.DefaultSetting(tenantID, tenant.Name)
	defaults.CompanyDocument = tenant.Document
	defaults.CompanyEmail = &tenant.Email
	defaults.CompanyPhone = tenant.Phone
	if err := s.settings.Create(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return s.settings.Get(ctx, tenantID)
}

// secretInput ignores the masked placeholder clients echo back from GET.
func secretInput(current, in *string) *string {
	if in == nil || *in == models.MaskedSecret {
		return current
	}
	return common.StringPtr(*in)
}

func (s *settingService) Update(ctx context.Context, tenantID uuid.UUID, in *models.SettingInput) (*models.Setting, error) {
	setting, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if in.CompanyName != nil {
		setting.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.CompanyDocument != nil {
		setting.CompanyDocument = common.StringPtr(common.OnlyDigits(*in.CompanyDocument))
	}
	if in.CompanyEmail != nil {
		setting.CompanyEmail = common.StringPtr(*in.CompanyEmail)
	}
	if in.CompanyPhone != nil {
		setting.CompanyPhone = common.StringPtr(*in.CompanyPhone)
	}
	if in.CompanyAddress != nil {
		setting.CompanyAddress = common.StringPtr(*in.CompanyAddress)
	}
	if in.SMTPHost != nil {
		setting.SMTPHost = common.StringPtr(*in.SMTPHost)
	}
	if in.SMTPPort != nil {
		setting.SMTPPort = in.SMTPPort
	}
	if in.SMTPUser != nil {
		setting.SMTPUser = common.StringPtr(*in.SMTPUser)
	}
	setting.SMTPPassword = secretInput(setting.SMTPPassword, in.SMTPPassword)
	if in.SMTPFrom != nil {
		setting.SMTPFrom = common.StringPtr(*in.SMTPFrom)
	}
	if in.WhatsAppAPIURL != nil {
		setting.WhatsAppAPIURL = common.StringPtr(*in.WhatsAppAPIURL)
	}
	setting.WhatsAppToken = secretInput(setting.WhatsAppToken, in.WhatsAppToken)
	if in.WhatsAppInstance != nil {
		setting.WhatsAppInstance = common.StringPtr(*in.WhatsAppInstance)
	}
	if in.InvoicePrefix != nil {
		setting.InvoicePrefix = strings.ToUpper(strings.TrimSpace(*in.InvoicePrefix))
	}
	if in.InvoiceDueDays != nil {
		setting.InvoiceDueDays = *in.InvoiceDueDays
	}
	if in.DefaultTaxRate != nil {
		setting.DefaultTaxRate = *in.DefaultTaxRate
	}
	if in.LowStockAlerts != nil {
		setting.LowStockAlerts = *in.LowStockAlerts
	}
	if in.NotifySaleReceipt != nil {
		setting.NotifySaleReceipt = *in.NotifySaleReceipt
	}
	if in.NotifyServiceOrderStatus != nil {
		setting.NotifyServiceOrderStatus = *in.NotifyServiceOrderStatus
	}

	if err := s.settings.Update(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *settingService) UploadLogo(ctx context.Context, tenantID uuid.UUID, reader io.Reader, size int64) (*models.Setting, error) {
	setting, err := s.Get(ctx, tenantID)
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
		return nil, common.ErrInvalidInput.WithMessage("logo must be a JPEG, PNG, WebP or GIF image")
	}

	key := logoKey(tenantID, ext)
	body := io.MultiReader(bytes.NewReader(head[:n]), reader)
	if err := s.minio.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}
	if err := s.settings.SetLogo(ctx, tenantID, key); err != nil {
		return nil, err
	}

	if setting.LogoKey != nil {
		if err := s.minio.Delete(ctx, *setting.LogoKey); err != nil {
			s.logger.Warn("failed to delete previous logo", zap.String("key", *setting.LogoKey), zap.Error(err))
		}
	}
	setting.LogoKey = &key
	return setting, nil
}

func (s *settingService) LogoURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	setting, err := s.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if setting.LogoKey == nil {
		return "", common.NotFound("logo")
	}
	return s.minio.GetPresignedURL(ctx, *setting.LogoKey, presignExpiry)
}

func (s *settingService) TestChannel(ctx context.Context, tenantID uuid.UUID, channel, to string) (*models.NotificationLog, error) {
	return s.notifications.SendTest(ctx, tenantID, channel, to)
}
