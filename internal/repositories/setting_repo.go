package repositories

import (
	"context"

	"storeops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SettingRepository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Setting, error)
	// Create inserts s unless the tenant already has settings.
	Create(ctx context.Context, s *models.Setting) error
	Update(ctx context.Context, s *models.Setting) error
	SetLogo(ctx context.Context, tenantID uuid.UUID, key string) error
}

type settingRepo struct {
	db DB
}

func NewSettingRepo(db DB) SettingRepository {
	return &settingRepo{db: db}
}

const settingColumns = `tenant_id, company_name, company_document, company_email, company_phone, company_address, logo_key, smtp_host, smtp_port, smtp_user, smtp_password, smtp_from, whatsapp_api_url, whatsapp_token, whatsapp_instance, invoice_prefix, invoice_due_days, default_tax_rate, low_stock_alerts, notify_sale_receipt, notify_service_order_status, updated_at`

func scanSetting(row pgx.Row) (*models.Setting, error) {
	s := &models.Setting{}
	err := row.Scan(&s.TenantID, &s.CompanyName, &s.CompanyDocument, &s.CompanyEmail, &s.CompanyPhone, &s.CompanyAddress,
		&s.LogoKey, &s.SMTPHost, &s.SMTPPort, &s.SMTPUser, &s.SMTPPassword, &s.SMTPFrom, &s.WhatsAppAPIURL, &s.WhatsAppToken,
		&s.WhatsAppInstance, &s.InvoicePrefix, &s.InvoiceDueDays, &s.DefaultTaxRate, &s.LowStockAlerts, &s.NotifySaleReceipt,
		&s.NotifyServiceOrderStatus, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func insertSetting(ctx context.Context, q Querier, s *models.Setting) error {
	_, err := q.Exec(ctx, `
		INSERT INTO settings (tenant_id, company_name, company_document, company_email, company_phone, invoice_prefix, invoice_due_days, default_tax_rate, low_stock_alerts, notify_sale_receipt, notify_service_order_status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (tenant_id) DO NOTHING
	`, s.TenantID, s.CompanyName, s.CompanyDocument, s.CompanyEmail, s.CompanyPhone, s.InvoicePrefix, s.InvoiceDueDays,
		s.DefaultTaxRate, s.LowStockAlerts, s.NotifySaleReceipt, s.NotifyServiceOrderStatus)
	return err
}

func (r *settingRepo) Get(ctx context.Context, tenantID uuid.UUID) (*models.Setting, error) {
	return scanSetting(r.db.QueryRow(ctx, `SELECT `+settingColumns+` FROM settings WHERE tenant_id = $1`, tenantID))
}

func (r *settingRepo) Create(ctx context.Context, s *models.Setting) error {
	return insertSetting(ctx, r.db, s)
}

func (r *settingRepo) Update(ctx context.Context, s *models.Setting) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE settings
		SET company_name = $1, company_document = $2, company_email = $3, company_phone = $4, company_address = $5,
			smtp_host = $6, smtp_port = $7, smtp_user = $8, smtp_password = $9, smtp_from = $10,
			whatsapp_api_url = $11, whatsapp_token = $12, whatsapp_instance = $13,
			invoice_prefix = $14, invoice_due_days = $15, default_tax_rate = $16,
			low_stock_alerts = $17, notify_sale_receipt = $18, notify_service_order_status = $19, updated_at = NOW()
		WHERE tenant_id = $20
	`, s.CompanyName, s.CompanyDocument, s.CompanyEmail, s.CompanyPhone, s.CompanyAddress,
		s.SMTPHost, s.SMTPPort, s.SMTPUser, s.SMTPPassword, s.SMTPFrom,
		s.WhatsAppAPIURL, s.WhatsAppToken, s.WhatsAppInstance,
		s.InvoicePrefix, s.InvoiceDueDays, s.DefaultTaxRate,
		s.LowStockAlerts, s.NotifySaleReceipt, s.NotifyServiceOrderStatus, s.TenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *settingRepo) SetLogo(ctx context.Context, tenantID uuid.UUID, key string) error {
	_, err := r.db.Exec(ctx, `UPDATE settings SET logo_key = $1, updated_at = NOW() WHERE tenant_id = $2`, key, tenantID)
	return err
}
