package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Setting holds per-tenant configuration. Empty SMTP/WhatsApp fields fall back to the server environment.
type Setting struct {
	TenantID                 uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	CompanyName              string          `json:"company_name" db:"company_name"`
	CompanyDocument          *string         `json:"company_document" db:"company_document"`
	CompanyEmail             *string         `json:"company_email" db:"company_email"`
	CompanyPhone             *string         `json:"company_phone" db:"company_phone"`
	CompanyAddress           *string         `json:"company_address" db:"company_address"`
	LogoKey                  *string         `json:"logo_key,omitempty" db:"logo_key"`
	SMTPHost                 *string         `json:"smtp_host" db:"smtp_host"`
	SMTPPort                 *int            `json:"smtp_port" db:"smtp_port"`
	SMTPUser                 *string         `json:"smtp_user" db:"smtp_user"`
	SMTPPassword             *string         `json:"smtp_password,omitempty" db:"smtp_password"`
	SMTPFrom                 *string         `json:"smtp_from" db:"smtp_from"`
	WhatsAppAPIURL           *string         `json:"whatsapp_api_url" db:"whatsapp_api_url"`
	WhatsAppToken            *string         `json:"whatsapp_token,omitempty" db:"whatsapp_token"`
	WhatsAppInstance         *string         `json:"whatsapp_instance" db:"whatsapp_instance"`
	InvoicePrefix            string          `json:"invoice_prefix" db:"invoice_prefix"`
	InvoiceDueDays           int             `json:"invoice_due_days" db:"invoice_due_days"`
	DefaultTaxRate           decimal.Decimal `json:"default_tax_rate" db:"default_tax_rate"`
	LowStockAlerts           bool            `json:"low_stock_alerts" db:"low_stock_alerts"`
	NotifySaleReceipt        bool            `json:"notify_sale_receipt" db:"notify_sale_receipt"`
	NotifyServiceOrderStatus bool            `json:"notify_service_order_status" db:"notify_service_order_status"`
	UpdatedAt                time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultSetting returns the settings a new tenant starts with.
func DefaultSetting(tenantID uuid.UUID, companyName string) *Setting {
	return &Setting{
		TenantID:                 tenantID,
		CompanyName:              companyName,
		InvoicePrefix:            "NF",
		InvoiceDueDays:           30,
		DefaultTaxRate:           decimal.Zero,
		LowStockAlerts:           true,
		NotifySaleReceipt:        false,
		NotifyServiceOrderStatus: true,
		UpdatedAt:                time.Now().UTC(),
	}
}

// MaskedSecret replaces stored secrets in responses.
const MaskedSecret = "********"

// Masked returns a copy safe to return to clients.
func (s *Setting) Masked() *Setting {
	cp := *s
	if cp.SMTPPassword != nil && *cp.SMTPPassword != "" {
		m := MaskedSecret
		cp.SMTPPassword = &m
	}
	if cp.WhatsAppToken != nil && *cp.WhatsAppToken != "" {
		m := MaskedSecret
		cp.WhatsAppToken = &m
	}
	return &cp
}

// SettingInput is a partial update; nil fields are left unchanged.
type SettingInput struct {
	CompanyName              *string          `json:"company_name" validate:"omitempty,min=2,max=160"`
	CompanyDocument          *string          `json:"company_document" validate:"omitempty,cnpj"`
	CompanyEmail             *string          `json:"company_email" validate:"omitempty,email"`
	CompanyPhone             *string          `json:"company_phone" validate:"omitempty,max=30"`
	CompanyAddress           *string          `json:"company_address" validate:"omitempty,max=255"`
	SMTPHost                 *string          `json:"smtp_host" validate:"omitempty,max=255"`
	SMTPPort                 *int             `json:"smtp_port" validate:"omitempty,gt=0,lte=65535"`
	SMTPUser                 *string          `json:"smtp_user" validate:"omitempty,max=255"`
	SMTPPassword             *string          `json:"smtp_password" validate:"omitempty,max=255"`
	SMTPFrom                 *string          `json:"smtp_from" validate:"omitempty,email"`
	WhatsAppAPIURL           *string          `json:"whatsapp_api_url" validate:"omitempty,url"`
	WhatsAppToken            *string          `json:"whatsapp_token" validate:"omitempty,max=500"`
	WhatsAppInstance         *string          `json:"whatsapp_instance" validate:"omitempty,max=120"`
	InvoicePrefix            *string          `json:"invoice_prefix" validate:"omitempty,min=1,max=10"`
	InvoiceDueDays           *int             `json:"invoice_due_days" validate:"omitempty,gte=0,lte=365"`
	DefaultTaxRate           *decimal.Decimal `json:"default_tax_rate" validate:"omitempty,dgte0"`
	LowStockAlerts           *bool            `json:"low_stock_alerts"`
	NotifySaleReceipt        *bool            `json:"notify_sale_receipt"`
	NotifyServiceOrderStatus *bool            `json:"notify_service_order_status"`
}

type TestChannelInput struct {
	To string `json:"to" validate:"required"`
}
