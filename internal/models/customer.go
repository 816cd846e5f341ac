package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	TenantID       uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name           string          `json:"name" db:"name"`
	DocumentType   *string         `json:"document_type" db:"document_type"`
	Document       *string         `json:"document" db:"document"`
	Email          *string         `json:"email" db:"email"`
	Phone          *string         `json:"phone" db:"phone"`
	Address        *string         `json:"address" db:"address"`
	City           *string         `json:"city" db:"city"`
	State          *string         `json:"state" db:"state"`
	ZipCode        *string         `json:"zip_code" db:"zip_code"`
	Notes          *string         `json:"notes" db:"notes"`
	TotalSpent     decimal.Decimal `json:"total_spent" db:"total_spent"`
	PurchaseCount  int             `json:"purchase_count" db:"purchase_count"`
	LastPurchaseAt *time.Time      `json:"last_purchase_at" db:"last_purchase_at"`
	Active         bool            `json:"active" db:"active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type CustomerFilter struct {
	Query  string // name, document, email or phone
	Active *bool
	Limit  int
	Offset int
}

type CustomerInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=160"`
	Document *string `json:"document" validate:"omitempty,document"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,max=255"`
	City     *string `json:"city" validate:"omitempty,max=80"`
	State    *string `json:"state" validate:"omitempty,len=2"`
	ZipCode  *string `json:"zip_code" validate:"omitempty,max=10"`
	Notes    *string `json:"notes" validate:"omitempty,max=2000"`
	Active   *bool   `json:"active"`
}
