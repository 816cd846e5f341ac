package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

const (
	PaymentCash       = "CASH"
	PaymentCreditCard = "CREDIT_CARD"
	PaymentDebitCard  = "DEBIT_CARD"
	PaymentPix        = "PIX"
	PaymentBankSlip   = "BANK_SLIP"
	PaymentOther      = "OTHER"
)

type Sale struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number        int64           `json:"number" db:"number"`
	CustomerID    *uuid.UUID      `json:"customer_id" db:"customer_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Status        string          `json:"status" db:"status"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Total         decimal.Decimal `json:"total" db:"total"`
	Notes         *string         `json:"notes" db:"notes"`
	CancelReason  *string         `json:"cancel_reason" db:"cancel_reason"`
	CancelledAt   *time.Time      `json:"cancelled_at" db:"cancelled_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`

	Items        []*SaleItem `json:"items,omitempty" db:"-"`
	CustomerName *string     `json:"customer_name,omitempty" db:"-"`
}

type SaleItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	SaleID      uuid.UUID       `json:"sale_id" db:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
	Total       decimal.Decimal `json:"total" db:"total"`
}

type SaleFilter struct {
	Status     *string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type SaleItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=100000"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,dgte0"` // defaults to the product sale price
	Discount  *decimal.Decimal `json:"discount" validate:"omitempty,dgte0"`
}

type CreateSaleInput struct {
	CustomerID    *uuid.UUID       `json:"customer_id"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=CASH CREDIT_CARD DEBIT_CARD PIX BANK_SLIP OTHER"`
	Discount      *decimal.Decimal `json:"discount" validate:"omitempty,dgte0"`
	Notes         *string          `json:"notes" validate:"omitempty,max=2000"`
	Items         []SaleItemInput  `json:"items" validate:"required,min=1,dive"`
	SendReceipt   bool             `json:"send_receipt"`
}

type CancelSaleInput struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// SalesSummary aggregates completed sales in a period.
type SalesSummary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Cancelled     int             `json:"cancelled"`
}

// LineTotal is quantity * unit price minus the line discount, in cents.
func LineTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount).Round(2)
}

// Recalculate sums item totals into Subtotal and derives Total from Discount.
func (s *Sale) Recalculate() {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.Total)
	}
	s.Subtotal = subtotal.Round(2)
	s.Total = s.Subtotal.Sub(s.Discount).Round(2)
}
