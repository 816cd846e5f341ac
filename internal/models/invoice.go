package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InvoiceDraft     = "DRAFT"
	InvoiceIssued    = "ISSUED"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

// InvoiceTransitions lists the allowed next statuses.
var InvoiceTransitions = map[string][]string{
	InvoiceDraft:   {InvoiceIssued, InvoiceCancelled},
	InvoiceIssued:  {InvoicePaid, InvoiceOverdue, InvoiceCancelled},
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

type Invoice struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	TenantID       uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number         string          `json:"number" db:"number"`
	CustomerID     *uuid.UUID      `json:"customer_id" db:"customer_id"`
	SaleID         *uuid.UUID      `json:"sale_id" db:"sale_id"`
	ServiceOrderID *uuid.UUID      `json:"service_order_id" db:"service_order_id"`
	Status         string          `json:"status" db:"status"`
	IssueDate      *time.Time      `json:"issue_date" db:"issue_date"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	PaidAt         *time.Time      `json:"paid_at" db:"paid_at"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	Total          decimal.Decimal `json:"total" db:"total"`
	Notes          *string         `json:"notes" db:"notes"`
	PDFKey         *string         `json:"pdf_key,omitempty" db:"pdf_key"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Manual reports whether the invoice is not backed by a sale or service order.
func (i *Invoice) Manual() bool {
	return i.SaleID == nil && i.ServiceOrderID == nil
}

type InvoiceFilter struct {
	Status     *string
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

// InvoiceInput creates an invoice from a sale, a service order, or manual amounts.
type InvoiceInput struct {
	SaleID         *uuid.UUID       `json:"sale_id"`
	ServiceOrderID *uuid.UUID       `json:"service_order_id"`
	CustomerID     *uuid.UUID       `json:"customer_id"`
	Subtotal       *decimal.Decimal `json:"subtotal" validate:"omitempty,dgt0"`
	TaxRate        *decimal.Decimal `json:"tax_rate" validate:"omitempty,dgte0"`
	DueDate        *time.Time       `json:"due_date"`
	Notes          *string          `json:"notes" validate:"omitempty,max=2000"`
}

type InvoiceStatusInput struct {
	Status string `json:"status" validate:"required,oneof=DRAFT ISSUED PAID OVERDUE CANCELLED"`
}

// InvoiceDocument is what the PDF renderer needs.
type InvoiceDocument struct {
	Invoice  *Invoice
	Setting  *Setting
	Customer *Customer
	Lines    []InvoiceLine
}

type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Recalculate derives TaxAmount (TaxRate is a percentage) and Total from Subtotal.
func (i *Invoice) Recalculate() {
	i.TaxAmount = i.Subtotal.Mul(i.TaxRate).Div(hundred).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount)
}
