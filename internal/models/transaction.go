package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionIncome  = "INCOME"
	TransactionExpense = "EXPENSE"
)

const (
	TransactionPending   = "PENDING"
	TransactionPaid      = "PAID"
	TransactionCancelled = "CANCELLED"
)

// Transaction is a financial entry (receivable or payable).
type Transaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Type          string          `json:"type" db:"type"`
	Category      string          `json:"category" db:"category"`
	Description   string          `json:"description" db:"description"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod *string         `json:"payment_method" db:"payment_method"`
	Status        string          `json:"status" db:"status"`
	DueDate       *time.Time      `json:"due_date" db:"due_date"`
	PaidAt        *time.Time      `json:"paid_at" db:"paid_at"`
	ReferenceType string          `json:"reference_type" db:"reference_type"`
	ReferenceID   *uuid.UUID      `json:"reference_id" db:"reference_id"`
	CustomerID    *uuid.UUID      `json:"customer_id" db:"customer_id"`
	CreatedBy     *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type TransactionFilter struct {
	Type   *string
	Status *string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type TransactionInput struct {
	Type          string          `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Category      string          `json:"category" validate:"required,max=80"`
	Description   string          `json:"description" validate:"required,max=255"`
	Amount        decimal.Decimal `json:"amount" validate:"dgt0"`
	PaymentMethod *string         `json:"payment_method" validate:"omitempty,oneof=CASH CREDIT_CARD DEBIT_CARD PIX BANK_SLIP OTHER"`
	DueDate       *time.Time      `json:"due_date"`
	Paid          bool            `json:"paid"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
}

type TransactionSummary struct {
	From           *time.Time      `json:"from,omitempty"`
	To             *time.Time      `json:"to,omitempty"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	Balance        decimal.Decimal `json:"balance"`
	PendingIncome  decimal.Decimal `json:"pending_income"`
	PendingExpense decimal.Decimal `json:"pending_expense"`
}
