package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

const (
	RefSale         = "SALE"
	RefSaleCancel   = "SALE_CANCEL"
	RefServiceOrder = "SERVICE_ORDER"
	RefInvoice      = "INVOICE"
	RefManual       = "MANUAL"
	RefInvitation   = "INVITATION"
	RefProduct      = "PRODUCT"
)

// StockMovement is one row of the stock ledger. Rows are never updated.
type StockMovement struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ProductID     uuid.UUID  `json:"product_id" db:"product_id"`
	Type          string     `json:"type" db:"type"`
	Quantity      int        `json:"quantity" db:"quantity"`
	PreviousStock int        `json:"previous_stock" db:"previous_stock"`
	NewStock      int        `json:"new_stock" db:"new_stock"`
	Reason        *string    `json:"reason" db:"reason"`
	ReferenceType string     `json:"reference_type" db:"reference_type"`
	ReferenceID   *uuid.UUID `json:"reference_id" db:"reference_id"`
	UserID        *uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
