package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	SKU         string          `json:"sku" db:"sku"`
	Barcode     *string         `json:"barcode" db:"barcode"`
	Category    *string         `json:"category" db:"category"`
	Unit        string          `json:"unit" db:"unit"`
	CostPrice   decimal.Decimal `json:"cost_price" db:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price" db:"sale_price"`
	Stock       int             `json:"stock" db:"stock"`
	MinStock    int             `json:"min_stock" db:"min_stock"`
	ImageKey    *string         `json:"image_key,omitempty" db:"image_key"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether stock is at or below the minimum.
func (p *Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// ProductFilter holds search and filter criteria for product queries
type ProductFilter struct {
	Query    string // name, sku or barcode
	Category *string
	Active   *bool
	LowStock bool
	Limit    int
	Offset   int
}

type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=160"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	SKU         string          `json:"sku" validate:"required,min=1,max=60"`
	Barcode     *string         `json:"barcode" validate:"omitempty,max=60"`
	Category    *string         `json:"category" validate:"omitempty,max=80"`
	Unit        string          `json:"unit" validate:"omitempty,max=10"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"dgte0"`
	SalePrice   decimal.Decimal `json:"sale_price" validate:"dgte0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	MinStock    int             `json:"min_stock" validate:"gte=0"`
	Active      *bool           `json:"active"`
}

const (
	AdjustIn         = "IN"
	AdjustOut        = "OUT"
	AdjustAdjustment = "ADJUSTMENT"
)

// StockAdjustmentInput is a manual stock change. For ADJUSTMENT, Quantity is the new absolute stock.
type StockAdjustmentInput struct {
	Type     string `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	Reason   string `json:"reason" validate:"required,max=255"`
}
