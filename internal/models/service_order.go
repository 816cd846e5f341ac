package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ServiceOrderOpen         = "OPEN"
	ServiceOrderInProgress   = "IN_PROGRESS"
	ServiceOrderWaitingParts = "WAITING_PARTS"
	ServiceOrderCompleted    = "COMPLETED"
	ServiceOrderDelivered    = "DELIVERED"
	ServiceOrderCancelled    = "CANCELLED"
)

// ServiceOrderTransitions lists the allowed next statuses.
var ServiceOrderTransitions = map[string][]string{
	ServiceOrderOpen:         {ServiceOrderInProgress, ServiceOrderCancelled},
	ServiceOrderInProgress:   {ServiceOrderWaitingParts, ServiceOrderCompleted, ServiceOrderCancelled},
	ServiceOrderWaitingParts: {ServiceOrderInProgress, ServiceOrderCancelled},
	ServiceOrderCompleted:    {ServiceOrderDelivered},
}

// Editable reports whether the order can still be changed.
func (o *ServiceOrder) Editable() bool {
	switch o.Status {
	case ServiceOrderOpen, ServiceOrderInProgress, ServiceOrderWaitingParts:
		return true
	}
	return false
}

type ServiceOrder struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	TenantID     uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	Number       int64           `json:"number" db:"number"`
	CustomerID   uuid.UUID       `json:"customer_id" db:"customer_id"`
	TechnicianID *uuid.UUID      `json:"technician_id" db:"technician_id"`
	Status       string          `json:"status" db:"status"`
	Equipment    string          `json:"equipment" db:"equipment"`
	Description  string          `json:"description" db:"description"`
	Diagnosis    *string         `json:"diagnosis" db:"diagnosis"`
	LaborCost    decimal.Decimal `json:"labor_cost" db:"labor_cost"`
	PartsCost    decimal.Decimal `json:"parts_cost" db:"parts_cost"`
	Discount     decimal.Decimal `json:"discount" db:"discount"`
	Total        decimal.Decimal `json:"total" db:"total"`
	EstimatedAt  *time.Time      `json:"estimated_at" db:"estimated_at"`
	CompletedAt  *time.Time      `json:"completed_at" db:"completed_at"`
	DeliveredAt  *time.Time      `json:"delivered_at" db:"delivered_at"`
	Notes        *string         `json:"notes" db:"notes"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Items []*ServiceOrderItem `json:"items,omitempty" db:"-"`
}

type ServiceOrderItem struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ServiceOrderID uuid.UUID       `json:"service_order_id" db:"service_order_id"`
	ProductID      *uuid.UUID      `json:"product_id" db:"product_id"`
	Description    string          `json:"description" db:"description"`
	Quantity       int             `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	Total          decimal.Decimal `json:"total" db:"total"`
}

type ServiceOrderFilter struct {
	Status       *string
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Query        string
	Limit        int
	Offset       int
}

type ServiceOrderItemInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" validate:"required,max=255"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"dgte0"`
}

type ServiceOrderInput struct {
	CustomerID   uuid.UUID               `json:"customer_id" validate:"required"`
	TechnicianID *uuid.UUID              `json:"technician_id"`
	Equipment    string                  `json:"equipment" validate:"required,max=160"`
	Description  string                  `json:"description" validate:"required,max=2000"`
	Diagnosis    *string                 `json:"diagnosis" validate:"omitempty,max=2000"`
	LaborCost    decimal.Decimal         `json:"labor_cost" validate:"dgte0"`
	Discount     decimal.Decimal         `json:"discount" validate:"dgte0"`
	EstimatedAt  *time.Time              `json:"estimated_at"`
	Notes        *string                 `json:"notes" validate:"omitempty,max=2000"`
	Items        []ServiceOrderItemInput `json:"items" validate:"omitempty,dive"`
}

type ServiceOrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=OPEN IN_PROGRESS WAITING_PARTS COMPLETED DELIVERED CANCELLED"`
	Notify bool   `json:"notify"`
}

// Recalculate derives item totals, PartsCost and Total.
func (o *ServiceOrder) Recalculate() {
	parts := decimal.Zero
	for _, item := range o.Items {
		item.Total = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		parts = parts.Add(item.Total)
	}
	o.PartsCost = parts
	o.Total = o.LaborCost.Add(parts).Sub(o.Discount).Round(2)
}

// CanTransition reports whether status may move from -> to.
func CanTransition(transitions map[string][]string, from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
