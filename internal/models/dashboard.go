package models

import "github.com/shopspring/decimal"

type DashboardSummary struct {
	SalesToday         int             `json:"sales_today"`
	RevenueToday       decimal.Decimal `json:"revenue_today"`
	SalesMonth         int             `json:"sales_month"`
	RevenueMonth       decimal.Decimal `json:"revenue_month"`
	OpenServiceOrders  int             `json:"open_service_orders"`
	LowStockProducts   int             `json:"low_stock_products"`
	OverdueInvoices    int             `json:"overdue_invoices"`
	PendingReceivables decimal.Decimal `json:"pending_receivables"`
	Customers          int             `json:"customers"`
}
