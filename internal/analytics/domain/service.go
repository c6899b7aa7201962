package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks

// Service exposes read-only aggregations for dashboards, reports and the chat bot.
// Cancelled invoices never count as revenue.
type Service interface {
	RevenueTrend(ctx context.Context, days int) (RevenueTrend, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	LowStock(ctx context.Context) (LowStockReport, error)
	ProductionSummary(ctx context.Context) (ProductionSummary, error)
	ProfitSummary(ctx context.Context) (ProfitSummary, error)
	InventoryValuation(ctx context.Context) (InventoryValuation, error)
	DashboardSummary(ctx context.Context) (DashboardSummary, error)
}

type RevenuePoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type RevenueTrend struct {
	Days   int             `json:"days"`
	Total  decimal.Decimal `json:"total"`
	Series []RevenuePoint  `json:"series"`
}

type TopProduct struct {
	Product string          `json:"product"`
	QtySold decimal.Decimal `json:"qty_sold"`
	Revenue decimal.Decimal `json:"revenue"`
}

type LowStockItem struct {
	ID        snowflake.ID     `json:"id"`
	Name      string           `json:"name"`
	Stock     decimal.Decimal  `json:"stock"`
	Unit      string           `json:"unit"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
}

type LowStockReport struct {
	Products     []LowStockItem `json:"products"`
	RawMaterials []LowStockItem `json:"raw_materials"`
}

type ProductionSummary struct {
	TotalUnits   decimal.Decimal `json:"total_units_produced"`
	TotalCost    decimal.Decimal `json:"total_production_cost"`
	TotalBatches int64           `json:"total_batches"`
	Period       string          `json:"period"`
}

// ProfitSummary reports the current calendar month. TotalExpenses is the sum
// of purchase and production cost and Margin is a percentage of revenue.
type ProfitSummary struct {
	Revenue        decimal.Decimal `json:"revenue"`
	PurchaseCost   decimal.Decimal `json:"purchase_cost"`
	ProductionCost decimal.Decimal `json:"production_cost"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	Margin         decimal.Decimal `json:"margin"`
	Period         string          `json:"period"`
}

type ValuationItem struct {
	ID           snowflake.ID     `json:"id"`
	Name         string           `json:"name"`
	Unit         string           `json:"unit"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     decimal.Decimal  `json:"unit_cost"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Value        decimal.Decimal  `json:"value"`
}

type ValuationGroup struct {
	Type       string          `json:"type"`
	TotalValue decimal.Decimal `json:"total_value"`
	ItemCount  int             `json:"item_count"`
	Items      []ValuationItem `json:"items"`
}

type InventoryValuation struct {
	RawMaterialsValue  decimal.Decimal `json:"raw_materials_value"`
	FinishedGoodsValue decimal.Decimal `json:"finished_goods_value"`
	TotalValue         decimal.Decimal `json:"total_inventory_value"`
	RawMaterials       ValuationGroup  `json:"raw_materials"`
	FinishedGoods      ValuationGroup  `json:"finished_goods"`
}

type DashboardSummary struct {
	TodayRevenue       decimal.Decimal `json:"today_revenue"`
	MonthlyRevenue     decimal.Decimal `json:"monthly_revenue"`
	TotalInvoicesToday int64           `json:"total_invoices_today"`
	TotalInvoicesMonth int64           `json:"total_invoices_month"`
	LowStockItems      []LowStockItem  `json:"low_stock_items"`
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidPeriod  = errors.New("invalid_period")
)
