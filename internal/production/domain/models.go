package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ProductionBatch converts raw materials into a finished product. Costs are
// taken from each material's cost price at consumption time.
type ProductionBatch struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID        snowflake.ID    `gorm:"not null;uniqueIndex:ux_production_batches_company_number,priority:1" json:"company_id"`
	Number           string          `gorm:"column:batch_number;not null;uniqueIndex:ux_production_batches_company_number,priority:2" json:"batch_number"`
	ProductID        snowflake.ID    `gorm:"column:finished_product_id;not null;index" json:"finished_product_id"`
	ProductName      string          `gorm:"not null" json:"finished_product_name"`
	QuantityProduced decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity_produced"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_cost"`
	CostPerUnit      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cost_per_unit"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`

	Items []ProductionItem `gorm:"-" json:"items,omitempty"`
}

func (ProductionBatch) TableName() string { return "production_batches" }

type ProductionItem struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID    `gorm:"not null;index" json:"company_id"`
	BatchID         snowflake.ID    `gorm:"column:production_batch_id;not null;index" json:"production_batch_id"`
	RawMaterialID   snowflake.ID    `gorm:"not null;index" json:"raw_material_id"`
	RawMaterialName string          `gorm:"not null" json:"raw_material_name"`
	QuantityUsed    decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity_used"`
	CostPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cost_price"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_cost"`
	Position        int             `gorm:"not null;default:0" json:"position"`
}

func (ProductionItem) TableName() string { return "production_items" }
