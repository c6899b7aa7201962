package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RawMaterial is an input consumed by production batches. CostPrice follows
// the latest purchase price.
type RawMaterial struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID         snowflake.ID    `gorm:"not null;index" json:"company_id"`
	Name              string          `gorm:"not null" json:"name"`
	Unit              string          `gorm:"not null;default:'kg'" json:"unit"`
	StockQuantity     decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"stock_quantity"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cost_price"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(18,3);not null;default:10" json:"low_stock_threshold"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}
