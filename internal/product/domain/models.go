package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is a finished good that is sold on invoices and produced in batches.
// Stock is a cache of the product's stock movements and is only written
// through the stock service.
type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID    `gorm:"not null;index" json:"company_id"`
	Name        string          `gorm:"not null" json:"name"`
	SKU         string          `gorm:"column:sku" json:"sku,omitempty"`
	Description string          `json:"description,omitempty"`
	Unit        string          `gorm:"not null;default:'pcs'" json:"unit"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Stock       decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0" json:"stock"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}
