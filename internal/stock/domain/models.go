package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	MovementPurchase      = "purchase"
	MovementProductionIn  = "production_in"
	MovementProductionOut = "production_out"
	MovementSale          = "sale"
	MovementAdjustment    = "adjustment"
)

const (
	ReferenceInvoice         = "invoice"
	ReferencePurchase        = "purchase"
	ReferenceProductionBatch = "production_batch"
	ReferenceAdjustment      = "adjustment"
	ReferenceOpeningStock    = "opening_stock"
)

// ValidMovementType reports whether t is one of the recognized movement kinds.
func ValidMovementType(t string) bool {
	switch t {
	case MovementPurchase, MovementProductionIn, MovementProductionOut, MovementSale, MovementAdjustment:
		return true
	default:
		return false
	}
}

// StockMovement is an append-only record of one inventory change. Exactly one
// of ProductID and RawMaterialID is set.
type StockMovement struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID      snowflake.ID    `gorm:"not null;index" json:"company_id"`
	ProductID      *snowflake.ID   `gorm:"index" json:"product_id,omitempty"`
	RawMaterialID  *snowflake.ID   `gorm:"index" json:"raw_material_id,omitempty"`
	MovementType   string          `gorm:"not null;index" json:"movement_type"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity_change"`
	ReferenceType  string          `gorm:"not null" json:"reference_type"`
	ReferenceID    snowflake.ID    `gorm:"not null;index" json:"reference_id"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
}

// Change describes a stock mutation of one product or raw material.
// Quantity is signed: positive adds stock.
type Change struct {
	CompanyID     snowflake.ID
	EntityID      snowflake.ID
	Quantity      decimal.Decimal
	MovementType  string
	ReferenceType string
	ReferenceID   snowflake.ID
	Notes         string
	// CostPrice, when set, replaces the raw material's cost price.
	CostPrice *decimal.Decimal
}

// Applied is the entity state after a Change.
type Applied struct {
	Name      string
	Before    decimal.Decimal
	After     decimal.Decimal
	CostPrice decimal.Decimal
	Movement  StockMovement
}

// Drift is an entity whose cached stock disagrees with its movement sum.
type Drift struct {
	EntityType  string          `json:"entity_type"`
	EntityID    snowflake.ID    `json:"entity_id"`
	Name        string          `json:"name"`
	CachedStock decimal.Decimal `json:"cached_stock"`
	LedgerStock decimal.Decimal `json:"ledger_stock"`
}
