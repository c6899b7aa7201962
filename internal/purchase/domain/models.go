package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusUnpaid        PurchaseStatus = "unpaid"
	PurchaseStatusPartiallyPaid PurchaseStatus = "partially_paid"
	PurchaseStatusPaid          PurchaseStatus = "paid"
)

func ValidStatus(status PurchaseStatus) bool {
	switch status {
	case PurchaseStatusUnpaid, PurchaseStatusPartiallyPaid, PurchaseStatusPaid:
		return true
	default:
		return false
	}
}

// Purchase is a raw material intake from a supplier. Status is owned by the
// payment settlement flow.
type Purchase struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_purchases_company_number,priority:1" json:"company_id"`
	SupplierID   snowflake.ID    `gorm:"not null;index" json:"supplier_id"`
	Number       string          `gorm:"column:purchase_number;not null;uniqueIndex:ux_purchases_company_number,priority:2" json:"purchase_number"`
	SupplierName string          `gorm:"not null" json:"supplier_name"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	Status       PurchaseStatus  `gorm:"type:text;not null;index" json:"status"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`

	Items []PurchaseItem `gorm:"-" json:"items,omitempty"`
}

func (Purchase) TableName() string { return "purchases" }

type PurchaseItem struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID       snowflake.ID    `gorm:"not null;index" json:"company_id"`
	PurchaseID      snowflake.ID    `gorm:"not null;index" json:"purchase_id"`
	RawMaterialID   snowflake.ID    `gorm:"not null;index" json:"raw_material_id"`
	RawMaterialName string          `gorm:"not null" json:"raw_material_name"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	Position        int             `gorm:"not null;default:0" json:"position"`
}

func (PurchaseItem) TableName() string { return "purchase_items" }
