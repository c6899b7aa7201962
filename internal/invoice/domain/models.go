// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from payments except for cancellation.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// ValidStatus reports whether s is a known invoice status.
func ValidStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice is a sale to a customer. CustomerName is always set, even when
// CustomerID is nil, so walk-in sales keep a readable counterparty.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID     snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_invoices_company_number,priority:1" json:"company_id"`
	CustomerID    *snowflake.ID   `gorm:"index" json:"customer_id,omitempty"`
	Number        string          `gorm:"column:invoice_number;not null;uniqueIndex:ux_invoices_company_number,priority:2" json:"invoice_number"`
	CustomerName  string          `gorm:"not null" json:"customer_name"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_percent"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total"`
	Status        InvoiceStatus   `gorm:"type:text;not null;default:'unpaid';index" json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one product line. ProductName and UnitPrice are copied from
// the product at sale time.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID    `gorm:"not null;index" json:"company_id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	ProductID   snowflake.ID    `gorm:"not null;index" json:"product_id"`
	ProductName string          `gorm:"not null" json:"product_name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	Position    int             `gorm:"not null;default:0" json:"-"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
