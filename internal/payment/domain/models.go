package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	// Customer side.
	PaymentTypeReceived PaymentType = "received"
	PaymentTypeRefund   PaymentType = "refund"
	// Supplier side.
	PaymentTypePaid           PaymentType = "paid"
	PaymentTypeSupplierRefund PaymentType = "supplier_refund"
)

// Forward reports whether the payment reduces what the counterparty owes.
func (t PaymentType) Forward() bool {
	return t == PaymentTypeReceived || t == PaymentTypePaid
}

func (t PaymentType) Customer() bool {
	return t == PaymentTypeReceived || t == PaymentTypeRefund
}

func (t PaymentType) Supplier() bool {
	return t == PaymentTypePaid || t == PaymentTypeSupplierRefund
}

func (t PaymentType) Valid() bool {
	return t.Customer() || t.Supplier()
}

const (
	MethodCash   = "cash"
	MethodBank   = "bank"
	MethodUPI    = "upi"
	MethodCheque = "cheque"
	MethodOther  = "other"
)

func ValidMethod(method string) bool {
	switch method {
	case MethodCash, MethodBank, MethodUPI, MethodCheque, MethodOther:
		return true
	default:
		return false
	}
}

// Payment is an immutable money movement between the company and one
// counterparty. Customer and supplier references are mutually exclusive.
type Payment struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CompanyID   snowflake.ID    `gorm:"not null;index" json:"company_id"`
	CustomerID  *snowflake.ID   `gorm:"index" json:"customer_id,omitempty"`
	InvoiceID   *snowflake.ID   `gorm:"index" json:"invoice_id,omitempty"`
	SupplierID  *snowflake.ID   `gorm:"index" json:"supplier_id,omitempty"`
	PurchaseID  *snowflake.ID   `gorm:"index" json:"purchase_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentType PaymentType     `gorm:"type:text;not null;index" json:"payment_type"`
	Method      string          `gorm:"column:payment_method;type:text;not null" json:"payment_method"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

type DocumentKind string

const (
	DocumentInvoice  DocumentKind = "invoice"
	DocumentPurchase DocumentKind = "purchase"
)

// Settlement statuses written back to invoices and purchases.
const (
	StatusUnpaid        = "unpaid"
	StatusPartiallyPaid = "partially_paid"
	StatusPaid          = "paid"
	StatusCancelled     = "cancelled"
)

// Document is the settlement view of an invoice or purchase.
type Document struct {
	Kind           DocumentKind
	ID             snowflake.ID
	CompanyID      snowflake.ID
	CounterpartyID *snowflake.ID
	Number         string
	Total          decimal.Decimal
	Status         string
}

// NetPaid splits a document's payments into forward and reversal sums.
type NetPaid struct {
	Forward  decimal.Decimal
	Reversal decimal.Decimal
}

func (n NetPaid) Net() decimal.Decimal {
	return n.Forward.Sub(n.Reversal)
}

// StatusFor maps net paid against a document total.
func StatusFor(net, total decimal.Decimal) string {
	switch {
	case net.GreaterThanOrEqual(total):
		return StatusPaid
	case net.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}
