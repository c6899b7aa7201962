package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryTypeInvoice  EntryType = "invoice"
	EntryTypePurchase EntryType = "purchase"
	EntryTypePayment  EntryType = "payment"
	EntryTypeRefund   EntryType = "refund"
)

// Posting is one debit or credit against a counterparty before ordering.
// Documents are debits, forward payments credits, refunds debits.
type Posting struct {
	Date       time.Time
	Type       EntryType
	Reference  string
	DocumentID *snowflake.ID
	Debit      decimal.Decimal
	Credit     decimal.Decimal
}

// Entry is a Posting stamped with the balance after it.
type Entry struct {
	Date           time.Time       `json:"date"`
	Type           EntryType       `json:"type"`
	Reference      string          `json:"reference"`
	DocumentID     *snowflake.ID   `json:"document_id,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Totals are summed straight from postings, independent of the running
// balance walk.
type Totals struct {
	Documented decimal.Decimal
	Paid       decimal.Decimal
	Refunded   decimal.Decimal
}

func (t Totals) Outstanding() decimal.Decimal {
	return t.Documented.Sub(t.Paid).Add(t.Refunded)
}

type Counterparty struct {
	ID    snowflake.ID `json:"id"`
	Name  string       `json:"name"`
	Phone string       `json:"phone,omitempty"`
	Email string       `json:"email,omitempty"`
}

// OpenDocument is an unpaid or partially paid invoice or purchase.
type OpenDocument struct {
	ID     snowflake.ID    `json:"id"`
	Number string          `json:"number"`
	Total  decimal.Decimal `json:"total"`
	Status string          `json:"status"`
}

type CustomerSummary struct {
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalRefunded decimal.Decimal `json:"total_refunded"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

type CustomerStatement struct {
	Customer       Counterparty    `json:"customer"`
	Summary        CustomerSummary `json:"summary"`
	Transactions   []Entry         `json:"transactions"`
	UnpaidInvoices []OpenDocument  `json:"unpaid_invoices"`
}

type SupplierSummary struct {
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRefunded  decimal.Decimal `json:"total_refunded"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

type SupplierStatement struct {
	Supplier        Counterparty    `json:"supplier"`
	Summary         SupplierSummary `json:"summary"`
	Transactions    []Entry         `json:"transactions"`
	UnpaidPurchases []OpenDocument  `json:"unpaid_purchases"`
}

// Balance is a counterparty with its aggregate position. TotalPaid is net of
// refunds.
type Balance struct {
	ID          snowflake.ID    `json:"id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone,omitempty"`
	Email       string          `json:"email,omitempty"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
