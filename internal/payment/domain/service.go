package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

// AcceptPaymentRequest carries either the customer pair or the supplier
// pair. PaymentType decides which side is expected.
type AcceptPaymentRequest struct {
	CustomerID  string          `json:"customer_id"`
	InvoiceID   string          `json:"invoice_id"`
	SupplierID  string          `json:"supplier_id"`
	PurchaseID  string          `json:"purchase_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType PaymentType     `json:"payment_type"`
	Method      string          `json:"payment_method"`
	Notes       string          `json:"notes"`
}

type ListPaymentRequest struct {
	pagination.Pagination
	CustomerID  string `form:"customer_id"`
	SupplierID  string `form:"supplier_id"`
	InvoiceID   string `form:"invoice_id"`
	PurchaseID  string `form:"purchase_id"`
	PaymentType string `form:"payment_type"`
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type Service interface {
	AcceptPayment(ctx context.Context, req AcceptPaymentRequest) (Payment, error)
	// RecomputeStatus derives the document status from its payments and writes
	// it inside tx. Cancelled invoices keep their status.
	RecomputeStatus(ctx context.Context, tx *gorm.DB, doc Document) (string, error)
	List(ctx context.Context, req ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(ctx context.Context, id string) (Payment, error)
}

var (
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPaymentType  = errors.New("invalid_payment_type")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrInvalidCounterparty = errors.New("invalid_counterparty")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrSupplierNotFound    = errors.New("supplier_not_found")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrPurchaseNotFound    = errors.New("purchase_not_found")
	ErrDocumentOwnership   = errors.New("document_ownership_mismatch")
	ErrDocumentCancelled   = errors.New("document_cancelled")
	ErrNotFound            = errors.New("payment_not_found")
)

// OverpaymentError rejects a forward payment that would take net paid past
// the document total.
type OverpaymentError struct {
	Total       decimal.Decimal
	AlreadyPaid decimal.Decimal
	MaxPayable  decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("overpayment: total %s, already paid %s, max payable %s",
		e.Total.StringFixed(2),
		e.AlreadyPaid.StringFixed(2),
		e.MaxPayable.StringFixed(2),
	)
}
