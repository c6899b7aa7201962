package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	companydomain "github.com/smallbiznis/vyapar/internal/company/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreateInvoiceItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type CreateInvoiceRequest struct {
	CustomerID    string              `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone string              `json:"customer_phone"`
	TaxPercent    decimal.Decimal     `json:"tax_percent"`
	Discount      decimal.Decimal     `json:"discount"`
	Notes         string              `json:"notes"`
	Items         []CreateInvoiceItem `json:"items"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

// PDFDocument is a rendered invoice ready to download or send.
type PDFDocument struct {
	Filename string
	Content  []byte
}

// Renderer turns an invoice into a PDF.
type Renderer interface {
	RenderInvoice(ctx context.Context, company companydomain.Company, invoice Invoice) ([]byte, error)
}

// DocumentSender delivers a file to a phone number.
type DocumentSender interface {
	SendDocument(ctx context.Context, to, filename, caption string, content []byte) error
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	// Latest returns the newest invoice, for the customer when customerID is set.
	Latest(ctx context.Context, customerID string) (Invoice, error)
	// Cancel marks the invoice cancelled. Stock is not returned.
	Cancel(ctx context.Context, id string) (Invoice, error)
	RenderPDF(ctx context.Context, id string) (PDFDocument, error)
	// SendWhatsApp sends the invoice PDF to the linked customer's phone, or
	// to the given number when to is non-empty. It returns the recipient.
	SendWhatsApp(ctx context.Context, id string, to string) (string, error)
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrEmptyItems        = errors.New("invoice_items_required")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidTax        = errors.New("invalid_tax_percent")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrNotFound          = errors.New("invoice_not_found")
	ErrAlreadyCancelled  = errors.New("invoice_already_cancelled")
	ErrDuplicateNumber   = errors.New("invoice_number_conflict")
	ErrNoRecipient       = errors.New("invoice_recipient_missing")
	ErrDeliveryDisabled  = errors.New("invoice_delivery_disabled")
	ErrRenderingDisabled = errors.New("invoice_rendering_disabled")
)
