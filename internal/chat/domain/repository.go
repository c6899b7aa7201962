package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// InvoiceRef is the part of an invoice the bot needs to send it.
type InvoiceRef struct {
	ID           snowflake.ID
	Number       string
	CustomerName string
}

type Repository interface {
	// CompanyIDByPhone returns the company registered under any of the
	// given phone forms, or 0.
	CompanyIDByPhone(ctx context.Context, db *gorm.DB, phones []string) (snowflake.ID, error)
	// LatestSendableInvoice returns the newest non-cancelled invoice linked
	// to a customer. A non-empty customerName restricts it to customers whose
	// name contains it, ignoring case.
	LatestSendableInvoice(ctx context.Context, db *gorm.DB, companyID snowflake.ID, customerName string) (*InvoiceRef, error)
}
