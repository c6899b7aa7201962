package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID  *snowflake.ID
	SupplierID  *snowflake.ID
	InvoiceID   *snowflake.ID
	PurchaseID  *snowflake.ID
	PaymentType PaymentType
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Payment, error)

	// LockDocument reads an invoice or purchase under SELECT ... FOR UPDATE.
	// db must be a transaction.
	LockDocument(ctx context.Context, db *gorm.DB, kind DocumentKind, companyID, id snowflake.ID) (*Document, error)
	SumForDocument(ctx context.Context, db *gorm.DB, kind DocumentKind, companyID, id snowflake.ID) (NetPaid, error)
	UpdateDocumentStatus(ctx context.Context, db *gorm.DB, kind DocumentKind, companyID, id snowflake.ID, status string, updatedAt time.Time) error
}
