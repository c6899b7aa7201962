package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status      InvoiceStatus
	CustomerID  *snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertItems(ctx context.Context, db *gorm.DB, items []*InvoiceItem) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Invoice, error)
	// LockByID reads the row under SELECT ... FOR UPDATE. db must be a transaction.
	LockByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Invoice, error)
	// Latest returns the newest invoice, optionally restricted to a customer.
	Latest(ctx context.Context, db *gorm.DB, companyID snowflake.ID, customerID *snowflake.ID) (*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, companyID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Invoice, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, status InvoiceStatus, updatedAt time.Time) error
}
