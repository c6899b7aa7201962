package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status     PurchaseStatus
	SupplierID *snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, purchase *Purchase) error
	InsertItems(ctx context.Context, db *gorm.DB, items []*PurchaseItem) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Purchase, error)
	ListItems(ctx context.Context, db *gorm.DB, companyID, purchaseID snowflake.ID) ([]PurchaseItem, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Purchase, error)
}
