package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID   *snowflake.ID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, batch *ProductionBatch) error
	InsertItems(ctx context.Context, db *gorm.DB, items []*ProductionItem) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*ProductionBatch, error)
	ListItems(ctx context.Context, db *gorm.DB, companyID, batchID snowflake.ID) ([]ProductionItem, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*ProductionBatch, error)
}
