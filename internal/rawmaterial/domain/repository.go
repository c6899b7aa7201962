package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search          string
	IncludeInactive bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, material *RawMaterial) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*RawMaterial, error)
	// LockByID reads the row under SELECT ... FOR UPDATE. db must be a transaction.
	LockByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*RawMaterial, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*RawMaterial, error)
	Update(ctx context.Context, db *gorm.DB, material *RawMaterial) error
	UpdateStock(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID, stock decimal.Decimal, costPrice *decimal.Decimal) error
	Deactivate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
}
