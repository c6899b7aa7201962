package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListSupplierFilter struct {
	Search          string
	IncludeInactive bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, supplier *Supplier) error
	FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*Supplier, error)
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListSupplierFilter, page pagination.Pagination) ([]*Supplier, error)
	Update(ctx context.Context, db *gorm.DB, supplier *Supplier) error
	Deactivate(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error
}
