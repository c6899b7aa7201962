package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ProductID     *snowflake.ID
	RawMaterialID *snowflake.ID
	MovementType  string
	ReferenceType string
	ReferenceID   *snowflake.ID
}

// LedgerSum is the movement total of one entity.
type LedgerSum struct {
	EntityID snowflake.ID    `gorm:"column:entity_id"`
	Total    decimal.Decimal `gorm:"column:total"`
}

// CachedStock is the stock field currently stored on an entity row.
type CachedStock struct {
	EntityID snowflake.ID    `gorm:"column:id"`
	Name     string          `gorm:"column:name"`
	Stock    decimal.Decimal `gorm:"column:stock"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, movement *StockMovement) error
	List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*StockMovement, error)
	SumByProduct(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]LedgerSum, error)
	SumByRawMaterial(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]LedgerSum, error)
	CachedProductStock(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]CachedStock, error)
	CachedRawMaterialStock(ctx context.Context, db *gorm.DB, companyID snowflake.ID) ([]CachedStock, error)
}
