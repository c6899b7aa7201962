package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"gorm.io/gorm"
)

type AdjustRequest struct {
	ProductID     string          `json:"product_id"`
	RawMaterialID string          `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity_change"`
	Notes         string          `json:"notes"`
}

type ListMovementRequest struct {
	pagination.Pagination
	ProductID     string `form:"product_id"`
	RawMaterialID string `form:"raw_material_id"`
	MovementType  string `form:"movement_type"`
}

type ListMovementResponse struct {
	pagination.PageInfo
	Movements []StockMovement `json:"movements"`
}

type Service interface {
	// Record validates and stages a movement in tx. It never commits.
	Record(ctx context.Context, tx *gorm.DB, movement *StockMovement) error
	// ApplyProduct locks the product row, moves its stock by change.Quantity
	// and records the matching movement, all inside tx.
	ApplyProduct(ctx context.Context, tx *gorm.DB, change Change) (Applied, error)
	// ApplyRawMaterial is ApplyProduct for raw materials. A non-nil
	// change.CostPrice overwrites the material's cost price.
	ApplyRawMaterial(ctx context.Context, tx *gorm.DB, change Change) (Applied, error)

	Adjust(ctx context.Context, req AdjustRequest) (StockMovement, error)
	List(ctx context.Context, req ListMovementRequest) (ListMovementResponse, error)
	Reconcile(ctx context.Context) ([]Drift, error)
}
