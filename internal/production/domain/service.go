package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreateProductionItem struct {
	RawMaterialID string          `json:"raw_material_id"`
	QuantityUsed  decimal.Decimal `json:"quantity_used"`
}

type CreateProductionRequest struct {
	ProductID        string                 `json:"finished_product_id"`
	QuantityProduced decimal.Decimal        `json:"quantity_produced"`
	Notes            string                 `json:"notes"`
	Items            []CreateProductionItem `json:"items"`
}

type ListProductionRequest struct {
	pagination.Pagination
	ProductID string `form:"product_id"`
}

type ListProductionResponse struct {
	pagination.PageInfo
	Batches []ProductionBatch `json:"batches"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductionRequest) (ProductionBatch, error)
	List(ctx context.Context, req ListProductionRequest) (ListProductionResponse, error)
	GetByID(ctx context.Context, id string) (ProductionBatch, error)
}

var (
	ErrInvalidCompany          = errors.New("invalid_company")
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidQuantityProduced = errors.New("invalid_quantity_produced")
	ErrInvalidQuantityUsed     = errors.New("invalid_quantity_used")
	ErrEmptyItems              = errors.New("empty_items")
	ErrProductNotFound         = errors.New("product_not_found")
	ErrRawMaterialNotFound     = errors.New("raw_material_not_found")
	ErrNotFound                = errors.New("production_batch_not_found")
	ErrDuplicateNumber         = errors.New("duplicate_batch_number")
)
