package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreateRawMaterialRequest struct {
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	CostPrice         decimal.Decimal  `json:"cost_price"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	OpeningStock      decimal.Decimal  `json:"stock_quantity"`
}

type UpdateRawMaterialRequest struct {
	ID                string           `json:"-"`
	Name              *string          `json:"name"`
	Unit              *string          `json:"unit"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
}

type ListRawMaterialRequest struct {
	pagination.Pagination
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
}

type ListRawMaterialResponse struct {
	pagination.PageInfo
	RawMaterials []RawMaterial `json:"raw_materials"`
}

type Service interface {
	Create(ctx context.Context, req CreateRawMaterialRequest) (RawMaterial, error)
	List(ctx context.Context, req ListRawMaterialRequest) (ListRawMaterialResponse, error)
	Get(ctx context.Context, id string) (RawMaterial, error)
	Update(ctx context.Context, req UpdateRawMaterialRequest) (RawMaterial, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany   = errors.New("invalid_company")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidCostPrice = errors.New("invalid_cost_price")
	ErrInvalidThreshold = errors.New("invalid_low_stock_threshold")
	ErrInvalidStock     = errors.New("invalid_stock")
	ErrNotFound         = errors.New("raw_material_not_found")
)
