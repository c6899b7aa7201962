package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreateProductRequest struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	OpeningStock decimal.Decimal `json:"stock"`
}

// UpdateProductRequest carries the editable fields. Stock is absent because
// it only changes through movements.
type UpdateProductRequest struct {
	ID          string           `json:"-"`
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
}

type ListProductRequest struct {
	pagination.Pagination
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
}

type ListProductResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	List(ctx context.Context, req ListProductRequest) (ListProductResponse, error)
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (Product, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidStock   = errors.New("invalid_stock")
	ErrNotFound       = errors.New("product_not_found")
)
