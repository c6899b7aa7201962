package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
)

type CreatePurchaseItem struct {
	RawMaterialID string          `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type CreatePurchaseRequest struct {
	SupplierID string               `json:"supplier_id"`
	Notes      string               `json:"notes"`
	Items      []CreatePurchaseItem `json:"items"`
}

type ListPurchaseRequest struct {
	pagination.Pagination
	Status     string `form:"status"`
	SupplierID string `form:"supplier_id"`
}

type ListPurchaseResponse struct {
	pagination.PageInfo
	Purchases []Purchase `json:"purchases"`
}

type Service interface {
	Create(ctx context.Context, req CreatePurchaseRequest) (Purchase, error)
	List(ctx context.Context, req ListPurchaseRequest) (ListPurchaseResponse, error)
	GetByID(ctx context.Context, id string) (Purchase, error)
}

var (
	ErrInvalidCompany      = errors.New("invalid_company")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrEmptyItems          = errors.New("empty_items")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidUnitPrice    = errors.New("invalid_unit_price")
	ErrSupplierRequired    = errors.New("supplier_required")
	ErrSupplierNotFound    = errors.New("supplier_not_found")
	ErrRawMaterialNotFound = errors.New("raw_material_not_found")
	ErrNotFound            = errors.New("purchase_not_found")
	ErrDuplicateNumber     = errors.New("duplicate_purchase_number")
)
